package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/textutil"
)

// DraftClient implements the DraftProvider interface using Amazon Bedrock
type DraftClient struct {
	client       *bedrockruntime.Client
	modelID      string
	maxTokens    int
	temperature  float32
	topP         float32
	maxBodySize  int
	logger       *zap.Logger
	promptFormat string
}

// draftResponse represents the structured response from the model
type draftResponse struct {
	Subject            string   `json:"subject"`
	Body               string   `json:"body"`
	NeedsClarification bool     `json:"needs_clarification"`
	Questions          []string `json:"questions"`
}

// NewDraftClient creates a new Bedrock draft client
func NewDraftClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
) *DraftClient {
	return &DraftClient{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		maxBodySize: maxBodySize,
		logger:      logger,
		promptFormat: `You are an email assistant drafting a reply on behalf of the mailbox owner.
Respond with a JSON object containing:
- subject: string (reply subject line)
- body: string (the drafted reply, plain text)
- needs_clarification: boolean (true if you cannot draft without more information from the owner)
- questions: array of strings (the clarifying questions, empty unless needs_clarification is true)

Triage context:
Sender class: %s
Detected intent: %s
Urgency: %s

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`,
	}
}

// DraftReply produces a reply draft for a triaged message
func (c *DraftClient) DraftReply(ctx context.Context, record *core.EmailRecord, classification core.ClassificationResult) (*core.Draft, error) {
	body := textutil.TruncateText(textutil.SanitizeUTF8(record.Body), c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat,
		classification.SenderClass, classification.Intent, classification.Urgency,
		record.Sender, record.Subject, body)

	payload, err := c.buildPayload(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := c.extractText(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed draftResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		start := strings.Index(responseText, "{")
		end := strings.LastIndex(responseText, "}")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("failed to extract JSON from model response")
		}
		if err := json.Unmarshal([]byte(responseText[start:end+1]), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}

	return &core.Draft{
		MessageID:          record.MessageID,
		DraftRef:           fmt.Sprintf("bedrock-%s", record.MessageID),
		Recipients:         []string{record.Sender},
		Subject:            parsed.Subject,
		Body:               parsed.Body,
		NeedsClarification: parsed.NeedsClarification,
		Questions:          parsed.Questions,
		Provider:           c.modelID,
	}, nil
}

// buildPayload creates the invocation body for the configured model family
func (c *DraftClient) buildPayload(prompt string) ([]byte, error) {
	if c.isAnthropicModel() {
		return json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	}
	if c.isAmazonTitanModel() {
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	}
	return json.Marshal(map[string]interface{}{
		"prompt":      prompt,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"top_p":       c.topP,
	})
}

// extractText pulls the generated text out of the model-specific response shape
func (c *DraftClient) extractText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	}
	return string(body), nil
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *DraftClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *DraftClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
