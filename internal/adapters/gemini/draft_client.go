package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/textutil"
)

// DraftClient implements the DraftProvider interface using Google Gemini
type DraftClient struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
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

// NewDraftClient creates a new Gemini draft client
func NewDraftClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
) (*DraftClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &DraftClient{
		client:      client,
		model:       model,
		modelName:   modelName,
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
	}, nil
}

// Close closes the Gemini client
func (c *DraftClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// DraftReply produces a reply draft for a triaged message
func (c *DraftClient) DraftReply(ctx context.Context, record *core.EmailRecord, classification core.ClassificationResult) (*core.Draft, error) {
	body := textutil.TruncateText(textutil.SanitizeUTF8(record.Body), c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat,
		classification.SenderClass, classification.Intent, classification.Urgency,
		record.Sender, record.Subject, body)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

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
		DraftRef:           fmt.Sprintf("gemini-%s", record.MessageID),
		Recipients:         []string{record.Sender},
		Subject:            parsed.Subject,
		Body:               parsed.Body,
		NeedsClarification: parsed.NeedsClarification,
		Questions:          parsed.Questions,
		Provider:           c.modelName,
	}, nil
}
