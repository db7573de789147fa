package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/textutil"
)

// DraftClient implements the DraftProvider interface using OpenAI
type DraftClient struct {
	client       *openai.Client
	modelName    string
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

// NewDraftClient creates a new OpenAI draft client
func NewDraftClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
) *DraftClient {
	return &DraftClient{
		client:       client,
		modelName:    modelName,
		maxTokens:    maxTokens,
		temperature:  temperature,
		topP:         topP,
		maxBodySize:  maxBodySize,
		logger:       logger,
		promptFormat: draftPromptFormat,
	}
}

const draftPromptFormat = `You are an email assistant drafting a reply on behalf of the mailbox owner.
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

Respond only with the JSON object and nothing else.`

// DraftReply produces a reply draft for a triaged message
func (c *DraftClient) DraftReply(ctx context.Context, record *core.EmailRecord, classification core.ClassificationResult) (*core.Draft, error) {
	body := textutil.TruncateText(textutil.SanitizeUTF8(record.Body), c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat,
		classification.SenderClass, classification.Intent, classification.Urgency,
		record.Sender, record.Subject, body)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email reply drafting system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: "json"}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	parsed, err := parseDraftResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &core.Draft{
		MessageID:          record.MessageID,
		DraftRef:           resp.ID,
		Recipients:         []string{record.Sender},
		Subject:            parsed.Subject,
		Body:               parsed.Body,
		NeedsClarification: parsed.NeedsClarification,
		Questions:          parsed.Questions,
		Provider:           c.modelName,
	}, nil
}

// parseDraftResponse decodes the model output, tolerating stray text around
// the JSON object.
func parseDraftResponse(responseText string) (*draftResponse, error) {
	var parsed draftResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	start := strings.Index(responseText, "{")
	end := strings.LastIndex(responseText, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(responseText[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return &parsed, nil
}
