package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
)

func testCategoryConfig() config.CategoryConfig {
	return config.CategoryConfig{
		Legal:   []string{"contract", "attorney", "nda"},
		Finance: []string{"invoice", "payment", "wire transfer"},
		Waiting: []string{"waiting on", "no update yet"},
	}
}

func TestCategorize(t *testing.T) {
	categorizer := NewCategorizer(testCategoryConfig())

	tests := []struct {
		name    string
		intent  core.Intent
		subject string
		body    string
		want    core.Category
	}{
		{"legal keyword", core.IntentRequest, "Contract review", "see attached", core.CategoryLegal},
		{"finance keyword", core.IntentNotification, "Invoice 42", "payment due", core.CategoryFinance},
		{"spam intent", core.IntentSpam, "You won", "claim now", core.CategorySpam},
		{"action intent", core.IntentQuestion, "Quick one", "how do I reset", core.CategoryAction},
		{"waiting content", core.IntentInformational, "Status", "waiting on the vendor", core.CategoryWaiting},
		{"default fyi", core.IntentInformational, "Heads up", "office closed friday", core.CategoryFYI},
		{"empty content fyi", core.IntentInformational, "", "", core.CategoryFYI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizer.Categorize(tt.intent, tt.subject, tt.body)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryPrecedence(t *testing.T) {
	categorizer := NewCategorizer(testCategoryConfig())

	tests := []struct {
		name    string
		intent  core.Intent
		subject string
		body    string
		want    core.Category
	}{
		{"legal beats spam intent", core.IntentSpam, "Contract winner", "attorney claims", core.CategoryLegal},
		{"legal beats finance", core.IntentRequest, "Contract invoice", "", core.CategoryLegal},
		{"finance beats action intent", core.IntentRequest, "Invoice due", "please pay", core.CategoryFinance},
		{"spam intent beats action keywords", core.IntentSpam, "hello", "waiting on you", core.CategorySpam},
		{"action beats waiting content", core.IntentRequest, "nudge", "waiting on your reply please", core.CategoryAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizer.Categorize(tt.intent, tt.subject, tt.body)
			assert.Equal(t, tt.want, got)
		})
	}
}
