package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/inbox-triage/")
	v.AddConfigPath("$HOME/.inbox-triage")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("INBOX_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	cfg := &Config{v: v}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Batch defaults
	v.SetDefault("triage.max_batch_size", 100)
	v.SetDefault("triage.top_n", 10)
	v.SetDefault("triage.minutes_per_email", 3)
	v.SetDefault("triage.workers", 4)
	v.SetDefault("triage.consolidate_bursts", true)
	v.SetDefault("triage.burst_window", "10m")

	// Sender classification defaults
	v.SetDefault("senders.internal_domains", []string{})
	v.SetDefault("senders.vip_addresses", []string{})
	v.SetDefault("senders.vip_domains", []string{})
	v.SetDefault("senders.vendor_domains", []string{})
	v.SetDefault("senders.customer_domains", []string{})
	v.SetDefault("senders.noreply_tokens", []string{
		"no-reply", "noreply", "do-not-reply", "donotreply",
		"notifications", "mailer-daemon", "bounce",
	})

	// Domain policy defaults
	v.SetDefault("domains.allowed", []string{})
	v.SetDefault("domains.blocked", []string{})

	// Do-Not-Disturb defaults
	v.SetDefault("dnd.enabled", false)
	v.SetDefault("dnd.override_score", 85)

	// Scoring defaults. Weights are tunable; validation keeps the bands and
	// the urgency ladder ordered.
	v.SetDefault("scoring.high_threshold", 70)
	v.SetDefault("scoring.medium_threshold", 40)
	v.SetDefault("scoring.class_weights.vip", 40)
	v.SetDefault("scoring.class_weights.team", 30)
	v.SetDefault("scoring.class_weights.customer", 22)
	v.SetDefault("scoring.class_weights.vendor", 15)
	v.SetDefault("scoring.class_weights.no_reply", 2)
	v.SetDefault("scoring.class_weights.spam_suspect", -15)
	v.SetDefault("scoring.urgency_weight_none", 0)
	v.SetDefault("scoring.urgency_weight_low", 8)
	v.SetDefault("scoring.urgency_weight_high", 20)
	v.SetDefault("scoring.action_weight", 15)
	v.SetDefault("scoring.age_weight_per_day", 2)
	v.SetDefault("scoring.age_cap", 10)
	v.SetDefault("scoring.thread_depth_weight", 2)
	v.SetDefault("scoring.thread_depth_cap", 10)

	// Intent keyword groups, scanned against normalized subject+body
	v.SetDefault("intents.meeting", []string{
		"meeting", "schedule a", "calendar", "invite you", "zoom", "reschedule",
	})
	v.SetDefault("intents.complaint", []string{
		"complaint", "unacceptable", "frustrated", "disappointed",
		"not working", "escalate", "unhappy",
	})
	v.SetDefault("intents.question", []string{
		"?", "question", "could you clarify", "wondering",
	})
	v.SetDefault("intents.request", []string{
		"please", "could you", "can you", "action required", "action needed",
		"request", "approval needed", "signature needed",
	})
	v.SetDefault("intents.notification", []string{
		"notification", "automated", "do not reply", "newsletter", "digest",
		"receipt", "alert", "weekly summary",
	})
	v.SetDefault("intents.reply_needed", []string{
		"please respond", "awaiting your reply", "get back to me",
		"any update", "response needed",
	})
	v.SetDefault("intents.spam_keywords", []string{
		"winner", "lottery", "free money", "click here", "limited time offer",
		"act now", "crypto giveaway", "wire me", "claim your prize",
	})
	v.SetDefault("intents.spam_density", 0.05)

	// Urgency signal, independent of intent
	v.SetDefault("urgency.strong_keywords", []string{
		"urgent", "asap", "emergency", "immediately", "critical",
		"production down", "outage", "security breach", "before eod",
	})
	v.SetDefault("urgency.mild_keywords", []string{
		"deadline", "time sensitive", "end of day", "today", "reminder",
		"overdue", "expires",
	})
	v.SetDefault("urgency.priority_labels", []string{"important", "urgent", "starred"})

	// Category keyword sets. Legal/finance detection is intentionally
	// conservative: these categories route to mandatory escalation.
	v.SetDefault("categories.legal_keywords", []string{
		"contract", "agreement", "legal", "lawyer", "attorney", "subpoena",
		"compliance", "nda", "litigation",
	})
	v.SetDefault("categories.finance_keywords", []string{
		"invoice", "payment", "wire transfer", "bank", "salary", "tax",
		"fee demand", "purchase order", "billing",
	})
	v.SetDefault("categories.waiting_keywords", []string{
		"waiting on", "no update yet", "pending your", "still waiting",
	})

	// Guardrail defaults
	v.SetDefault("guardrails.pii_enabled", true)
	v.SetDefault("guardrails.domain_enabled", true)
	v.SetDefault("guardrails.tone_enabled", true)
	v.SetDefault("guardrails.risk_enabled", false)
	v.SetDefault("guardrails.tone_block_threshold", 3)
	v.SetDefault("guardrails.tone.aggressive", []string{
		"idiot", "stupid", "incompetent", "ridiculous", "useless",
	})
	v.SetDefault("guardrails.tone.liability", []string{
		"guarantee", "promise", "warrant", "assure you", "legally binding",
	})
	v.SetDefault("guardrails.tone.slang", []string{
		"lol", "wtf", "lmao", "dude",
	})

	// Draft provider defaults
	v.SetDefault("draft.provider", "none")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Sender cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/triage_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/inbox_triage")

	// Server defaults
	v.SetDefault("server.ingest_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.reject_blocked", false)
	v.SetDefault("server.headers.score", "X-Triage-Score")
	v.SetDefault("server.headers.category", "X-Triage-Category")
	v.SetDefault("server.headers.decision", "X-Triage-Decision")
	v.SetDefault("server.upstream.address", "127.0.0.1")
	v.SetDefault("server.upstream.port", 10026)
	v.SetDefault("server.upstream.enabled", true)

	// CLI defaults
	v.SetDefault("cli.verbose", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate rejects configuration contract violations before any batch runs.
// A config that passes here can never fail mid-batch.
func (c *Config) Validate() error {
	allowed := make(map[string]struct{})
	for _, d := range c.GetStringSlice("domains.allowed") {
		allowed[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	for _, d := range c.GetStringSlice("domains.blocked") {
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(d))]; ok {
			return fmt.Errorf("domain %q appears in both allowed and blocked lists", d)
		}
	}

	high := c.GetInt("scoring.high_threshold")
	medium := c.GetInt("scoring.medium_threshold")
	if medium <= 0 || high <= medium || high > 100 {
		return fmt.Errorf("priority bands must satisfy 0 < medium(%d) < high(%d) <= 100", medium, high)
	}

	wNone := c.GetInt("scoring.urgency_weight_none")
	wLow := c.GetInt("scoring.urgency_weight_low")
	wHigh := c.GetInt("scoring.urgency_weight_high")
	if wNone < 0 || wLow < wNone || wHigh < wLow {
		return fmt.Errorf("urgency weights must be non-negative and non-decreasing: none=%d low=%d high=%d", wNone, wLow, wHigh)
	}

	if c.GetInt("triage.max_batch_size") <= 0 {
		return fmt.Errorf("triage.max_batch_size must be positive")
	}
	if c.GetInt("triage.minutes_per_email") <= 0 {
		return fmt.Errorf("triage.minutes_per_email must be positive")
	}
	if c.GetInt("triage.top_n") <= 0 {
		return fmt.Errorf("triage.top_n must be positive")
	}
	if override := c.GetInt("dnd.override_score"); override < 0 || override > 100 {
		return fmt.Errorf("dnd.override_score must be within 0..100, got %d", override)
	}
	if density := c.GetFloat64("intents.spam_density"); density <= 0 {
		return fmt.Errorf("intents.spam_density must be positive")
	}
	return nil
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
