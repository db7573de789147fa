package config

import (
	"time"
)

// BatchConfig controls batch-level behavior of the triage service
type BatchConfig struct {
	MaxBatchSize      int
	TopN              int
	MinutesPerEmail   int
	Workers           int
	ConsolidateBursts bool
	BurstWindow       time.Duration
}

// SenderConfig is the sender classification rule data
type SenderConfig struct {
	InternalDomains []string
	VIPAddresses    []string
	VIPDomains      []string
	VendorDomains   []string
	CustomerDomains []string
	NoReplyTokens   []string
}

// DomainPolicy holds the outbound domain allow/block lists
type DomainPolicy struct {
	Allowed []string
	Blocked []string
}

// DNDConfig is the Do-Not-Disturb policy snapshot
type DNDConfig struct {
	Enabled       bool
	OverrideScore int
}

// ScoringConfig holds the priority scoring weights and band thresholds.
// ClassWeights is keyed by sender class name.
type ScoringConfig struct {
	HighThreshold     int
	MediumThreshold   int
	ClassWeights      map[string]int
	UrgencyWeightNone int
	UrgencyWeightLow  int
	UrgencyWeightHigh int
	ActionWeight      int
	AgeWeightPerDay   int
	AgeCap            int
	ThreadDepthWeight int
	ThreadDepthCap    int
}

// IntentConfig holds the ordered intent keyword groups
type IntentConfig struct {
	Meeting      []string
	Complaint    []string
	Question     []string
	Request      []string
	Notification []string
	ReplyNeeded  []string
	SpamKeywords []string
	SpamDensity  float64
}

// UrgencyConfig holds the urgency signal keyword sets
type UrgencyConfig struct {
	Strong         []string
	Mild           []string
	PriorityLabels []string
}

// CategoryConfig holds the category keyword sets
type CategoryConfig struct {
	Legal   []string
	Finance []string
	Waiting []string
}

// GuardrailConfig holds the guardrail toggles and tone keyword sets
type GuardrailConfig struct {
	PIIEnabled         bool
	DomainEnabled      bool
	ToneEnabled        bool
	RiskEnabled        bool
	ToneBlockThreshold int
	Aggressive         []string
	Liability          []string
	Slang              []string
}

// DraftConfig selects the external drafting collaborator
type DraftConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// ServerConfig is the SMTP ingestion server configuration
type ServerConfig struct {
	IngestType      string
	ListenAddress   string
	RejectBlocked   bool
	ScoreHeader     string
	CategoryHeader  string
	DecisionHeader  string
	UpstreamAddress string
	UpstreamPort    int
	UpstreamEnabled bool
}

// GetBatch returns the batch configuration
func (c *Config) GetBatch() BatchConfig {
	window, err := c.GetDuration("triage.burst_window")
	if err != nil {
		window = 10 * time.Minute
	}
	return BatchConfig{
		MaxBatchSize:      c.GetInt("triage.max_batch_size"),
		TopN:              c.GetInt("triage.top_n"),
		MinutesPerEmail:   c.GetInt("triage.minutes_per_email"),
		Workers:           c.GetInt("triage.workers"),
		ConsolidateBursts: c.GetBool("triage.consolidate_bursts"),
		BurstWindow:       window,
	}
}

// GetSenders returns the sender classification configuration
func (c *Config) GetSenders() SenderConfig {
	return SenderConfig{
		InternalDomains: c.GetStringSlice("senders.internal_domains"),
		VIPAddresses:    c.GetStringSlice("senders.vip_addresses"),
		VIPDomains:      c.GetStringSlice("senders.vip_domains"),
		VendorDomains:   c.GetStringSlice("senders.vendor_domains"),
		CustomerDomains: c.GetStringSlice("senders.customer_domains"),
		NoReplyTokens:   c.GetStringSlice("senders.noreply_tokens"),
	}
}

// GetDomains returns the outbound domain policy
func (c *Config) GetDomains() DomainPolicy {
	return DomainPolicy{
		Allowed: c.GetStringSlice("domains.allowed"),
		Blocked: c.GetStringSlice("domains.blocked"),
	}
}

// GetDND returns the Do-Not-Disturb configuration
func (c *Config) GetDND() DNDConfig {
	return DNDConfig{
		Enabled:       c.GetBool("dnd.enabled"),
		OverrideScore: c.GetInt("dnd.override_score"),
	}
}

// GetScoring returns the scoring configuration
func (c *Config) GetScoring() ScoringConfig {
	return ScoringConfig{
		HighThreshold:   c.GetInt("scoring.high_threshold"),
		MediumThreshold: c.GetInt("scoring.medium_threshold"),
		ClassWeights: map[string]int{
			"vip":          c.GetInt("scoring.class_weights.vip"),
			"team":         c.GetInt("scoring.class_weights.team"),
			"customer":     c.GetInt("scoring.class_weights.customer"),
			"vendor":       c.GetInt("scoring.class_weights.vendor"),
			"no_reply":     c.GetInt("scoring.class_weights.no_reply"),
			"spam_suspect": c.GetInt("scoring.class_weights.spam_suspect"),
		},
		UrgencyWeightNone: c.GetInt("scoring.urgency_weight_none"),
		UrgencyWeightLow:  c.GetInt("scoring.urgency_weight_low"),
		UrgencyWeightHigh: c.GetInt("scoring.urgency_weight_high"),
		ActionWeight:      c.GetInt("scoring.action_weight"),
		AgeWeightPerDay:   c.GetInt("scoring.age_weight_per_day"),
		AgeCap:            c.GetInt("scoring.age_cap"),
		ThreadDepthWeight: c.GetInt("scoring.thread_depth_weight"),
		ThreadDepthCap:    c.GetInt("scoring.thread_depth_cap"),
	}
}

// GetIntents returns the intent keyword configuration
func (c *Config) GetIntents() IntentConfig {
	return IntentConfig{
		Meeting:      c.GetStringSlice("intents.meeting"),
		Complaint:    c.GetStringSlice("intents.complaint"),
		Question:     c.GetStringSlice("intents.question"),
		Request:      c.GetStringSlice("intents.request"),
		Notification: c.GetStringSlice("intents.notification"),
		ReplyNeeded:  c.GetStringSlice("intents.reply_needed"),
		SpamKeywords: c.GetStringSlice("intents.spam_keywords"),
		SpamDensity:  c.GetFloat64("intents.spam_density"),
	}
}

// GetUrgency returns the urgency keyword configuration
func (c *Config) GetUrgency() UrgencyConfig {
	return UrgencyConfig{
		Strong:         c.GetStringSlice("urgency.strong_keywords"),
		Mild:           c.GetStringSlice("urgency.mild_keywords"),
		PriorityLabels: c.GetStringSlice("urgency.priority_labels"),
	}
}

// GetCategories returns the category keyword configuration
func (c *Config) GetCategories() CategoryConfig {
	return CategoryConfig{
		Legal:   c.GetStringSlice("categories.legal_keywords"),
		Finance: c.GetStringSlice("categories.finance_keywords"),
		Waiting: c.GetStringSlice("categories.waiting_keywords"),
	}
}

// GetGuardrails returns the guardrail configuration
func (c *Config) GetGuardrails() GuardrailConfig {
	return GuardrailConfig{
		PIIEnabled:         c.GetBool("guardrails.pii_enabled"),
		DomainEnabled:      c.GetBool("guardrails.domain_enabled"),
		ToneEnabled:        c.GetBool("guardrails.tone_enabled"),
		RiskEnabled:        c.GetBool("guardrails.risk_enabled"),
		ToneBlockThreshold: c.GetInt("guardrails.tone_block_threshold"),
		Aggressive:         c.GetStringSlice("guardrails.tone.aggressive"),
		Liability:          c.GetStringSlice("guardrails.tone.liability"),
		Slang:              c.GetStringSlice("guardrails.tone.slang"),
	}
}

// GetDraft returns the draft provider selection
func (c *Config) GetDraft() DraftConfig {
	return DraftConfig{
		Provider: c.GetString("draft.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetServer returns the SMTP ingestion server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		IngestType:      c.GetString("server.ingest_type"),
		ListenAddress:   c.GetString("server.listen_address"),
		RejectBlocked:   c.GetBool("server.reject_blocked"),
		ScoreHeader:     c.GetString("server.headers.score"),
		CategoryHeader:  c.GetString("server.headers.category"),
		DecisionHeader:  c.GetString("server.headers.decision"),
		UpstreamAddress: c.GetString("server.upstream.address"),
		UpstreamPort:    c.GetInt("server.upstream.port"),
		UpstreamEnabled: c.GetBool("server.upstream.enabled"),
	}
}
