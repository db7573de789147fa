package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestDefaultsValidate(t *testing.T) {
	cfg := defaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultSnapshots(t *testing.T) {
	cfg := defaultConfig()

	batch := cfg.GetBatch()
	assert.Equal(t, 100, batch.MaxBatchSize)
	assert.Equal(t, 10, batch.TopN)
	assert.Equal(t, 3, batch.MinutesPerEmail)
	assert.Equal(t, 4, batch.Workers)
	assert.True(t, batch.ConsolidateBursts)
	assert.Equal(t, 10*time.Minute, batch.BurstWindow)

	scoring := cfg.GetScoring()
	assert.Equal(t, 70, scoring.HighThreshold)
	assert.Equal(t, 40, scoring.MediumThreshold)
	assert.Equal(t, 40, scoring.ClassWeights["vip"])
	assert.Equal(t, -15, scoring.ClassWeights["spam_suspect"])
	assert.Equal(t, 20, scoring.UrgencyWeightHigh)

	dnd := cfg.GetDND()
	assert.False(t, dnd.Enabled)
	assert.Equal(t, 85, dnd.OverrideScore)

	guardrails := cfg.GetGuardrails()
	assert.True(t, guardrails.PIIEnabled)
	assert.True(t, guardrails.DomainEnabled)
	assert.True(t, guardrails.ToneEnabled)
	assert.False(t, guardrails.RiskEnabled)
	assert.Equal(t, 3, guardrails.ToneBlockThreshold)

	assert.Equal(t, "none", cfg.GetDraft().Provider)
	assert.Equal(t, "memory", cfg.GetString("cache.type"))
	assert.Equal(t, "smtp", cfg.GetServer().IngestType)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]interface{}
	}{
		{
			"domain in both lists",
			map[string]interface{}{
				"domains.allowed": []string{"example.com"},
				"domains.blocked": []string{"Example.COM"},
			},
		},
		{
			"high threshold below medium",
			map[string]interface{}{"scoring.high_threshold": 30},
		},
		{
			"medium threshold zero",
			map[string]interface{}{"scoring.medium_threshold": 0},
		},
		{
			"high threshold above 100",
			map[string]interface{}{"scoring.high_threshold": 150},
		},
		{
			"urgency weights decreasing",
			map[string]interface{}{"scoring.urgency_weight_low": 30},
		},
		{
			"negative urgency weight",
			map[string]interface{}{"scoring.urgency_weight_none": -1},
		},
		{
			"zero batch size",
			map[string]interface{}{"triage.max_batch_size": 0},
		},
		{
			"zero minutes per email",
			map[string]interface{}{"triage.minutes_per_email": 0},
		},
		{
			"zero top n",
			map[string]interface{}{"triage.top_n": 0},
		},
		{
			"dnd override out of range",
			map[string]interface{}{"dnd.override_score": 120},
		},
		{
			"non-positive spam density",
			map[string]interface{}{"intents.spam_density": 0.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewEmptyViper()
			for key, value := range tt.set {
				v.Set(key, value)
			}
			assert.Error(t, NewFromViper(v).Validate())
		})
	}
}

func TestGetDuration(t *testing.T) {
	cfg := defaultConfig()

	ttl, err := cfg.GetDuration("cache.ttl")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)

	_, err = cfg.GetDuration("logging.level")
	assert.Error(t, err)
}

func TestOverridesWinOverDefaults(t *testing.T) {
	v := NewEmptyViper()
	v.Set("triage.top_n", 5)
	v.Set("senders.vip_addresses", []string{"ceo@company.com"})
	cfg := NewFromViper(v)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.GetBatch().TopN)
	assert.Equal(t, []string{"ceo@company.com"}, cfg.GetSenders().VIPAddresses)
}
