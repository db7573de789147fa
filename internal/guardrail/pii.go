package guardrail

import (
	"math"
	"regexp"
	"strings"

	"github.com/mikey/inbox-triage/internal/core"
)

var (
	ssnPattern      = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	cardPattern     = regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`)
	apiKeyPattern   = regexp.MustCompile(`\b(?:sk-[A-Za-z0-9]{16,}|AKIA[0-9A-Z]{16}|ghp_[A-Za-z0-9]{20,}|xox[baprs]-[A-Za-z0-9-]{10,})\b`)
	passwordPattern = regexp.MustCompile(`(?i)\bpassword\s*[:=]\s*\S+`)
	tokenPattern    = regexp.MustCompile(`\b[A-Za-z0-9+/_=-]{28,}\b`)
)

// entropyThreshold separates prose-like tokens from key material.
// Random base64-ish secrets sit well above 4 bits per character.
const entropyThreshold = 4.0

// piiCheck detects SSNs, card numbers, API-key-shaped tokens and
// password-like strings in outbound content. Every match blocks, and the
// stored evidence is the redacted match span; the raw secret is never kept
// or logged.
type piiCheck struct{}

func newPIICheck() *piiCheck {
	return &piiCheck{}
}

func (c *piiCheck) Kind() core.FlagKind {
	return core.FlagPII
}

func (c *piiCheck) Inspect(target Target) []core.GuardrailFlag {
	var flags []core.GuardrailFlag

	flag := func(pattern, match string) {
		flags = append(flags, core.GuardrailFlag{
			Kind:           core.FlagPII,
			Severity:       core.SeverityBlock,
			Evidence:       redact(match),
			MatchedPattern: pattern,
		})
	}

	for _, m := range ssnPattern.FindAllString(target.Body, -1) {
		flag("ssn", m)
	}
	for _, m := range cardPattern.FindAllString(target.Body, -1) {
		if luhnValid(m) {
			flag("credit-card", m)
		}
	}
	for _, m := range apiKeyPattern.FindAllString(target.Body, -1) {
		flag("api-key", m)
	}
	for _, m := range passwordPattern.FindAllString(target.Body, -1) {
		flag("password", m)
	}
	for _, m := range tokenPattern.FindAllString(target.Body, -1) {
		if shannonEntropy(m) >= entropyThreshold {
			flag("high-entropy-token", m)
		}
	}

	return flags
}

// redact masks everything but the last four characters of a match
func redact(match string) string {
	runes := []rune(match)
	keep := 4
	if len(runes) <= keep {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-keep) + string(runes[len(runes)-keep:])
}

// luhnValid validates the digits of a candidate card number
func luhnValid(candidate string) bool {
	var digits []int
	for _, r := range candidate {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 16 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	entropy := 0.0
	for _, n := range freq {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
