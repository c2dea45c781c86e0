// Package safety is the content gate run before any retrieval or
// generation. Fast deny/warn pattern tables enforce the obvious cases;
// a moderation model resolves the rest, defaulting to allow so benign
// traffic keeps flowing.
package safety

import (
	"fmt"
	"regexp"
)

// Severity orders how serious a finding is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity maps a string onto the severity set.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return Severity(s), true
	default:
		return "", false
	}
}

// Verdict is the coarse gate decision.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictWarn  Verdict = "warn"
	VerdictBlock Verdict = "block"
)

// ParseVerdict maps a string onto the verdict set.
func ParseVerdict(s string) (Verdict, bool) {
	switch Verdict(s) {
	case VerdictAllow, VerdictWarn, VerdictBlock:
		return Verdict(s), true
	default:
		return "", false
	}
}

// Result is one moderation outcome. Immutable once constructed.
type Result struct {
	Verdict    Verdict
	Severity   Severity
	Categories []string
	Rationale  string
}

// Blocked reports whether the verdict forbids handling the request.
func (r Result) Blocked() bool {
	return r.Verdict == VerdictBlock
}

type patternRule struct {
	pattern    *regexp.Regexp
	categories []string
}

// Block table is checked first; warn table only runs when nothing blocked.
var blockRules = []patternRule{
	{regexp.MustCompile(`(?i)\b(?:build|make|create)\b.*\b(?:bomb|explosive|weapon)\b`), []string{"weapons"}},
	{regexp.MustCompile(`(?i)\b(?:instructions?|step[-\s]?by[-\s]?step)\b.*\b(?:bomb|explosive|weapon)\b`), []string{"weapons"}},
	{regexp.MustCompile(`(?i)\b(?:kill|murder|suicide)\b`), []string{"violence"}},
	{regexp.MustCompile(`(?i)\b(?:credit card|ssn|social security number)\b`), []string{"privacy"}},
	{regexp.MustCompile(`(?i)\b(system|root|admin)?\s*password\b`), []string{"privacy"}},
}

var warnRules = []patternRule{
	{regexp.MustCompile(`(?i)\b(?:hack|exploit)\b`), []string{"questionable"}},
	{regexp.MustCompile(`(?i)\b(?:nsfw|explicit)\b`), []string{"adult"}},
}

// PatternFilters runs the deny and warn tables over a trimmed, non-empty
// utterance. First hit wins; ok is false when no rule matched.
// Deterministic: identical input yields identical output.
func PatternFilters(text string) (Result, bool) {
	for _, rule := range blockRules {
		if rule.pattern.MatchString(text) {
			return Result{
				Verdict:    VerdictBlock,
				Severity:   SeverityHigh,
				Categories: rule.categories,
				Rationale:  fmt.Sprintf("Matched block pattern: %s", rule.pattern.String()),
			}, true
		}
	}
	for _, rule := range warnRules {
		if rule.pattern.MatchString(text) {
			return Result{
				Verdict:    VerdictWarn,
				Severity:   SeverityMedium,
				Categories: rule.categories,
				Rationale:  fmt.Sprintf("Matched warn pattern: %s", rule.pattern.String()),
			}, true
		}
	}
	return Result{}, false
}
