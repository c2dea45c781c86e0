// Package intent classifies user utterances for downstream routing. Cheap
// pattern heuristics run first; the model-backed classifier only sees
// utterances the heuristics could not resolve.
package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sage-x-project/chat-router/finance"
)

// Label is a supported high-level intent for downstream routing.
type Label string

const (
	// LabelQA is a question over the knowledge base
	LabelQA Label = "qa"
	// LabelSmallTalk is chit-chat, pleasantries, etc.
	LabelSmallTalk Label = "small_talk"
	// LabelFinanceQuote is a financial quote lookup
	LabelFinanceQuote Label = "finance_quote"
	// LabelSearch is an explicit request to search external data
	LabelSearch Label = "search"
	// LabelMemoryWrite is the user asking to store or remember info
	LabelMemoryWrite Label = "memory_write"
	// LabelEscalate requires human hand-off or a different channel
	LabelEscalate Label = "escalate"
	// LabelBad is a disallowed or harmful request that must be declined
	LabelBad Label = "bad"
)

// ParseLabel maps a string onto the closed label set.
func ParseLabel(s string) (Label, bool) {
	switch Label(strings.TrimSpace(s)) {
	case LabelQA, LabelSmallTalk, LabelFinanceQuote, LabelSearch,
		LabelMemoryWrite, LabelEscalate, LabelBad:
		return Label(strings.TrimSpace(s)), true
	default:
		return "", false
	}
}

// RetrievalRequired reports whether the intent is answered from the
// knowledge base.
func (l Label) RetrievalRequired() bool {
	return l == LabelQA || l == LabelSearch
}

// Result is the normalized classifier output, produced once per utterance.
type Result struct {
	Intent      Label
	Rationale   string
	RawResponse string
}

// Ordered heuristic pattern groups; first match wins.
var badPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(system|root|admin)?\s*password\b`),
	regexp.MustCompile(`(?i)\bshare\s+(?:your|the)\s+(?:credentials|password|secret)\b`),
}

var smallTalkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(hi|hello|hey|howdy)\b`),
	regexp.MustCompile(`(?i)\b(how are you|what's up|whats up)\b`),
	regexp.MustCompile(`(?i)\b(thank(s| you)|appreciate)\b`),
}

var memoryWritePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bremember that\b`),
	regexp.MustCompile(`(?i)\bsave (this|that|my)\b`),
}

var searchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bgoogle\b`),
	regexp.MustCompile(`(?i)\bsearch for\b`),
	regexp.MustCompile(`(?i)\blook up\b`),
}

var financeKeywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(stock|share)s?\s+(?:price|quote)\b`),
	regexp.MustCompile(`(?i)\b(?:price|quote)\s+(?:for|of)\s+[A-Za-z]{1,5}\b`),
	regexp.MustCompile(`(?i)\bticker\b`),
}

// Heuristics applies the ordered pattern groups to a trimmed, non-empty
// utterance. ok is false when no rule matched and the model-backed stage
// should run. Deterministic: identical input yields identical output.
func Heuristics(text string) (Result, bool) {
	if matchAny(badPatterns, text) {
		return Result{Intent: LabelBad, Rationale: "Credential harvesting attempt."}, true
	}
	if matchAny(smallTalkPatterns, text) {
		return Result{Intent: LabelSmallTalk, Rationale: "Greeting detected."}, true
	}
	if matchAny(memoryWritePatterns, text) {
		return Result{Intent: LabelMemoryWrite, Rationale: "User requested to remember information."}, true
	}
	if matchAny(searchPatterns, text) {
		return Result{Intent: LabelSearch, Rationale: "Explicit search request."}, true
	}
	if symbol, ok := finance.ExtractSymbol(text); ok && matchAny(financeKeywordPatterns, text) {
		return Result{
			Intent:    LabelFinanceQuote,
			Rationale: fmt.Sprintf("Finance quote request detected for %s.", symbol),
		}, true
	}
	if len(strings.Fields(text)) <= 3 && strings.HasSuffix(text, "?") {
		return Result{Intent: LabelSmallTalk, Rationale: "Short question likely chit-chat."}, true
	}
	return Result{}, false
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
