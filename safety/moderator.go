package safety

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/sage-x-project/chat-router/llm"
	"github.com/sage-x-project/chat-router/logger"
	"github.com/sage-x-project/chat-router/resilience"
)

// Moderator resolves a moderation verdict through an ordered chain:
// pattern filters, then the moderation model, then default-allow. It
// never returns an error; collaborator failures degrade to the next tier.
type Moderator struct {
	provider llm.Provider
	breaker  *resilience.CircuitBreaker
	log      *logger.Logger
}

// NewModerator builds a moderator around a client provider. The provider
// decides which model serves moderation (a safety-tuned one where
// available, with a single fallback to the general model).
func NewModerator(provider llm.Provider, log *logger.Logger) *Moderator {
	m := &Moderator{
		provider: provider,
		breaker:  resilience.NewCircuitBreaker(3, 30*time.Second),
		log:      log.WithComponent("safety"),
	}
	m.breaker.SetOnStateChange(func(from, to resilience.State) {
		m.log.Warnf("moderation breaker %s -> %s", from, to)
	})
	return m
}

// Check runs the resolver chain for one utterance. Empty input blocks
// immediately without touching any model.
func (m *Moderator) Check(ctx context.Context, text, model string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{
			Verdict:   VerdictBlock,
			Severity:  SeverityHigh,
			Rationale: "Empty user input.",
		}
	}

	if result, ok := PatternFilters(text); ok {
		m.log.Debugf("pattern filter verdict %s", result.Verdict)
		return result
	}

	if result, ok := m.modelModerate(ctx, text, model); ok {
		return result
	}

	return Result{
		Verdict:   VerdictAllow,
		Severity:  SeverityLow,
		Rationale: "No safety issues detected.",
	}
}

// modelModerate asks the moderation model for a plain-text verdict. Each
// field is extracted independently; missing or malformed fields fall back
// to conservative defaults instead of failing the whole parse. ok is
// false only when the invocation itself failed.
func (m *Moderator) modelModerate(ctx context.Context, text, model string) (Result, bool) {
	client, err := m.provider.Moderation(model)
	if err != nil {
		m.log.Warnf("moderation model unavailable: %v", err)
		return Result{}, false
	}

	var raw string
	err = m.breaker.Do(ctx, func(ctx context.Context) error {
		var invokeErr error
		raw, invokeErr = client.Invoke(ctx, buildModerationPrompt(text))
		return invokeErr
	})
	if err != nil {
		m.log.Warnf("moderation model call failed: %v", err)
		return Result{}, false
	}

	result := Result{Verdict: VerdictAllow, Severity: SeverityLow}
	if v, ok := extractField(raw, "verdict"); ok {
		if verdict, valid := ParseVerdict(strings.ToLower(v)); valid {
			result.Verdict = verdict
		}
	}
	if v, ok := extractField(raw, "severity"); ok {
		if severity, valid := ParseSeverity(strings.ToLower(v)); valid {
			result.Severity = severity
		}
	}
	if v, ok := extractField(raw, "categories"); ok {
		for _, cat := range strings.Split(v, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				result.Categories = append(result.Categories, cat)
			}
		}
	}
	if v, ok := extractField(raw, "rationale"); ok {
		result.Rationale = v
	}
	return result, true
}

var fieldRes = map[string]*regexp.Regexp{
	"verdict":    regexp.MustCompile(`(?i)verdict\s*:\s*(.+)`),
	"severity":   regexp.MustCompile(`(?i)severity\s*:\s*(.+)`),
	"categories": regexp.MustCompile(`(?i)categories\s*:\s*(.+)`),
	"rationale":  regexp.MustCompile(`(?i)rationale\s*:\s*(.+)`),
}

func extractField(text, name string) (string, bool) {
	m := fieldRes[name].FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func buildModerationPrompt(text string) string {
	return "You are a content moderation classifier. Inspect the user message and determine whether the AI assistant should comply.\n" +
		"Respond with plain text lines formatted exactly as:\n" +
		"verdict: <allow|warn|block>\n" +
		"severity: <low|medium|high>\n" +
		"categories: <comma separated list drawn from self-harm, hate, violence, weapons, sexual, privacy, other>\n" +
		"rationale: <one sentence justification>\n\n" +
		"If the content is clearly safe, return \"allow\" and \"low\" severity.\n\n" +
		"User message:\n\"\"\"" + text + "\"\"\""
}
