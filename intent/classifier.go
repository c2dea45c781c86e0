package intent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sage-x-project/chat-router/llm"
	"github.com/sage-x-project/chat-router/logger"
	"github.com/sage-x-project/chat-router/resilience"
)

// Classifier resolves an utterance to an intent through an ordered chain:
// heuristics, then the model-backed stage, then the qa default. It never
// returns an error; total failure degrades to the default.
type Classifier struct {
	provider llm.Provider
	breaker  *resilience.CircuitBreaker
	log      *logger.Logger
}

// NewClassifier builds a classifier around a client provider.
func NewClassifier(provider llm.Provider, log *logger.Logger) *Classifier {
	c := &Classifier{
		provider: provider,
		breaker:  resilience.NewCircuitBreaker(3, 30*time.Second),
		log:      log.WithComponent("intent"),
	}
	c.breaker.SetOnStateChange(func(from, to resilience.State) {
		c.log.Warnf("classifier breaker %s -> %s", from, to)
	})
	return c
}

// Classify runs the resolver chain for one utterance.
func (c *Classifier) Classify(ctx context.Context, text, model string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Intent: LabelBad, Rationale: "Empty input."}
	}

	if result, ok := Heuristics(text); ok {
		c.log.Debugf("heuristic intent %s", result.Intent)
		return result
	}

	if result, ok := c.modelClassify(ctx, text, model); ok {
		return result
	}

	return Result{Intent: LabelQA, Rationale: "Fallback default after classifier failure."}
}

// modelClassify calls the completion model with a structured prompt and
// parses the JSON reply. ok is false on any invocation or parse failure.
func (c *Classifier) modelClassify(ctx context.Context, text, model string) (Result, bool) {
	client, err := c.provider.Generation(model, 0)
	if err != nil {
		c.log.Warnf("classifier model %s unavailable: %v", model, err)
		return Result{}, false
	}

	var raw string
	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		var invokeErr error
		raw, invokeErr = client.Invoke(ctx, buildIntentPrompt(text))
		return invokeErr
	})
	if err != nil {
		c.log.Warnf("intent model classification failed: %v", err)
		return Result{}, false
	}

	var parsed struct {
		Intent    string `json:"intent"`
		Rationale string `json:"rationale"`
		Reason    string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		c.log.Debugf("failed to parse classifier output: %s", raw)
		return Result{}, false
	}

	label, ok := ParseLabel(parsed.Intent)
	if !ok {
		c.log.Debugf("unknown intent label from classifier: %s", parsed.Intent)
		return Result{}, false
	}

	rationale := parsed.Rationale
	if rationale == "" {
		rationale = parsed.Reason
	}
	return Result{Intent: label, Rationale: rationale, RawResponse: raw}, true
}

func buildIntentPrompt(text string) string {
	return "You are an intent classification service that maps user utterances to the supported intents.\n" +
		"Always respond with a JSON object formatted like:\n" +
		"{\n" +
		"  \"intent\": \"<one_of: qa | small_talk | finance_quote | search | memory_write | escalate | bad>\",\n" +
		"  \"rationale\": \"<short natural language explanation>\"\n" +
		"}\n\n" +
		"Guidance:\n" +
		"- `qa`: informational question requiring retrieval over the knowledge base.\n" +
		"- `small_talk`: greetings, casual chat without factual lookup.\n" +
		"- `finance_quote`: user wants a stock/finance price lookup over external tools.\n" +
		"- `search`: explicit instructions to search the web or an external catalog.\n" +
		"- `memory_write`: the user wants the assistant to remember or store future data.\n" +
		"- `escalate`: safety-sensitive or operational issue that should be routed to a human.\n" +
		"- `bad`: disallowed or harmful request that must be declined.\n" +
		"- If unsure, choose the best available label and briefly explain why.\n\n" +
		"User message:\n\"\"\"" + text + "\"\"\"\n\nJSON Response:"
}

// extractJSON strips a single pair of markdown code fences, dropping a
// leading "json" tag inside the fence. Models often wrap their reply.
func extractJSON(response string) string {
	start := strings.Index(response, "```")
	if start == -1 {
		return response
	}
	end := strings.LastIndex(response, "```")
	if end <= start {
		return response
	}
	candidate := strings.TrimSpace(response[start+3 : end])
	if len(candidate) >= 4 && strings.EqualFold(candidate[:4], "json") {
		candidate = strings.TrimSpace(candidate[4:])
	}
	if candidate == "" {
		return response
	}
	return candidate
}
