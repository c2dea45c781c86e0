// Package routing is the central orchestration that combines safety
// moderation and intent classification into one decision, then dispatches
// the utterance to the matching handling path. The orchestrator has no
// failure mode that aborts a request: collaborator errors degrade tier by
// tier and every path ends in a well-formed response payload.
package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/sage-x-project/chat-router/finance"
	"github.com/sage-x-project/chat-router/intent"
	"github.com/sage-x-project/chat-router/llm"
	"github.com/sage-x-project/chat-router/logger"
	"github.com/sage-x-project/chat-router/rag"
	"github.com/sage-x-project/chat-router/safety"
	"github.com/sage-x-project/chat-router/types"
)

// Decision is the combined routing outcome for one utterance. Fields are
// computed once and never mutated.
type Decision struct {
	Intent         intent.Label
	Moderation     safety.Result
	ShouldRefuse   bool
	ShouldEscalate bool
	Rationale      string
}

// RefusalResponse renders the decline text for a refused request.
func (d Decision) RefusalResponse() string {
	if d.Moderation.Blocked() {
		return "I'm sorry, but I can't assist with that request."
	}
	return "I'm sorry, but I can't comply with that request."
}

// EscalationResponse renders the hand-off text for an escalated request.
func (d Decision) EscalationResponse() string {
	return "This request may require a human assistant. I've forwarded the details."
}

// Engines is the handle cache surface the orchestrator consumes.
type Engines interface {
	llm.Provider
	Query(model string) (rag.QueryEngine, error)
}

// EventSink receives stage-by-stage routing events (e.g. the websocket
// log broadcaster). Implementations must not block.
type EventSink interface {
	Publish(event types.RoutingEvent)
}

// Orchestrator wires the safety gate, the classifier and the response
// generators together.
type Orchestrator struct {
	moderator  *safety.Moderator
	classifier *intent.Classifier
	engines    Engines
	quotes     *finance.Service
	events     EventSink
	log        *logger.Logger
}

// NewOrchestrator builds the orchestrator. events may be nil.
func NewOrchestrator(engines Engines, quotes *finance.Service, events EventSink, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		moderator:  safety.NewModerator(engines, log),
		classifier: intent.NewClassifier(engines, log),
		engines:    engines,
		quotes:     quotes,
		events:     events,
		log:        log.WithComponent("routing"),
	}
}

// Analyze runs moderation then classification and folds both into one
// decision. A blocked verdict short-circuits: intent is forced to bad and
// classification never runs.
func (o *Orchestrator) Analyze(ctx context.Context, text, model string) Decision {
	moderation := o.moderator.Check(ctx, text, model)
	o.publish(ctx, "moderation", fmt.Sprintf("verdict=%s severity=%s", moderation.Verdict, moderation.Severity))

	if moderation.Blocked() {
		return Decision{
			Intent:       intent.LabelBad,
			Moderation:   moderation,
			ShouldRefuse: true,
			Rationale:    moderation.Rationale,
		}
	}

	result := o.classifier.Classify(ctx, text, model)
	o.publish(ctx, "classification", fmt.Sprintf("intent=%s", result.Intent))

	return Decision{
		Intent:         result.Intent,
		Moderation:     moderation,
		ShouldRefuse:   result.Intent == intent.LabelBad,
		ShouldEscalate: result.Intent == intent.LabelEscalate,
		Rationale:      result.Rationale,
	}
}

// Handle analyzes one utterance and produces the full response payload
// for it. This is the single-turn /ask path.
func (o *Orchestrator) Handle(ctx context.Context, text, model string) types.AskResponse {
	decision := o.Analyze(ctx, text, model)
	answer := o.dispatch(ctx, text, model, decision)
	o.publish(ctx, "dispatch", fmt.Sprintf("intent=%s refused=%t", decision.Intent, decision.ShouldRefuse))
	return BuildPayload(answer, decision)
}

func (o *Orchestrator) dispatch(ctx context.Context, text, model string, decision Decision) string {
	switch {
	case decision.ShouldRefuse:
		return decision.RefusalResponse()
	case decision.ShouldEscalate:
		return decision.EscalationResponse()
	}

	switch decision.Intent {
	case intent.LabelSmallTalk:
		return o.smallTalk(ctx, text, model)
	case intent.LabelMemoryWrite:
		// Acknowledgment stub only; conversation memory is not persisted.
		return "I'll remember that for later once memory storage is enabled."
	case intent.LabelFinanceQuote:
		return o.quotes.RenderQuote(ctx, text)
	default: // qa, search
		return o.retrieve(ctx, text, model)
	}
}

func (o *Orchestrator) retrieve(ctx context.Context, text, model string) string {
	engine, err := o.engines.Query(model)
	if err != nil {
		o.log.Warnf("query engine unavailable for %s: %v", model, err)
		return answerUnavailable
	}
	answer, err := engine.Query(ctx, text)
	if err != nil {
		o.log.Warnf("retrieval query failed: %v", err)
		return answerUnavailable
	}
	return answer.Text
}

const answerUnavailable = "Sorry, I couldn't generate an answer right now."

// BuildPayload renders the response envelope every caller receives.
func BuildPayload(answer string, decision Decision) types.AskResponse {
	categories := decision.Moderation.Categories
	if categories == nil {
		categories = []string{}
	}
	return types.AskResponse{
		Answer: answer,
		Intent: string(decision.Intent),
		Moderation: types.ModerationPayload{
			Verdict:    string(decision.Moderation.Verdict),
			Severity:   string(decision.Moderation.Severity),
			Categories: categories,
			Rationale:  optionalString(decision.Moderation.Rationale),
		},
		RoutingRationale: optionalString(decision.Rationale),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (o *Orchestrator) publish(ctx context.Context, stage, detail string) {
	if o.events == nil {
		return
	}
	o.events.Publish(types.RoutingEvent{
		RequestID: RequestIDFrom(ctx),
		Stage:     stage,
		Detail:    detail,
		Timestamp: time.Now(),
	})
}
