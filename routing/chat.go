package routing

import (
	"context"
	"strings"

	"github.com/sage-x-project/chat-router/intent"
	"github.com/sage-x-project/chat-router/types"
)

// HandleChat routes a multi-turn conversation. The decision pipeline runs
// on the final user message only; earlier turns are folded into the
// generation prompt as context. The HTTP layer validates that the last
// message has the user role; an empty conversation is treated as empty
// input and refused.
func (o *Orchestrator) HandleChat(ctx context.Context, messages []types.ChatMessage, model string) types.AskResponse {
	if len(messages) == 0 {
		decision := o.Analyze(ctx, "", model)
		return BuildPayload(decision.RefusalResponse(), decision)
	}

	last := messages[len(messages)-1]
	decision := o.Analyze(ctx, last.Content, model)

	var answer string
	switch {
	case decision.ShouldRefuse:
		answer = decision.RefusalResponse()
	case decision.ShouldEscalate:
		answer = decision.EscalationResponse()
	default:
		answer = o.chatReply(ctx, messages, model, decision)
	}
	o.publish(ctx, "dispatch", "chat intent="+string(decision.Intent))
	return BuildPayload(answer, decision)
}

func (o *Orchestrator) chatReply(ctx context.Context, messages []types.ChatMessage, model string, decision Decision) string {
	last := messages[len(messages)-1]

	switch decision.Intent {
	case intent.LabelMemoryWrite:
		return "I'll remember that for later once memory storage is enabled."
	case intent.LabelFinanceQuote:
		return o.quotes.RenderQuote(ctx, last.Content)
	}

	client, err := o.engines.Generation(model, 0)
	if err != nil {
		o.log.Warnf("chat model unavailable: %v", err)
		return answerUnavailable
	}
	reply, err := client.Invoke(ctx, buildChatPrompt(messages))
	if err != nil {
		o.log.Warnf("chat generation failed: %v", err)
		return answerUnavailable
	}
	if reply = strings.TrimSpace(reply); reply == "" {
		return answerUnavailable
	}
	return reply
}

func buildChatPrompt(messages []types.ChatMessage) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that can handle both ordinary conversation and answering questions.\n")
	b.WriteString("If the user is simply greeting or chatting, respond naturally and politely.\n")
	b.WriteString("If the user asks a factual question, answer clearly and concisely, keeping it short (1-2 sentences)\n")
	b.WriteString("and avoiding unnecessary reasoning loops or speculation.\n\nConversation so far:\n")
	for _, msg := range messages {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("assistant:")
	return b.String()
}
