package routing

import (
	"context"
	"strings"
)

const smallTalkTemperature = 0.6

// smallTalk generates a short conversational reply. Any failure falls
// back to a canned greeting so chit-chat never surfaces an error.
func (o *Orchestrator) smallTalk(ctx context.Context, text, model string) string {
	client, err := o.engines.Generation(model, smallTalkTemperature)
	if err != nil {
		o.log.Warnf("small talk model unavailable: %v", err)
		return smallTalkFallback
	}
	reply, err := client.Invoke(ctx, buildSmallTalkPrompt(text))
	if err != nil {
		o.log.Warnf("small talk generation failed: %v", err)
		return smallTalkFallback
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return smallTalkFallback
	}
	return reply
}

const smallTalkFallback = "Hi there! How can I help you today?"

func buildSmallTalkPrompt(text string) string {
	return "You are a friendly assistant engaging in casual conversation.\n" +
		"Reply warmly and briefly (one or two sentences) to the user's message.\n" +
		"Do not invent facts or offer services you cannot perform.\n\n" +
		"User message:\n\"\"\"" + text + "\"\"\""
}
