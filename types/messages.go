// Package types defines the wire contracts shared by the HTTP API, the
// routing orchestrator and the websocket log stream.
package types

import "time"

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the body of POST /ask: one question, no history.
type AskRequest struct {
	Question string `json:"question"`
	Model    string `json:"model,omitempty"`
}

// ChatRequest is the body of POST /chat: full conversation history.
// The last message must be from the user.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model,omitempty"`
}

// ModerationPayload carries the safety gate outcome in every response.
type ModerationPayload struct {
	Verdict    string   `json:"verdict"`
	Severity   string   `json:"severity"`
	Categories []string `json:"categories"`
	Rationale  *string  `json:"rationale"`
}

// AskResponse is the envelope returned by /ask and /chat. Callers never
// receive a bare answer string without the routing metadata.
type AskResponse struct {
	Answer           string            `json:"answer"`
	Intent           string            `json:"intent"`
	Moderation       ModerationPayload `json:"moderation"`
	RoutingRationale *string           `json:"routing_rationale"`
	Metadata         *ResponseMetadata `json:"metadata,omitempty"`
}

// ResponseMetadata carries per-request bookkeeping for the frontend.
type ResponseMetadata struct {
	RequestID        string `json:"request_id"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	Timestamp        string `json:"timestamp"`
}

// RoutingEvent is one stage of a routing decision, broadcast to any
// connected websocket dashboards.
type RoutingEvent struct {
	RequestID string    `json:"request_id,omitempty"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}
