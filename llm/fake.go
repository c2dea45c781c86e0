package llm

import (
	"context"
	"sync"
)

// FakeClient is a scripted Client for tests. Responses are returned in
// order; the last one repeats once the script runs out.
type FakeClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
}

// NewFakeClient returns a client that always answers with response.
func NewFakeClient(response string) *FakeClient {
	return &FakeClient{Responses: []string{response}}
}

// Invoke records the prompt and returns the next scripted response.
func (f *FakeClient) Invoke(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", ErrEmptyCompletion
	}
	resp := f.Responses[0]
	if len(f.Responses) > 1 {
		f.Responses = f.Responses[1:]
	}
	return resp, nil
}

// CallCount returns how many times Invoke was called.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Prompts)
}

// LastPrompt returns the most recent prompt, or "" if none.
func (f *FakeClient) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1]
}

// FakeProvider implements Provider over fixed fake clients.
type FakeProvider struct {
	GenerationClient Client
	ModerationClient Client
	GenerationErr    error
	ModerationErr    error
}

func (p *FakeProvider) Generation(string, float64) (Client, error) {
	if p.GenerationErr != nil {
		return nil, p.GenerationErr
	}
	return p.GenerationClient, nil
}

func (p *FakeProvider) Moderation(string) (Client, error) {
	if p.ModerationErr != nil {
		return nil, p.ModerationErr
	}
	return p.ModerationClient, nil
}
