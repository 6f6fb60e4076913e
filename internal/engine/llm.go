package engine

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Provider is the capability surface the engine needs from an LLM backend.
// The implementation is selected once at startup and never swapped at
// runtime.
type Provider interface {
	// Complete returns the full generation for prompt in one shot.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Stream emits the generation incrementally. The returned channel is
	// finite, closed by the implementation, and must be consumed by exactly
	// one reader. A chunk with Err set terminates the stream abnormally.
	Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error)
}

// StreamChunk is one increment of a streamed generation.
type StreamChunk struct {
	Text string
	Err  error
}

// newProvider selects the provider implementation from config.
func newProvider(c Config) Provider {
	switch c.LLMProvider {
	case "kit":
		return newKitProvider(c)
	default:
		return newOpenAIProvider(c)
	}
}

// kitProvider wraps the go-kit llm client. The client exposes no streaming
// surface, so Stream degrades to a single chunk carrying the whole
// completion.
type kitProvider struct {
	client *llm.Client
}

func newKitProvider(c Config) *kitProvider {
	return &kitProvider{client: llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)}
}

func (p *kitProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	IncrLLMCalls()
	out, err := p.client.Complete(ctx, system, prompt)
	if err != nil {
		IncrLLMErrors()
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (p *kitProvider) Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk, 1)
	go func() {
		defer close(ch)
		out, err := p.Complete(ctx, system, prompt)
		if err != nil {
			ch <- StreamChunk{Err: err}
			return
		}
		ch <- StreamChunk{Text: out}
	}()
	return ch, nil
}
