package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// openAIProvider speaks the OpenAI-compatible chat completions protocol,
// which also covers Gemini through its OpenAI-compatible endpoint (the
// default API base). Unlike the kit provider it streams natively via SSE.
type openAIProvider struct {
	base      string
	key       string
	model     string
	temp      float64
	maxTokens int
	http      *http.Client
}

func newOpenAIProvider(c Config) *openAIProvider {
	return &openAIProvider{
		base:      strings.TrimRight(c.LLMAPIBase, "/"),
		key:       c.LLMAPIKey,
		model:     c.LLMModel,
		temp:      c.LLMTemperature,
		maxTokens: c.LLMMaxTokens,
		http:      &http.Client{Timeout: 120 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamDelta struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (p *openAIProvider) request(system, prompt string, stream bool) chatRequest {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})
	return chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: p.temp,
		MaxTokens:   p.maxTokens,
		Stream:      stream,
	}
}

func (p *openAIProvider) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.key != "" {
		req.Header.Set("Authorization", "Bearer "+p.key)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("llm: HTTP %d: %s", resp.StatusCode, snippet)
	}
	return resp, nil
}

func (p *openAIProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	IncrLLMCalls()

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		return p.post(ctx, p.request(system, prompt, false))
	})
	if err != nil {
		IncrLLMErrors()
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		IncrLLMErrors()
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		IncrLLMErrors()
		return "", errors.New("llm: empty choices in response")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Stream issues a streaming chat completion and forwards delta chunks until
// the [DONE] sentinel. The body is consumed on a goroutine; cancelling ctx
// aborts the read.
func (p *openAIProvider) Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error) {
	IncrLLMCalls()

	resp, err := p.post(ctx, p.request(system, prompt, true))
	if err != nil {
		IncrLLMErrors()
		return nil, err
	}

	ch := make(chan StreamChunk, 8)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}
			var delta chatStreamDelta
			if err := json.Unmarshal([]byte(data), &delta); err != nil {
				continue // keep-alives and unknown event payloads
			}
			if len(delta.Choices) == 0 {
				continue
			}
			if text := delta.Choices[0].Delta.Content; text != "" {
				select {
				case ch <- StreamChunk{Text: text}:
				case <-ctx.Done():
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			IncrLLMErrors()
			select {
			case ch <- StreamChunk{Err: fmt.Errorf("llm: stream read: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}
