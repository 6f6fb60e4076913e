package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anatolykoptev/go_tldw/internal/engine/transcript"
)

// stubProvider is a canned Provider for orchestration tests.
type stubProvider struct {
	out        string
	chunks     []string
	err        error
	calls      atomic.Int64
	lastPrompt atomic.Value
}

func (p *stubProvider) Complete(_ context.Context, _, prompt string) (string, error) {
	p.calls.Add(1)
	p.lastPrompt.Store(prompt)
	return p.out, p.err
}

func (p *stubProvider) Stream(_ context.Context, _, _ string) (<-chan StreamChunk, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	ch := make(chan StreamChunk, len(p.chunks))
	for _, c := range p.chunks {
		ch <- StreamChunk{Text: c}
	}
	close(ch)
	return ch, nil
}

const innertubeBody = `{"actions":[{"updateEngagementPanelAction":{"content":{"transcriptRenderer":{"content":{"transcriptSearchPanelRenderer":{"body":{"transcriptSegmentListRenderer":{"initialSegments":[
	{"transcriptSegmentRenderer":{"startMs":"0","endMs":"1500","snippet":{"simpleText":"hello from the video"}}}
]}}}}}}}}]}`

const innertubeEmpty = `{"actions":[]}`

// setupEngine points the engine at a fake get_transcript endpoint and a
// stub provider. Cache and history are reset per test.
func setupEngine(t *testing.T, handler http.HandlerFunc, p Provider) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	InitCache("", time.Minute, 100, 5*time.Minute)
	Init(Config{
		HTTPClient:           srv.Client(),
		TranscriptAttempts:   3,
		TranscriptRetryDelay: time.Millisecond,
		MaxTranscriptChars:   24000,
		LLMModel:             "test-model",
		HistoryDBPath:        t.TempDir() + "/history.db",
		Transcript: transcript.NewClient(transcript.Config{
			HTTPClient: srv.Client(),
			Endpoint:   srv.URL,
		}),
		LLM: p,
	})
}

func TestSummarize(t *testing.T) {
	p := &stubProvider{out: "a tldr"}
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, p)

	out, err := Summarize(context.Background(), "https://youtu.be/dQw4w9WgXcQ", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Summary != "a tldr" {
		t.Errorf("got summary %q, want %q", out.Summary, "a tldr")
	}
	if out.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("got video_id %q, want %q", out.VideoID, "dQw4w9WgXcQ")
	}
	if out.Cached {
		t.Error("first result must not be marked cached")
	}

	// Second call hits the cache, no extra LLM call.
	out2, err := Summarize(context.Background(), "dQw4w9WgXcQ", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out2.Cached {
		t.Error("second result should be served from cache")
	}
	if p.calls.Load() != 1 {
		t.Errorf("expected 1 LLM call, got %d", p.calls.Load())
	}

	// Refresh bypasses the cache.
	out3, err := Summarize(context.Background(), "dQw4w9WgXcQ", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out3.Cached {
		t.Error("refresh result must not be marked cached")
	}
	if p.calls.Load() != 2 {
		t.Errorf("expected 2 LLM calls after refresh, got %d", p.calls.Load())
	}
}

func TestSummarizeBadURL(t *testing.T) {
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, &stubProvider{out: "x"})

	_, err := Summarize(context.Background(), "not a video", false)
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestSummarizeNotFoundShortCircuits(t *testing.T) {
	var hits atomic.Int64
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, innertubeEmpty)
	}, &stubProvider{out: "x"})

	_, err := Summarize(context.Background(), "dQw4w9WgXcQ", false)
	var notFound *transcript.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 endpoint hit (no retries for not found), got %d", hits.Load())
	}
}

func TestFetchTranscriptRetriesTransportErrors(t *testing.T) {
	var hits atomic.Int64
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "upstream sad", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, innertubeBody)
	}, &stubProvider{out: "x"})

	segs, err := FetchTranscript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 endpoint hits, got %d", hits.Load())
	}

	// Cached now: no further endpoint traffic.
	if _, err := FetchTranscript(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("expected cache hit, got %d endpoint hits", hits.Load())
	}
}

func TestSummarizeStream(t *testing.T) {
	p := &stubProvider{chunks: []string{"part one ", "part two"}}
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, p)

	var got []string
	err := SummarizeStream(context.Background(), "dQw4w9WgXcQ", func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(got, "") != "part one part two" {
		t.Errorf("assembled %q, want %q", strings.Join(got, ""), "part one part two")
	}

	// Assembled summary is cached; replay arrives as a single chunk.
	got = nil
	if err := SummarizeStream(context.Background(), "dQw4w9WgXcQ", func(chunk string) error {
		got = append(got, chunk)
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "part one part two" {
		t.Errorf("expected single cached chunk, got %v", got)
	}
	if p.calls.Load() != 1 {
		t.Errorf("expected 1 LLM call, got %d", p.calls.Load())
	}
}

func TestSummarizeStreamEmitError(t *testing.T) {
	p := &stubProvider{chunks: []string{"a", "b"}}
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, p)

	wantErr := errors.New("client went away")
	err := SummarizeStream(context.Background(), "dQw4w9WgXcQ", func(string) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected emit error to propagate, got %v", err)
	}
}

func TestAsk(t *testing.T) {
	p := &stubProvider{out: "the answer"}
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, p)

	out, err := Ask(context.Background(), AskRequest{URL: "dQw4w9WgXcQ", Question: "what is discussed?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Answer != "the answer" {
		t.Errorf("got answer %q, want %q", out.Answer, "the answer")
	}
	if out.Question != "what is discussed?" {
		t.Errorf("got question %q", out.Question)
	}
}

func TestAskRequiresQuestion(t *testing.T) {
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, &stubProvider{out: "x"})

	if _, err := Ask(context.Background(), AskRequest{URL: "dQw4w9WgXcQ"}); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestAskFoldsConversationContext(t *testing.T) {
	p := &stubProvider{out: "the answer"}
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, p)

	_, err := Ask(context.Background(), AskRequest{
		URL:      "dQw4w9WgXcQ",
		Question: "and after that?",
		Summary:  "a prior summary",
		History: []ChatTurn{
			{Role: "user", Content: "what happens first?"},
			{Role: "assistant", Content: "an intro"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := p.lastPrompt.Load().(string)
	for _, part := range []string{
		"<TRANSCRIPT>\nhello from the video\n</TRANSCRIPT>",
		"<SUMMARY>\na prior summary\n</SUMMARY>",
		"<CHAT_HISTORY>",
		`"what happens first?"`,
		`"assistant"`,
		"<CURRENT_QUESTION>\nand after that?\n</CURRENT_QUESTION>",
	} {
		if !strings.Contains(prompt, part) {
			t.Errorf("prompt missing %q:\n%s", part, prompt)
		}
	}
}

func TestAskOmitsEmptyContext(t *testing.T) {
	p := &stubProvider{out: "x"}
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, p)

	if _, err := Ask(context.Background(), AskRequest{URL: "dQw4w9WgXcQ", Question: "q"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := p.lastPrompt.Load().(string)
	if strings.Contains(prompt, "<SUMMARY>") || strings.Contains(prompt, "<CHAT_HISTORY>") {
		t.Errorf("empty context must not emit tagged blocks:\n%s", prompt)
	}
}

func TestTranscriptOperation(t *testing.T) {
	setupEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, innertubeBody)
	}, &stubProvider{out: "x"})

	out, err := Transcript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "hello from the video" {
		t.Errorf("got text %q", out.Text)
	}
	if out.Segments != 1 {
		t.Errorf("got %d segments, want 1", out.Segments)
	}
}
