package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidURL marks input with no recognizable video ID. Callers can
// route it to a 4xx response instead of blaming the upstream.
var ErrInvalidURL = errors.New("cannot extract video ID")

// SummaryOutput is the result of a summarize operation.
type SummaryOutput struct {
	VideoID string `json:"video_id"`
	Summary string `json:"summary"`
	Model   string `json:"model"`
	Cached  bool   `json:"cached,omitempty"`
}

// AnswerOutput is the result of a question operation.
type AnswerOutput struct {
	VideoID  string `json:"video_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Model    string `json:"model"`
}

// Summarize fetches the transcript for url and produces a TL;DR summary.
// Results are cached per video and model; refresh bypasses the cache.
func Summarize(ctx context.Context, url string, refresh bool) (*SummaryOutput, error) {
	IncrSummarizeRequests()

	videoID := ExtractVideoID(url)
	if videoID == "" {
		return nil, fmt.Errorf("summarize: %w: %q", ErrInvalidURL, url)
	}

	key := CacheKey("summary", videoID, cfg.LLMModel)
	if !refresh {
		if out, ok := CacheLoadJSON[SummaryOutput](ctx, key); ok {
			out.Cached = true
			return &out, nil
		}
	}

	segs, err := FetchTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}

	summary, err := cfg.LLM.Complete(ctx, summarySystemPrompt, TranscriptText(segs))
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", videoID, err)
	}

	out := SummaryOutput{VideoID: videoID, Summary: summary, Model: cfg.LLMModel}
	CacheStoreJSON(ctx, key, out)
	recordSummary(videoID, summary, cfg.LLMModel)
	return &out, nil
}

// SummarizeStream streams summary chunks through emit as they arrive from
// the provider. The assembled summary is cached and recorded on success.
// A cache hit is emitted as a single chunk.
func SummarizeStream(ctx context.Context, url string, emit func(string) error) error {
	IncrSummarizeRequests()

	videoID := ExtractVideoID(url)
	if videoID == "" {
		return fmt.Errorf("summarize: %w: %q", ErrInvalidURL, url)
	}

	key := CacheKey("summary", videoID, cfg.LLMModel)
	if out, ok := CacheLoadJSON[SummaryOutput](ctx, key); ok {
		return emit(out.Summary)
	}

	segs, err := FetchTranscript(ctx, videoID)
	if err != nil {
		return err
	}

	summary, err := streamTo(ctx, summarySystemPrompt, TranscriptText(segs), emit)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", videoID, err)
	}

	out := SummaryOutput{VideoID: videoID, Summary: summary, Model: cfg.LLMModel}
	CacheStoreJSON(ctx, key, out)
	recordSummary(videoID, summary, cfg.LLMModel)
	return nil
}

// ChatTurn is one prior exchange in a follow-up conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is a transcript question with optional conversation context:
// a previously generated summary and the prior chat turns, both folded
// into the prompt so follow-up questions can reference earlier answers.
type AskRequest struct {
	URL      string
	Question string
	Summary  string
	History  []ChatTurn
}

// Ask answers a question about a video using only its transcript.
// Answers are not cached: questions vary too much for keying to pay off.
func Ask(ctx context.Context, req AskRequest) (*AnswerOutput, error) {
	IncrQuestionRequests()

	videoID := ExtractVideoID(req.URL)
	if videoID == "" {
		return nil, fmt.Errorf("ask: %w: %q", ErrInvalidURL, req.URL)
	}
	if req.Question == "" {
		return nil, errors.New("ask: question is required")
	}

	segs, err := FetchTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}

	answer, err := cfg.LLM.Complete(ctx, questionSystemPrompt, questionPrompt(req, TranscriptText(segs)))
	if err != nil {
		return nil, fmt.Errorf("ask %s: %w", videoID, err)
	}

	return &AnswerOutput{VideoID: videoID, Question: req.Question, Answer: answer, Model: cfg.LLMModel}, nil
}

// AskStream streams an answer through emit as it arrives from the provider.
func AskStream(ctx context.Context, req AskRequest, emit func(string) error) error {
	IncrQuestionRequests()

	videoID := ExtractVideoID(req.URL)
	if videoID == "" {
		return fmt.Errorf("ask: %w: %q", ErrInvalidURL, req.URL)
	}
	if req.Question == "" {
		return errors.New("ask: question is required")
	}

	segs, err := FetchTranscript(ctx, videoID)
	if err != nil {
		return err
	}

	if _, err := streamTo(ctx, questionSystemPrompt, questionPrompt(req, TranscriptText(segs)), emit); err != nil {
		return fmt.Errorf("ask %s: %w", videoID, err)
	}
	return nil
}

// questionPrompt assembles the tagged user prompt: transcript, then the
// optional prior summary and chat history, then the current question.
func questionPrompt(req AskRequest, transcriptText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<TRANSCRIPT>\n%s\n</TRANSCRIPT>\n", transcriptText)
	if req.Summary != "" {
		fmt.Fprintf(&sb, "<SUMMARY>\n%s\n</SUMMARY>\n", req.Summary)
	}
	if len(req.History) > 0 {
		if turns, err := json.Marshal(req.History); err == nil {
			fmt.Fprintf(&sb, "<CHAT_HISTORY>\n%s\n</CHAT_HISTORY>\n", turns)
		}
	}
	fmt.Fprintf(&sb, "<CURRENT_QUESTION>\n%s\n</CURRENT_QUESTION>", req.Question)
	return sb.String()
}

// streamTo drains a provider stream into emit and returns the assembled
// text. emit errors abort the stream; the provider goroutine unwinds on
// context cancellation.
func streamTo(ctx context.Context, system, prompt string, emit func(string) error) (string, error) {
	ch, err := cfg.LLM.Stream(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	var full []byte
	for chunk := range ch {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		full = append(full, chunk.Text...)
		if err := emit(chunk.Text); err != nil {
			slog.Debug("stream consumer gone", slog.Any("error", err))
			return "", err
		}
	}
	return string(full), nil
}
