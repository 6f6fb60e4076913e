package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_tldw/internal/engine/transcript"
)

// FetchTranscript fetches the transcript for videoID through the cache and
// the resilience wrapper. Retries use a fixed delay and are bounded by
// TranscriptAttempts; a definitive *transcript.NotFoundError short-circuits
// the loop and is never retried, while protocol and network failures are.
func FetchTranscript(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	IncrTranscriptRequests()

	key := CacheKey("transcript", videoID)
	if segs, ok := CacheLoadJSON[[]transcript.Segment](ctx, key); ok {
		return segs, nil
	}

	rc := RetryConfig{
		MaxRetries:  cfg.TranscriptAttempts - 1,
		InitialWait: cfg.TranscriptRetryDelay,
		MaxWait:     cfg.TranscriptRetryDelay,
		Multiplier:  1, // fixed delay between attempts
	}
	segs, err := RetryDo(ctx, rc, func() ([]transcript.Segment, error) {
		return cfg.Transcript.FetchTranscript(ctx, videoID)
	})
	if err != nil {
		var notFound *transcript.NotFoundError
		if errors.As(err, &notFound) {
			IncrTranscriptNotFound()
		} else {
			IncrTranscriptFetchErrors()
		}
		return nil, err
	}

	CacheStoreJSON(ctx, key, segs)
	return segs, nil
}

// Transcript returns the flattened transcript text for url, capped at limit
// characters.
func Transcript(ctx context.Context, url string, limit int) (*TranscriptOutput, error) {
	videoID := ExtractVideoID(url)
	if videoID == "" {
		return nil, fmt.Errorf("transcript: %w: %q", ErrInvalidURL, url)
	}
	segs, err := FetchTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10000
	}
	return &TranscriptOutput{
		VideoID:  videoID,
		Text:     Truncate(TranscriptText(segs), limit),
		Segments: len(segs),
	}, nil
}
