package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go_tldw/internal/engine/transcript"
	"golang.org/x/time/rate"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIKey    string  // Data API v3 key; empty disables track resolution
	InnertubeVersion string  // pinned WEB client version for get_transcript
	InnertubeRPS     float64 // get_transcript requests per second; 0 = unlimited

	LLMProvider        string // "openai" (native streaming) or "kit"
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int

	MaxTranscriptChars   int           // transcript cap before prompting
	TranscriptAttempts   int           // total attempts in the retry wrapper
	TranscriptRetryDelay time.Duration // fixed delay between attempts

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HistoryDBPath        string // sqlite summary history; empty = default location

	HTTPClient *http.Client

	// Transcript and LLM are built by Init when nil; tests inject fakes.
	Transcript *transcript.Client
	LLM        Provider
}

var cfg Config

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.TranscriptAttempts < 1 {
		c.TranscriptAttempts = 1
	}
	if c.MaxTranscriptChars <= 0 {
		c.MaxTranscriptChars = 24000
	}
	if c.Transcript == nil {
		var limiter *rate.Limiter
		if c.InnertubeRPS > 0 {
			limiter = rate.NewLimiter(rate.Limit(c.InnertubeRPS), 1)
		}
		c.Transcript = transcript.NewClient(transcript.Config{
			HTTPClient:    c.HTTPClient,
			APIKey:        c.YouTubeAPIKey,
			ClientVersion: c.InnertubeVersion,
			Limiter:       limiter,
		})
	}
	if c.LLM == nil {
		c.LLM = newProvider(c)
	}
	cfg = c
}
