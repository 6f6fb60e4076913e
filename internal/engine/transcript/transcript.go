// Package transcript retrieves YouTube caption tracks through the unofficial
// Innertube get_transcript endpoint.
//
// The implementation is split across four files by responsibility:
//
//	protobuf.go   — manual varint/length-delimited encoding of the params blob
//	resolver.go   — caption track resolution via the YouTube Data API v3
//	innertube.go  — get_transcript wire types and the protocol call
//	transcript.go — client construction and top-level orchestration
//
// The package has no global state: everything hangs off a Client built once
// at startup and safe for concurrent use.
package transcript

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// TrackKind distinguishes human-authored caption tracks from auto-generated
// (ASR) ones. Values match the Data API trackKind field and double as the
// wire value of the params track-kind override.
type TrackKind string

const (
	TrackStandard TrackKind = "standard"
	TrackASR      TrackKind = "asr"
)

// TrackDescriptor identifies one caption track of a video.
type TrackDescriptor struct {
	Language string    `json:"language"` // IETF tag, e.g. "en"
	Kind     TrackKind `json:"kind"`
}

// DefaultTrack is substituted when track resolution fails.
var DefaultTrack = TrackDescriptor{Language: "en", Kind: TrackStandard}

// Segment is one timed caption line. Segments are returned in playback order
// and never mutated after being produced.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // seconds
	Duration float64 `json:"duration"` // seconds
}

// Config holds everything a Client needs. Zero values get sensible defaults
// in NewClient.
type Config struct {
	HTTPClient *http.Client

	// APIKey is the YouTube Data API v3 key used by the track resolver.
	// Empty disables resolution; fetches then run with DefaultTrack.
	APIKey string

	// Endpoint is the get_transcript URL, overridable for tests.
	Endpoint string

	// DataAPIBase is the Data API v3 base URL, overridable for tests.
	DataAPIBase string

	// ClientVersion is the pinned WEB client version sent with every
	// get_transcript call. Platform-maintained: it silently rots, so it is
	// configuration rather than a hardcoded literal. Defaults to
	// DefaultClientVersion.
	ClientVersion string

	// Limiter optionally gates get_transcript calls across all goroutines
	// sharing the client. nil disables limiting.
	Limiter *rate.Limiter
}

// Client talks to the caption endpoints. Read-only after construction.
type Client struct {
	http          *http.Client
	apiKey        string
	endpoint      string
	dataAPIBase   string
	clientVersion string
	limiter       *rate.Limiter
}

// NewClient builds a Client, filling defaults for unset Config fields.
func NewClient(cfg Config) *Client {
	c := &Client{
		http:          cfg.HTTPClient,
		apiKey:        cfg.APIKey,
		endpoint:      cfg.Endpoint,
		dataAPIBase:   cfg.DataAPIBase,
		clientVersion: cfg.ClientVersion,
		limiter:       cfg.Limiter,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	if c.endpoint == "" {
		c.endpoint = defaultEndpoint
	}
	if c.dataAPIBase == "" {
		c.dataAPIBase = defaultDataAPIBase
	}
	if c.clientVersion == "" {
		c.clientVersion = DefaultClientVersion
	}
	return c
}

// FetchTranscript resolves the preferred caption track for videoID and
// fetches it. Track resolution is best-effort: any resolution failure is
// logged and replaced by DefaultTrack, since a wrong track only degrades
// summary quality. Fetch errors propagate unchanged, and no retries happen
// at this level.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) ([]Segment, error) {
	if videoID == "" {
		return nil, errors.New("video ID is empty")
	}

	track, err := c.ResolveTrack(ctx, videoID)
	if err != nil {
		slog.Warn("transcript: track resolution failed, using default",
			slog.String("video_id", videoID),
			slog.String("language", DefaultTrack.Language),
			slog.Any("error", err))
		track = DefaultTrack
	}

	return c.FetchCaptions(ctx, videoID, track)
}
