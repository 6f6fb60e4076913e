package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// Innertube get_transcript protocol. Undocumented and version-pinned: both
// the request shape and the deeply nested response path are
// reverse-engineered, and the platform reports "no transcript" by answering
// HTTP 200 with the expected structure simply missing.

const (
	defaultEndpoint = "https://www.youtube.com/youtubei/v1/get_transcript"

	// DefaultClientVersion is the pinned WEB client version. The platform
	// rotates it; override via Config.ClientVersion when the endpoint
	// starts rejecting requests.
	DefaultClientVersion = "2.20240826.01.00"

	maxResponseBytes = 3 * 1024 * 1024
)

type innertubeReq struct {
	Context innertubeCtx `json:"context"`
	Params  string       `json:"params"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

// getTranscriptResp mirrors the nested response path down to
// initialSegments. Every level is optional; missing levels decode to zero
// values and read as "no transcript".
type getTranscriptResp struct {
	Actions []struct {
		UpdateEngagementPanelAction struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						TranscriptSearchPanelRenderer struct {
							Body struct {
								TranscriptSegmentListRenderer struct {
									InitialSegments []initialSegment `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

// initialSegment is one of two mutually exclusive variants: a section header
// (skipped, not transcript text) or a content line.
type initialSegment struct {
	SectionHeader json.RawMessage  `json:"transcriptSectionHeaderRenderer"`
	Line          *segmentRenderer `json:"transcriptSegmentRenderer"`
}

// segmentRenderer is one content line. Offsets arrive as decimal strings of
// integer milliseconds.
type segmentRenderer struct {
	StartMs string    `json:"startMs"`
	EndMs   string    `json:"endMs"`
	Snippet *textNode `json:"snippet"`
}

// textNode is the two-variant text shape: either a single plain string or a
// sequence of runs.
type textNode struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

// text flattens the variant once at parse time: the plain string wins,
// otherwise the runs are concatenated in order.
func (n *textNode) text() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	var sb strings.Builder
	for _, r := range n.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// FetchCaptions issues a single get_transcript call for the given track and
// returns the timed segments in playback order.
//
// Error mapping: a response whose nested path is missing, mistyped, or ends
// in an empty initialSegments list yields *NotFoundError; transport
// failures, non-200 statuses, and undecodable JSON yield *ProtocolError.
// Individual malformed lines are skipped with a warning, never fatal. No
// retries happen inside this call.
func (c *Client) FetchCaptions(ctx context.Context, videoID string, track TrackDescriptor) ([]Segment, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ProtocolError{Op: "rate limit", Err: err}
		}
	}

	body, err := json.Marshal(innertubeReq{
		Context: innertubeCtx{Client: innertubeClient{
			ClientName:    "WEB",
			ClientVersion: c.clientVersion,
		}},
		Params: transcriptParams(videoID, track),
	})
	if err != nil {
		return nil, &ProtocolError{Op: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProtocolError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProtocolError{Op: "get_transcript", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &ProtocolError{Op: "get_transcript", Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ProtocolError{Op: "read response", Err: err}
	}

	var parsed getTranscriptResp
	if err := json.Unmarshal(raw, &parsed); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// A wrong type anywhere along the nested path means the payload
			// is not a transcript, which is how the platform says "none
			// exists". This conflates API drift with missing captions; log
			// the shape so drift is diagnosable.
			slog.Debug("transcript: unexpected response shape",
				slog.String("video_id", videoID),
				slog.String("field", typeErr.Field),
				slog.String("body", snippetOf(raw)))
			return nil, &NotFoundError{VideoID: videoID}
		}
		return nil, &ProtocolError{Op: "decode response", Err: err}
	}

	segments := initialSegments(parsed)
	if len(segments) == 0 {
		slog.Debug("transcript: initialSegments absent",
			slog.String("video_id", videoID),
			slog.String("body", snippetOf(raw)))
		return nil, &NotFoundError{VideoID: videoID}
	}

	return convertSegments(videoID, segments), nil
}

// initialSegments descends the fixed response path. Any absent level along
// the way collapses to nil.
func initialSegments(resp getTranscriptResp) []initialSegment {
	if len(resp.Actions) == 0 {
		return nil
	}
	return resp.Actions[0].UpdateEngagementPanelAction.Content.
		TranscriptRenderer.Content.
		TranscriptSearchPanelRenderer.Body.
		TranscriptSegmentListRenderer.InitialSegments
}

// convertSegments turns retained content lines into Segments, preserving
// input order. Section headers are dropped, as are lines missing a start
// offset, end offset, or text node. A headers-only response yields an empty
// slice, which is valid output.
func convertSegments(videoID string, in []initialSegment) []Segment {
	out := make([]Segment, 0, len(in))
	for _, seg := range in {
		if seg.Line == nil {
			continue // section header or unknown renderer
		}
		line := seg.Line
		if line.StartMs == "" || line.EndMs == "" || line.Snippet == nil {
			slog.Warn("transcript: skipping malformed segment",
				slog.String("video_id", videoID),
				slog.String("start_ms", line.StartMs),
				slog.String("end_ms", line.EndMs))
			continue
		}
		startMs, err1 := strconv.ParseInt(line.StartMs, 10, 64)
		endMs, err2 := strconv.ParseInt(line.EndMs, 10, 64)
		if err1 != nil || err2 != nil {
			slog.Warn("transcript: skipping segment with unparseable offsets",
				slog.String("video_id", videoID),
				slog.String("start_ms", line.StartMs),
				slog.String("end_ms", line.EndMs))
			continue
		}
		out = append(out, Segment{
			Text:     line.Snippet.text(),
			Start:    float64(startMs) / 1000,
			Duration: float64(endMs-startMs) / 1000,
		})
	}
	return out
}

// snippetOf truncates a raw body for diagnostic logging.
func snippetOf(raw []byte) string {
	const limit = 512
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
