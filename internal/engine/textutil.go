package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"

	"github.com/anatolykoptev/go_tldw/internal/engine/transcript"
)

var (
	videoIDRE = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/(?:shorts|live|embed)/)([a-zA-Z0-9_-]{11})`)
	bareIDRE  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID pulls the 11-char video ID from any YouTube URL format.
// A bare ID passes through unchanged; anything unrecognized yields "".
func ExtractVideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if bareIDRE.MatchString(raw) {
		return raw
	}
	if m := videoIDRE.FindStringSubmatch(raw); len(m) >= 2 {
		return m[1]
	}
	return ""
}

// TranscriptText flattens segments into a single space-joined string capped
// at MaxTranscriptChars runes, the payload handed to the LLM.
func TranscriptText(segs []transcript.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t)
	}
	return strutil.TruncateWith(sb.String(), cfg.MaxTranscriptChars, "...")
}

// Truncate returns at most n bytes of s without splitting a rune at the
// boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for i := n; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return s[:i]
		}
	}
	return ""
}
