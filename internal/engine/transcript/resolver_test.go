package transcript

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeDataAPI serves canned videos/captions responses.
func fakeDataAPI(t *testing.T, videosBody, captionsBody string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			t.Error("data API request missing key parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/videos"):
			_, _ = w.Write([]byte(videosBody))
		case strings.HasSuffix(r.URL.Path, "/captions"):
			_, _ = w.Write([]byte(captionsBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{
		HTTPClient:  srv.Client(),
		APIKey:      "test-key",
		DataAPIBase: srv.URL,
	})
}

func videosItem(defaultLang, defaultAudioLang string) string {
	return `{"items":[{"snippet":{"defaultLanguage":"` + defaultLang +
		`","defaultAudioLanguage":"` + defaultAudioLang + `"}}]}`
}

const twoTracks = `{"items":[
	{"snippet":{"language":"ru","trackKind":"standard"}},
	{"snippet":{"language":"en","trackKind":"asr"}}]}`

func TestResolveTrackNoKey(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.ResolveTrack(context.Background(), "vid01")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("got %v, want ErrNoAPIKey", err)
	}
}

func TestResolveTrackErrors(t *testing.T) {
	tests := []struct {
		name     string
		videos   string
		captions string
		wantErr  string
	}{
		{"video missing", `{"items":[]}`, twoTracks, "no video found"},
		{"ambiguous video", `{"items":[{"snippet":{}},{"snippet":{}}]}`, twoTracks, "multiple videos"},
		{"no caption tracks", videosItem("en", ""), `{"items":[]}`, "no caption tracks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeDataAPI(t, tt.videos, tt.captions)
			_, err := c.ResolveTrack(context.Background(), "vid01")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveTrackPreferredLanguageMatch(t *testing.T) {
	c := fakeDataAPI(t, videosItem("en", ""), twoTracks)
	track, err := c.ResolveTrack(context.Background(), "vid01")
	if err != nil {
		t.Fatalf("ResolveTrack: %v", err)
	}
	if track.Language != "en" || track.Kind != TrackASR {
		t.Errorf("got %+v, want exact match on preferred language", track)
	}
}

func TestResolveTrackAudioLanguageFallback(t *testing.T) {
	c := fakeDataAPI(t, videosItem("", "en"), twoTracks)
	track, err := c.ResolveTrack(context.Background(), "vid01")
	if err != nil {
		t.Fatalf("ResolveTrack: %v", err)
	}
	if track.Language != "en" {
		t.Errorf("got %+v, want defaultAudioLanguage hint honored", track)
	}
}

func TestResolveTrackFirstTrackFallback(t *testing.T) {
	t.Run("no language hint", func(t *testing.T) {
		c := fakeDataAPI(t, videosItem("", ""), twoTracks)
		track, err := c.ResolveTrack(context.Background(), "vid01")
		if err != nil {
			t.Fatalf("ResolveTrack: %v", err)
		}
		if track.Language != "ru" || track.Kind != TrackStandard {
			t.Errorf("got %+v, want first listed track", track)
		}
	})

	t.Run("hint matches nothing", func(t *testing.T) {
		c := fakeDataAPI(t, videosItem("ja", ""), twoTracks)
		track, err := c.ResolveTrack(context.Background(), "vid01")
		if err != nil {
			t.Fatalf("ResolveTrack: %v", err)
		}
		if track.Language != "ru" {
			t.Errorf("got %+v, want first listed track", track)
		}
	})
}

func TestResolveTrackTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{HTTPClient: srv.Client(), APIKey: "k", DataAPIBase: srv.URL})
	_, err := c.ResolveTrack(context.Background(), "vid01")
	if err == nil || !strings.Contains(err.Error(), "HTTP 403") {
		t.Fatalf("got %v, want HTTP 403 surfaced", err)
	}
}
