package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Caption track resolution via the YouTube Data API v3. Best-effort: the
// goal is a reasonable default track, not guaranteed correctness, and the
// orchestrator falls back to en/standard when any step here fails.

const defaultDataAPIBase = "https://www.googleapis.com/youtube/v3"

// ErrNoAPIKey reports that the resolver is disabled because no Data API key
// was configured.
var ErrNoAPIKey = errors.New("youtube data API key not configured")

type ytVideosResp struct {
	Items []struct {
		Snippet struct {
			DefaultLanguage      string `json:"defaultLanguage"`
			DefaultAudioLanguage string `json:"defaultAudioLanguage"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytCaptionsResp struct {
	Items []struct {
		Snippet struct {
			Language  string `json:"language"`
			TrackKind string `json:"trackKind"`
		} `json:"snippet"`
	} `json:"items"`
}

// ResolveTrack determines the preferred caption language and track kind for
// videoID:
//
//  1. Read the video snippet's defaultLanguage (falling back to
//     defaultAudioLanguage) as the preferred-language hint.
//  2. List the available caption tracks; fail if there are none.
//  3. Pick the exact language match when the hint found one, otherwise the
//     first listed track.
func (c *Client) ResolveTrack(ctx context.Context, videoID string) (TrackDescriptor, error) {
	if c.apiKey == "" {
		return TrackDescriptor{}, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)
	var videos ytVideosResp
	if err := c.dataAPIGet(ctx, "videos", params, &videos); err != nil {
		return TrackDescriptor{}, err
	}
	if len(videos.Items) == 0 {
		return TrackDescriptor{}, fmt.Errorf("no video found for ID %s", videoID)
	}
	if len(videos.Items) != 1 {
		return TrackDescriptor{}, fmt.Errorf("multiple videos found for ID %s", videoID)
	}

	snippet := videos.Items[0].Snippet
	preferred := snippet.DefaultLanguage
	if preferred == "" {
		preferred = snippet.DefaultAudioLanguage
	}

	params = url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)
	var captions ytCaptionsResp
	if err := c.dataAPIGet(ctx, "captions", params, &captions); err != nil {
		return TrackDescriptor{}, err
	}
	if len(captions.Items) == 0 {
		return TrackDescriptor{}, fmt.Errorf("no caption tracks listed for video %s", videoID)
	}

	selected := captions.Items[0].Snippet
	if preferred != "" {
		for _, item := range captions.Items {
			if item.Snippet.Language == preferred {
				selected = item.Snippet
				break
			}
		}
	}

	return TrackDescriptor{
		Language: selected.Language,
		Kind:     TrackKind(selected.TrackKind),
	}, nil
}

// dataAPIGet performs one read call against the Data API and decodes the
// JSON body into out. A 200 with zero items is not an error here; callers
// distinguish "no results" from transport failures themselves.
func (c *Client) dataAPIGet(ctx context.Context, resource string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	reqURL := c.dataAPIBase + "/" + resource + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("data API %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("data API %s: HTTP %d: %s", resource, resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("data API %s: decode: %w", resource, err)
	}
	return nil
}
