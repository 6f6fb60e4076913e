package engine

// --- Tool input types ---

type SummarizeInput struct {
	URL     string `json:"url" jsonschema:"YouTube video URL or bare 11-char video ID"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Bypass the cached summary and regenerate"`
}

type AskInput struct {
	URL             string     `json:"url" jsonschema:"YouTube video URL or bare 11-char video ID"`
	Question        string     `json:"question" jsonschema:"Question to answer from the video transcript"`
	OriginalSummary string     `json:"original_summary,omitempty" jsonschema:"Previously generated summary, included as context for follow-up questions"`
	History         []ChatTurn `json:"history,omitempty" jsonschema:"Prior conversation turns ({role, content}), included as context for follow-up questions"`
}

type TranscriptInput struct {
	URL   string `json:"url" jsonschema:"YouTube video URL or bare 11-char video ID"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max characters of transcript text to return (default: 10000)"`
}

type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max entries to return (default: 20, max: 100)"`
}

// --- Tool output types ---

// TranscriptOutput is the flattened transcript returned by the transcript tool.
type TranscriptOutput struct {
	VideoID  string `json:"video_id"`
	Text     string `json:"text"`
	Segments int    `json:"segments"`
}

// HistoryOutput wraps the recorded summaries list.
type HistoryOutput struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int            `json:"total"`
}
