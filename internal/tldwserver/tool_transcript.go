package tldwserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_tldw/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Fetch the raw transcript text of a YouTube video. Accepts any YouTube URL format or a bare 11-char video ID. Returns space-joined caption text capped at limit characters.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, *engine.TranscriptOutput, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}
		out, err := engine.Transcript(ctx, input.URL, input.Limit)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}
