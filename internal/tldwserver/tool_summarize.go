package tldwserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_tldw/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoSummarize(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_summarize",
		Description: "Generate a TL;DR summary of a YouTube video from its transcript. Accepts any YouTube URL format or a bare 11-char video ID. Summaries are cached per video; set refresh to regenerate.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, *engine.SummaryOutput, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}
		out, err := engine.Summarize(ctx, input.URL, input.Refresh)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}
