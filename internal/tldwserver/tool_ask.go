package tldwserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_tldw/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoAsk(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_ask",
		Description: "Answer a question about a YouTube video using only its transcript. Accepts any YouTube URL format or a bare 11-char video ID.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.AskInput) (*mcp.CallToolResult, *engine.AnswerOutput, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}
		if input.Question == "" {
			return nil, nil, errors.New("question is required")
		}
		out, err := engine.Ask(ctx, engine.AskRequest{
			URL:      input.URL,
			Question: input.Question,
			Summary:  input.OriginalSummary,
			History:  input.History,
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}
