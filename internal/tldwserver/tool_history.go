package tldwserver

import (
	"context"

	"github.com/anatolykoptev/go_tldw/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSummaryHistory(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summary_history",
		Description: "List recently generated video summaries from the local history (SQLite), newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input engine.HistoryInput) (*mcp.CallToolResult, *engine.HistoryOutput, error) {
		entries, err := engine.ListHistory(input.Limit)
		if err != nil {
			return nil, nil, err
		}
		return nil, &engine.HistoryOutput{Entries: entries, Total: len(entries)}, nil
	})
}
