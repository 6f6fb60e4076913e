// Package tldwserver wires the video summary engine into MCP tools.
package tldwserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all video tools on the given MCP server:
// video_summarize, video_ask, video_transcript, summary_history.
func RegisterTools(server *mcp.Server) {
	registerVideoSummarize(server)
	registerVideoAsk(server)
	registerVideoTranscript(server)
	registerSummaryHistory(server)
}
