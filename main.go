// go_tldw — YouTube video TL;DR MCP server.
//
// Fetches video transcripts through the Innertube get_transcript endpoint,
// summarizes them with an LLM, and exposes the pipeline as MCP tools
// (video_summarize, video_ask, video_transcript, summary_history) plus a
// plain HTTP API with SSE streaming.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_tldw/internal/engine"
	"github.com/anatolykoptev/go_tldw/internal/engine/transcript"
	"github.com/anatolykoptev/go_tldw/internal/httpapi"
	"github.com/anatolykoptev/go_tldw/internal/tldwserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version  = "dev"
	mcpPort  = env.Str("MCP_PORT", "8892")
	httpAddr = env.Str("HTTP_ADDR", ":8893")
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file", slog.Any("error", err))
	}

	initEngine()

	slog.Info("starting go_tldw",
		slog.String("mcp_port", mcpPort),
		slog.String("http_addr", httpAddr),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tldw",
		Version: version,
	}, nil)

	tldwserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 4))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := httpapi.Serve(ctx, httpAddr); err != nil {
			slog.Error("http api failed", slog.Any("error", err))
		}
	}()

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tldw",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		YouTubeAPIKey:        env.Str("YOUTUBE_API_KEY", ""),
		InnertubeVersion:     env.Str("INNERTUBE_CLIENT_VERSION", transcript.DefaultClientVersion),
		InnertubeRPS:         env.Float("INNERTUBE_RPS", 1),
		LLMProvider:          env.Str("LLM_PROVIDER", "openai"),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 8192),
		MaxTranscriptChars:   env.Int("MAX_TRANSCRIPT_CHARS", 24000),
		TranscriptAttempts:   env.Int("TRANSCRIPT_ATTEMPTS", 3),
		TranscriptRetryDelay: env.Duration("TRANSCRIPT_RETRY_DELAY", 2*time.Second),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HistoryDBPath:        env.Str("HISTORY_DB_PATH", ""),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 6*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
