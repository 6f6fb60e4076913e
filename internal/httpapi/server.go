// Package httpapi exposes the video summary engine over plain HTTP with
// server-sent events for streaming generations.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// NewMux builds the HTTP API routing table.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /summarize", handleSummarize)
	mux.HandleFunc("POST /ask", handleAsk)
	mux.HandleFunc("GET /transcript", handleTranscript)
	mux.HandleFunc("GET /history", handleHistory)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /metrics", handleMetrics)
	return mux
}

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests for up to 5 seconds.
func Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: summarize streams can outlive any sane value.
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http api listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
