package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anatolykoptev/go_tldw/internal/engine"
	"github.com/anatolykoptev/go_tldw/internal/engine/transcript"
)

type summarizeRequest struct {
	URL     string `json:"url"`
	Refresh bool   `json:"refresh,omitempty"`
}

type askRequest struct {
	URL             string            `json:"url"`
	Question        string            `json:"question"`
	OriginalSummary string            `json:"original_summary,omitempty"`
	History         []engine.ChatTurn `json:"history,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type streamEvent struct {
	Chunk string `json:"chunk"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response write failed", slog.Any("error", err))
	}
}

// writeError maps engine errors to HTTP statuses: an unrecognizable URL is
// the client's fault (400), a missing transcript is the video's fault
// (404), everything else is an upstream failure (502).
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrInvalidURL) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid YouTube URL format"})
		return
	}
	var notFound *transcript.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "transcript not available for this video"})
		return
	}
	slog.Error("request failed", slog.Any("error", err))
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
}

func handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	if r.URL.Query().Get("stream") == "false" {
		out, err := engine.Summarize(r.Context(), req.URL, req.Refresh)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	streamSSE(w, r, func(emit func(string) error) error {
		return engine.SummarizeStream(r.Context(), req.URL, emit)
	})
}

func handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	// Clients that send the whole conversation may omit question; the last
	// history turn is then the current question.
	if req.Question == "" && len(req.History) > 0 {
		req.Question = req.History[len(req.History)-1].Content
		req.History = req.History[:len(req.History)-1]
	}
	if req.URL == "" || req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url and question are required"})
		return
	}

	ask := engine.AskRequest{
		URL:      req.URL,
		Question: req.Question,
		Summary:  req.OriginalSummary,
		History:  req.History,
	}

	if r.URL.Query().Get("stream") == "false" {
		out, err := engine.Ask(r.Context(), ask)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	streamSSE(w, r, func(emit func(string) error) error {
		return engine.AskStream(r.Context(), ask, emit)
	})
}

// streamSSE runs fn with an emitter that writes chunk events. Errors before
// the first chunk map to a proper HTTP status; errors after that point can
// only be reported in-band, as an SSE error event.
func streamSSE(w http.ResponseWriter, r *http.Request, fn func(emit func(string) error) error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	started := false
	emit := func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		data, err := json.Marshal(streamEvent{Chunk: chunk})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := fn(emit); err != nil {
		if !started {
			writeError(w, err)
			return
		}
		slog.Error("stream aborted", slog.Any("error", err))
		fmt.Fprintf(w, "data: {\"error\": %q}\n\n", err.Error())
		flusher.Flush()
		return
	}
	if !started {
		// Emit an empty stream header so the client still gets [DONE].
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func handleTranscript(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url query parameter is required"})
		return
	}
	videoID := engine.ExtractVideoID(url)
	if videoID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid YouTube URL format"})
		return
	}

	segs, err := engine.FetchTranscript(r.Context(), videoID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, segs)
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	entries, err := engine.ListHistory(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, engine.HistoryOutput{Entries: entries, Total: len(entries)})
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, engine.FormatMetrics())
}
