package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SummarizeRequests      atomic.Int64
	QuestionRequests       atomic.Int64
	TranscriptRequests     atomic.Int64
	TranscriptNotFound     atomic.Int64
	TranscriptFetchErrors  atomic.Int64
	LLMCalls               atomic.Int64
	LLMErrors              atomic.Int64
	HistoryWrites          atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"summarize_requests":      metrics.SummarizeRequests.Load(),
		"question_requests":       metrics.QuestionRequests.Load(),
		"transcript_requests":     metrics.TranscriptRequests.Load(),
		"transcript_not_found":    metrics.TranscriptNotFound.Load(),
		"transcript_fetch_errors": metrics.TranscriptFetchErrors.Load(),
		"llm_calls":               metrics.LLMCalls.Load(),
		"llm_errors":              metrics.LLMErrors.Load(),
		"history_writes":          metrics.HistoryWrites.Load(),
		"cache_hits":              hits,
		"cache_misses":            misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"summarize_requests", "question_requests",
		"transcript_requests", "transcript_not_found", "transcript_fetch_errors",
		"llm_calls", "llm_errors",
		"history_writes",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrSummarizeRequests()     { metrics.SummarizeRequests.Add(1) }
func IncrQuestionRequests()      { metrics.QuestionRequests.Add(1) }
func IncrTranscriptRequests()    { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptNotFound()    { metrics.TranscriptNotFound.Add(1) }
func IncrTranscriptFetchErrors() { metrics.TranscriptFetchErrors.Add(1) }
func IncrLLMCalls()              { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()             { metrics.LLMErrors.Add(1) }
func IncrHistoryWrites()         { metrics.HistoryWrites.Add(1) }
