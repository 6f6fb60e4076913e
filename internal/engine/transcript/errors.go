package transcript

import "fmt"

// NotFoundError is the definitive "no transcript exists for this video"
// outcome. The platform signals it with HTTP 200 and an absent payload, so
// it is detected from response shape rather than status code. Terminal:
// callers must never retry it.
type NotFoundError struct {
	VideoID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("requested transcript does not exist for video: %s", e.VideoID)
}

// ProtocolError is a transport or decode failure against the get_transcript
// endpoint. Ambiguous between "the platform changed its API" and a transient
// glitch, so callers treat it as retryable up to a bound.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ProtocolError) Unwrap() error { return e.Err }
