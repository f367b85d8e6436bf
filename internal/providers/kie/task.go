package kie

import (
	"encoding/json"
	"strings"
)

// Task states the provider reports. Anything outside the terminal sets keeps
// the task in flight.
const (
	StateSuccess   = "success"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateError     = "error"
)

// FallbackFailureReason is used when the provider reports failure without a
// message.
const FallbackFailureReason = "video generation failed for an unknown reason"

// TaskSnapshot is a point-in-time view of an asynchronous video task. The
// provider owns the task; this is only what it reported on one poll.
type TaskSnapshot struct {
	ID         string     `json:"id"`
	State      string     `json:"state"`
	ResultJSON string     `json:"resultJson"`
	FailMsg    string     `json:"failMsg"`
	Output     taskOutput `json:"output"`
	VideoURL   string     `json:"videoUrl"`

	// Raw is the undecoded provider response, passed through on the status
	// endpoint.
	Raw json.RawMessage `json:"-"`
}

type taskOutput struct {
	VideoURL string `json:"video_url"`
}

type resultPayload struct {
	ResultURLs []string `json:"resultUrls"`
	VideoURL   string   `json:"video_url"`
}

// Succeeded reports whether the task reached its terminal success state.
func (s *TaskSnapshot) Succeeded() bool {
	state := strings.ToLower(strings.TrimSpace(s.State))
	return state == StateSuccess || state == StateCompleted
}

// Failed reports whether the task reached its terminal failure state.
func (s *TaskSnapshot) Failed() bool {
	state := strings.ToLower(strings.TrimSpace(s.State))
	return state == StateFailed || state == StateError
}

// Terminal reports whether polling can stop.
func (s *TaskSnapshot) Terminal() bool {
	return s.Succeeded() || s.Failed()
}

// ResultURL extracts the generated video URL. The probe order follows what
// the provider has been observed to return: the embedded resultJson's
// resultUrls array first, then its video_url key, then the top-level output
// object, then the flat videoUrl field. First non-empty match wins.
func (s *TaskSnapshot) ResultURL() string {
	if s.ResultJSON != "" {
		var payload resultPayload
		if err := json.Unmarshal([]byte(s.ResultJSON), &payload); err == nil {
			if len(payload.ResultURLs) > 0 && strings.TrimSpace(payload.ResultURLs[0]) != "" {
				return strings.TrimSpace(payload.ResultURLs[0])
			}
			if strings.TrimSpace(payload.VideoURL) != "" {
				return strings.TrimSpace(payload.VideoURL)
			}
		}
	}
	return firstNonEmpty(s.Output.VideoURL, s.VideoURL)
}

// FailureReason returns the provider's failure message, or a generic
// placeholder so a failed task always carries a non-empty reason.
func (s *TaskSnapshot) FailureReason() string {
	if msg := strings.TrimSpace(s.FailMsg); msg != "" {
		return msg
	}
	return FallbackFailureReason
}
