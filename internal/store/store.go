package store

import "time"

// Outcome is the lifecycle state of a monitoring session.
type Outcome string

const (
	// OutcomePolling is the initial state; the session is still running.
	OutcomePolling Outcome = "polling"

	// OutcomeCompleted means a matching transaction was found.
	OutcomeCompleted Outcome = "completed"

	// OutcomeTimeout means the deadline passed without a match.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeCancelled means the session was interrupted from outside.
	OutcomeCancelled Outcome = "cancelled"
)

// Terminal reports whether the outcome ends the session.
func (o Outcome) Terminal() bool {
	return o == OutcomeCompleted || o == OutcomeTimeout || o == OutcomeCancelled
}

// PollRecord is the storage representation of one poll iteration, shaped for
// JSON serialization by the status API.
type PollRecord struct {
	// Iteration is the 1-based iteration number.
	Iteration int `json:"iteration"`

	// CheckedAt is when the iteration started.
	CheckedAt time.Time `json:"checked_at"`

	// ElapsedMs is the session time elapsed when the iteration started.
	ElapsedMs int64 `json:"elapsed_ms"`

	// ResponseTimeMs is the request latency in milliseconds.
	ResponseTimeMs int64 `json:"response_time_ms"`

	// StatusCode is the HTTP status code, zero if no response was received.
	StatusCode int `json:"status_code"`

	// Statuses lists the status of every inspected transaction, in order.
	Statuses []string `json:"statuses"`

	// Matched is true when this iteration found the awaited transaction.
	Matched bool `json:"matched"`

	// Error contains the error message if the iteration failed.
	Error *string `json:"error"`
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	SessionID string       `json:"session_id"`
	URL       string       `json:"url"`
	StartedAt time.Time    `json:"started_at"`
	Deadline  time.Time    `json:"deadline"`
	Outcome   Outcome      `json:"outcome"`
	Records   []PollRecord `json:"records"`
}

// Store defines storage and subscription operations for session history.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Begin resets the store for a new session.
	Begin(sessionID, url string, startedAt, deadline time.Time)

	// Append records an iteration and notifies all subscribers.
	Append(record PollRecord)

	// SetOutcome records the session state.
	SetOutcome(outcome Outcome)

	// Snapshot returns a copy of the session state and all records.
	Snapshot() Snapshot

	// Subscribe returns a channel that receives new records.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan PollRecord

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan PollRecord)
}
