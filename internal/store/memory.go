package store

import (
	"sync"
	"time"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Records are kept in iteration order. Subscribers receive new records via
// buffered channels; if a subscriber's buffer is full, the record is dropped
// for that subscriber.
type MemoryStore struct {
	mu        sync.RWMutex
	sessionID string
	url       string
	startedAt time.Time
	deadline  time.Time
	outcome   Outcome
	records   []PollRecord

	subMu       sync.RWMutex
	subscribers map[chan PollRecord]struct{}
}

// NewMemoryStore creates a new in-memory [Store] in the polling state.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		outcome:     OutcomePolling,
		subscribers: make(map[chan PollRecord]struct{}),
	}
}

// Begin resets the store for a new session, discarding earlier records.
func (m *MemoryStore) Begin(sessionID, url string, startedAt, deadline time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessionID = sessionID
	m.url = url
	m.startedAt = startedAt
	m.deadline = deadline
	m.outcome = OutcomePolling
	m.records = nil
}

// Append stores a [PollRecord] and notifies all subscribers.
func (m *MemoryStore) Append(record PollRecord) {
	m.mu.Lock()
	m.records = append(m.records, record)
	m.mu.Unlock()

	m.notifySubscribers(record)
}

// SetOutcome records the session state. A terminal outcome is never replaced.
func (m *MemoryStore) SetOutcome(outcome Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.outcome.Terminal() {
		return
	}
	m.outcome = outcome
}

// Outcome returns the current session state.
func (m *MemoryStore) Outcome() Outcome {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.outcome
}

// Latest returns the most recent record, or false if none exist.
func (m *MemoryStore) Latest() (PollRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return PollRecord{}, false
	}
	return m.records[len(m.records)-1], true
}

// GetAll returns a copy of all records in iteration order.
func (m *MemoryStore) GetAll() []PollRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]PollRecord, len(m.records))
	copy(records, m.records)
	return records
}

// Snapshot returns a copy of the session state and all records.
func (m *MemoryStore) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]PollRecord, len(m.records))
	copy(records, m.records)

	return Snapshot{
		SessionID: m.sessionID,
		URL:       m.url,
		StartedAt: m.startedAt,
		Deadline:  m.deadline,
		Outcome:   m.outcome,
		Records:   records,
	}
}

// Subscribe creates a new subscription with a buffer of 100 records.
//
// Caller must call [MemoryStore.Unsubscribe] when done.
func (m *MemoryStore) Subscribe() <-chan PollRecord {
	ch := make(chan PollRecord, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan PollRecord) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the record to every subscriber without blocking.
func (m *MemoryStore) notifySubscribers(record PollRecord) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- record:
		default:
			// subscriber is slow, drop the record
		}
	}
}
