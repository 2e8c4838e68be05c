// Package opstate tracks the outcome of user-initiated operations as an
// explicit Idle/Loading/Success/Error state value.
//
// Terminal states (Success, Error) are consumed exactly once: the first
// Consume returns them and resets the tracker to Idle, so the host UI can
// convert the outcome into navigation or a message without getting stuck
// re-observing it.
package opstate

import "sync"

// Status is the phase of an operation.
type Status int

const (
	// Idle means no operation outcome is pending.
	Idle Status = iota
	// Loading means an operation is in flight.
	Loading
	// Success means the last operation completed.
	Success
	// Error means the last operation failed; the error is attached.
	Error
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Tracker holds the state of one operation kind. Safe for concurrent use.
// The zero value is Idle.
type Tracker struct {
	mu     sync.Mutex
	status Status
	err    error
}

// Begin marks the operation in flight.
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Loading
	t.err = nil
}

// Succeed marks the operation completed.
func (t *Tracker) Succeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Success
	t.err = nil
}

// Fail marks the operation failed with err.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Error
	t.err = err
}

// Peek returns the current status and error without consuming them.
func (t *Tracker) Peek() (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.err
}

// Consume returns the current status and error; if the status is
// terminal it resets the tracker to Idle so the outcome is observed
// exactly once.
func (t *Tracker) Consume() (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	status, err := t.status, t.err
	if status == Success || status == Error {
		t.status = Idle
		t.err = nil
	}
	return status, err
}

// Reset forces the tracker back to Idle.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Idle
	t.err = nil
}
