package opstate

import (
	"errors"
	"testing"
)

func TestTrackerLifecycle(t *testing.T) {
	var tr Tracker

	if status, _ := tr.Peek(); status != Idle {
		t.Fatalf("zero value status = %v, want Idle", status)
	}

	tr.Begin()
	if status, _ := tr.Peek(); status != Loading {
		t.Fatalf("status after Begin = %v, want Loading", status)
	}

	tr.Succeed()
	if status, _ := tr.Consume(); status != Success {
		t.Fatalf("first Consume = %v, want Success", status)
	}
	if status, _ := tr.Consume(); status != Idle {
		t.Fatalf("second Consume = %v, want Idle", status)
	}
}

func TestTrackerError(t *testing.T) {
	var tr Tracker
	failure := errors.New("boom")

	tr.Begin()
	tr.Fail(failure)

	// Peek must not consume the terminal state.
	status, err := tr.Peek()
	if status != Error || !errors.Is(err, failure) {
		t.Fatalf("Peek = (%v, %v), want (Error, boom)", status, err)
	}

	status, err = tr.Consume()
	if status != Error || !errors.Is(err, failure) {
		t.Fatalf("Consume = (%v, %v), want (Error, boom)", status, err)
	}
	status, err = tr.Consume()
	if status != Idle || err != nil {
		t.Fatalf("Consume after reset = (%v, %v), want (Idle, nil)", status, err)
	}
}

func TestTrackerReset(t *testing.T) {
	var tr Tracker
	tr.Begin()
	tr.Reset()
	if status, err := tr.Peek(); status != Idle || err != nil {
		t.Fatalf("after Reset = (%v, %v), want (Idle, nil)", status, err)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Idle: "idle", Loading: "loading", Success: "success", Error: "error", Status(42): "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}
