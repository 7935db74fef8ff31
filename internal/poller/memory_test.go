package poller

import "testing"

func TestMemoryIdempotence(t *testing.T) {
	t.Parallel()
	m := newMemory()

	if !m.ShouldSend("hw1", "msg") {
		t.Fatal("first ShouldSend must be true")
	}
	m.Record("hw1", "msg")
	if m.ShouldSend("hw1", "msg") {
		t.Fatal("second ShouldSend with same message must be false")
	}
	if !m.ShouldSend("hw1", "changed") {
		t.Fatal("ShouldSend with a different message must be true")
	}
}

func TestMemoryErrorSentinel(t *testing.T) {
	t.Parallel()
	m := newMemory()

	m.Record(errorKey, "boom")
	if m.ShouldSend(errorKey, "boom") {
		t.Fatal("recorded error must be suppressed")
	}

	m.ClearError()
	if !m.ShouldSend(errorKey, "boom") {
		t.Fatal("cleared error must be deliverable again")
	}
}

func TestMemoryKeysAreIndependent(t *testing.T) {
	t.Parallel()
	m := newMemory()

	m.Record("hw1", "msg")
	if !m.ShouldSend("hw2", "msg") {
		t.Fatal("keys must not share state")
	}
	m.ClearError()
	if m.ShouldSend("hw1", "msg") {
		t.Fatal("ClearError must not touch homework keys")
	}
}
