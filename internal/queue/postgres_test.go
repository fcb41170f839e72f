package queue

import (
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	event, err := decodeEvent([]byte(`{"job_id":"abc123","prompt":"a cat astronaut"}`))
	if err != nil {
		t.Fatalf("decodeEvent error: %v", err)
	}
	if event.JobID != "abc123" {
		t.Fatalf("unexpected job id: %s", event.JobID)
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := decodeEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected error for an undecodable payload")
	}
}
