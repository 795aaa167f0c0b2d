package entity_test

import (
	"testing"

	"document-ingest-service/internal/entity"
)

func TestJobStatus_ForwardEdges(t *testing.T) {
	allowed := [][2]entity.JobStatus{
		{entity.StatusPending, entity.StatusProcessing},
		{entity.StatusProcessing, entity.StatusCompleted},
		{entity.StatusProcessing, entity.StatusFailed},
	}
	for _, edge := range allowed {
		if !edge[0].CanTransitionTo(edge[1]) {
			t.Fatalf("expected %s -> %s to be allowed", edge[0], edge[1])
		}
	}
}

func TestJobStatus_NeverRegresses(t *testing.T) {
	all := []entity.JobStatus{
		entity.StatusPending, entity.StatusProcessing,
		entity.StatusCompleted, entity.StatusFailed,
	}

	// No status may move back to pending, terminal states go nowhere, and
	// pending cannot skip straight to a terminal state.
	for _, from := range all {
		if from.CanTransitionTo(entity.StatusPending) {
			t.Fatalf("%s -> pending must be rejected", from)
		}
	}
	for _, terminal := range []entity.JobStatus{entity.StatusCompleted, entity.StatusFailed} {
		for _, to := range all {
			if terminal.CanTransitionTo(to) {
				t.Fatalf("terminal %s -> %s must be rejected", terminal, to)
			}
		}
	}
	if entity.StatusPending.CanTransitionTo(entity.StatusCompleted) {
		t.Fatal("pending -> completed must be rejected")
	}
	if entity.StatusPending.CanTransitionTo(entity.StatusFailed) {
		t.Fatal("pending -> failed must be rejected")
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	if entity.StatusPending.Terminal() || entity.StatusProcessing.Terminal() {
		t.Fatal("pending/processing must not be terminal")
	}
	if !entity.StatusCompleted.Terminal() || !entity.StatusFailed.Terminal() {
		t.Fatal("completed/failed must be terminal")
	}
}

func TestJobStatus_Valid(t *testing.T) {
	if entity.JobStatus("done").Valid() {
		t.Fatal("unknown status must not be valid")
	}
	if !entity.StatusProcessing.Valid() {
		t.Fatal("processing must be valid")
	}
}
