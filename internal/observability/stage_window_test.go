package observability

import (
	"testing"
	"time"
)

func TestStageWindowSnapshot(t *testing.T) {
	w := NewStageWindow(8)
	for _, ms := range []int{100, 200, 300, 400} {
		w.Observe(StageCompletion, time.Duration(ms)*time.Millisecond)
	}
	w.Observe(StageImage, 12*time.Second)

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(snap.Stages))
	}

	// Sorted alphabetically: completion before image.
	comp := snap.Stages[0]
	if comp.Stage != StageCompletion {
		t.Fatalf("first stage = %q, want %q", comp.Stage, StageCompletion)
	}
	if comp.Samples != 4 {
		t.Fatalf("completion samples = %d, want 4", comp.Samples)
	}
	if comp.LastMS != 400 {
		t.Fatalf("completion last = %v, want 400", comp.LastMS)
	}
	if comp.AvgMS != 250 {
		t.Fatalf("completion avg = %v, want 250", comp.AvgMS)
	}
	if comp.P50MS != 250 {
		t.Fatalf("completion p50 = %v, want 250", comp.P50MS)
	}
}

func TestStageWindowRingOverwrite(t *testing.T) {
	w := NewStageWindow(2)
	w.Observe(StageVision, 100*time.Millisecond)
	w.Observe(StageVision, 200*time.Millisecond)
	w.Observe(StageVision, 300*time.Millisecond)

	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(snap.Stages))
	}
	st := snap.Stages[0]
	if st.Samples != 2 {
		t.Fatalf("samples = %d, want 2 after overwrite", st.Samples)
	}
	if st.LastMS != 300 {
		t.Fatalf("last = %v, want 300", st.LastMS)
	}
}

func TestStageWindowIgnoresEmptyStage(t *testing.T) {
	w := NewStageWindow(4)
	w.Observe("", time.Second)
	if got := len(w.Snapshot().Stages); got != 0 {
		t.Fatalf("stages = %d, want 0", got)
	}
}
