package grid

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"markbook/internal/shared"
)

func TestFillDown(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates the top row without rewriting it", func(t *testing.T) {
		engine, backend := newTestEngine(t, 3, 2)
		if err := engine.CommitTyped(ctx, 0, 0, "90"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		// Rows 0-2 of display column 1 (assessment 0)
		if err := engine.FillDown(ctx, Rect{X: 1, Y: 0, Width: 1, Height: 3}); err != nil {
			t.Fatalf("FillDown failed: %v", err)
		}

		want := []shared.EditInstruction{
			{Row: 1, Col: 0, State: shared.EditStateScored, Value: fptr(90)},
			{Row: 2, Col: 0, State: shared.EditStateScored, Value: fptr(90)},
		}
		if diff := cmp.Diff(want, backend.lastBatch); diff != "" {
			t.Errorf("batch mismatch (-want +got):\n%s", diff)
		}

		cellEquals(t, engine, 0, 0, fptr(90))
		cellEquals(t, engine, 1, 0, fptr(90))
		cellEquals(t, engine, 2, 0, fptr(90))
		cellEquals(t, engine, 0, 1, nil)
	})

	t.Run("an explicit zero propagates as zero", func(t *testing.T) {
		engine, backend := newTestEngine(t, 3, 2)
		if err := engine.SetZero(ctx, SelectCell(0, 0)); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		if err := engine.FillDown(ctx, Rect{X: 1, Y: 0, Width: 1, Height: 3}); err != nil {
			t.Fatalf("FillDown failed: %v", err)
		}

		for _, edit := range backend.lastBatch {
			if edit.State != shared.EditStateZero {
				t.Errorf("edit state = %q, want zero", edit.State)
			}
		}
		cellEquals(t, engine, 1, 0, fptr(0))
		cellEquals(t, engine, 2, 0, fptr(0))
	})

	t.Run("a No Mark source propagates as No Mark", func(t *testing.T) {
		engine, backend := newTestEngine(t, 3, 2)
		if err := engine.CommitTyped(ctx, 1, 0, "55"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		// Source row 0 is No Mark; row 1's 55 gets overwritten
		if err := engine.FillDown(ctx, Rect{X: 1, Y: 0, Width: 1, Height: 2}); err != nil {
			t.Fatalf("FillDown failed: %v", err)
		}

		want := []shared.EditInstruction{
			{Row: 1, Col: 0, State: shared.EditStateNoMark},
		}
		if diff := cmp.Diff(want, backend.lastBatch); diff != "" {
			t.Errorf("batch mismatch (-want +got):\n%s", diff)
		}
		cellEquals(t, engine, 1, 0, nil)
	})

	t.Run("single-row rectangle is a no-op", func(t *testing.T) {
		engine, backend := newTestEngine(t, 3, 2)
		bulks := backend.bulkCalls

		if err := engine.FillDown(ctx, Rect{X: 1, Y: 0, Width: 2, Height: 1}); err != nil {
			t.Fatalf("FillDown failed: %v", err)
		}
		if backend.bulkCalls != bulks {
			t.Error("no-op fill issued a backend call")
		}
	})

	t.Run("label column is excluded", func(t *testing.T) {
		engine, backend := newTestEngine(t, 3, 2)
		if err := engine.CommitTyped(ctx, 0, 0, "40"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		// Rectangle spans the label column plus assessment 0
		if err := engine.FillDown(ctx, Rect{X: 0, Y: 0, Width: 2, Height: 3}); err != nil {
			t.Fatalf("FillDown failed: %v", err)
		}
		for _, edit := range backend.lastBatch {
			if edit.Col != 0 {
				t.Errorf("unexpected target column %d", edit.Col)
			}
		}
		if len(backend.lastBatch) != 2 {
			t.Errorf("batch has %d edits, want 2", len(backend.lastBatch))
		}
	})
}

func TestFillRight(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates the leftmost score column", func(t *testing.T) {
		engine, backend := newTestEngine(t, 2, 3)
		if err := engine.CommitTyped(ctx, 0, 0, "75"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		// Row 0, display columns 1-3 (assessments 0-2)
		if err := engine.FillRight(ctx, Rect{X: 1, Y: 0, Width: 3, Height: 1}); err != nil {
			t.Fatalf("FillRight failed: %v", err)
		}

		want := []shared.EditInstruction{
			{Row: 0, Col: 1, State: shared.EditStateScored, Value: fptr(75)},
			{Row: 0, Col: 2, State: shared.EditStateScored, Value: fptr(75)},
		}
		if diff := cmp.Diff(want, backend.lastBatch); diff != "" {
			t.Errorf("batch mismatch (-want +got):\n%s", diff)
		}

		cellEquals(t, engine, 0, 0, fptr(75))
		cellEquals(t, engine, 0, 1, fptr(75))
		cellEquals(t, engine, 0, 2, fptr(75))
		cellEquals(t, engine, 1, 0, nil)
	})

	t.Run("single-column rectangle is a no-op", func(t *testing.T) {
		engine, backend := newTestEngine(t, 2, 3)

		if err := engine.FillRight(ctx, Rect{X: 1, Y: 0, Width: 1, Height: 2}); err != nil {
			t.Fatalf("FillRight failed: %v", err)
		}
		if backend.bulkCalls != 0 {
			t.Error("no-op fill issued a backend call")
		}
	})

	t.Run("rectangle starting at the label column uses the first score column as source", func(t *testing.T) {
		engine, backend := newTestEngine(t, 2, 3)
		if err := engine.CommitTyped(ctx, 1, 0, "33"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		if err := engine.FillRight(ctx, Rect{X: 0, Y: 1, Width: 4, Height: 1}); err != nil {
			t.Fatalf("FillRight failed: %v", err)
		}

		want := []shared.EditInstruction{
			{Row: 1, Col: 1, State: shared.EditStateScored, Value: fptr(33)},
			{Row: 1, Col: 2, State: shared.EditStateScored, Value: fptr(33)},
		}
		if diff := cmp.Diff(want, backend.lastBatch); diff != "" {
			t.Errorf("batch mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestPaste(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies tokens and skips invalid ones", func(t *testing.T) {
		engine, backend := newTestEngine(t, 3, 2)
		if err := engine.CommitTyped(ctx, 0, 1, "42"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		// 2x2 block: "100" | "abc" / "" | "0", anchored at (0, 0)
		if err := engine.Paste(ctx, 0, 0, "100\tabc\n\t0"); err != nil {
			t.Fatalf("Paste failed: %v", err)
		}

		want := []shared.EditInstruction{
			{Row: 0, Col: 0, State: shared.EditStateScored, Value: fptr(100)},
			{Row: 1, Col: 0, State: shared.EditStateNoMark},
			{Row: 1, Col: 1, State: shared.EditStateNoMark},
		}
		if diff := cmp.Diff(want, backend.lastBatch); diff != "" {
			t.Errorf("batch mismatch (-want +got):\n%s", diff)
		}

		cellEquals(t, engine, 0, 0, fptr(100))
		cellEquals(t, engine, 0, 1, fptr(42)) // invalid token left the cell alone
		cellEquals(t, engine, 1, 0, nil)
		cellEquals(t, engine, 1, 1, nil)
	})

	t.Run("tokens outside the grid are dropped", func(t *testing.T) {
		engine, backend := newTestEngine(t, 2, 2)

		if err := engine.Paste(ctx, 1, 1, "10\t20\t30\n40\n50"); err != nil {
			t.Fatalf("Paste failed: %v", err)
		}

		want := []shared.EditInstruction{
			{Row: 1, Col: 1, State: shared.EditStateScored, Value: fptr(10)},
		}
		if diff := cmp.Diff(want, backend.lastBatch); diff != "" {
			t.Errorf("batch mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("all-invalid paste is a no-op", func(t *testing.T) {
		engine, backend := newTestEngine(t, 2, 2)

		if err := engine.Paste(ctx, 0, 0, "abc\t-5"); err != nil {
			t.Fatalf("Paste failed: %v", err)
		}
		if backend.bulkCalls != 0 {
			t.Errorf("backend received %d bulk calls, want 0", backend.bulkCalls)
		}
	})

	t.Run("tolerates CRLF and a trailing newline", func(t *testing.T) {
		engine, backend := newTestEngine(t, 3, 1)

		if err := engine.Paste(ctx, 0, 0, "10\r\n20\r\n"); err != nil {
			t.Fatalf("Paste failed: %v", err)
		}

		want := []shared.EditInstruction{
			{Row: 0, Col: 0, State: shared.EditStateScored, Value: fptr(10)},
			{Row: 1, Col: 0, State: shared.EditStateScored, Value: fptr(20)},
		}
		if diff := cmp.Diff(want, backend.lastBatch); diff != "" {
			t.Errorf("batch mismatch (-want +got):\n%s", diff)
		}
	})
}
