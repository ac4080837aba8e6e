package grid

import (
	"context"
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"markbook/internal/shared"
)

// ============================================================================
// Edit Protocol
// ============================================================================
// Two call shapes, one discipline: nothing mutates the local cache until
// the backend has acknowledged the write. Single-cell failures trigger a
// best-effort one-cell re-fetch so the cache never silently diverges;
// batch failures apply nothing locally, so there is nothing to reconcile.

// CommitTyped validates and commits a typed value into one cell. Validation
// errors never reach the backend and leave the cell unchanged.
func (e *Engine) CommitTyped(ctx context.Context, row, col int, text string) error {
	if !cellInBounds(CellRef{Row: row, Col: col}, e.RowCount(), e.ColCount()) {
		return fmt.Errorf("cell (%d, %d) is outside the grid", row, col)
	}

	value, err := ParseTypedValue(text)
	if err != nil {
		return err
	}

	editKind := shared.EditKindSet
	if value == nil {
		editKind = shared.EditKindClear
	}

	if err := e.backend.UpdateCell(ctx, e.classID, e.markSetID, row, col, value, editKind); err != nil {
		e.reconcileCell(ctx, row, col)
		return fmt.Errorf("update cell (%d, %d): %w", row, col, err)
	}

	e.cells[row][col] = value
	e.refreshDerived(ctx)
	return nil
}

// ============================================================================
// Bulk Commands
// ============================================================================
// The command buttons name the state directly; in particular Set Zero
// writes an explicit zero, which the typed path would have collapsed to No
// Mark.

// SetNoMark clears every cell in the selection.
func (e *Engine) SetNoMark(ctx context.Context, sel Selection) error {
	return e.setSelection(ctx, sel, shared.EditStateNoMark, nil)
}

// SetZero writes an explicit zero into every cell in the selection.
func (e *Engine) SetZero(ctx context.Context, sel Selection) error {
	zero := 0.0
	return e.setSelection(ctx, sel, shared.EditStateZero, &zero)
}

// SetScored writes a positive score into every cell in the selection.
func (e *Engine) SetScored(ctx context.Context, sel Selection, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrNotANumber
	}
	if value < 0 {
		return ErrNegativeMark
	}
	if value == 0 {
		return fmt.Errorf("scored value must be positive; use Set Zero for zeros")
	}
	return e.setSelection(ctx, sel, shared.EditStateScored, &value)
}

func (e *Engine) setSelection(ctx context.Context, sel Selection, state string, value *float64) error {
	targets := Targets(sel, e.RowCount(), e.ColCount())

	edits := make([]shared.EditInstruction, 0, len(targets))
	for _, t := range targets {
		edit := shared.EditInstruction{Row: int32(t.Row), Col: int32(t.Col), State: state}
		if value != nil {
			v := *value
			edit.Value = &v
		}
		edits = append(edits, edit)
	}

	return e.applyBatch(ctx, edits)
}

// applyBatch submits a batch and, only after acknowledgement, applies every
// instruction to the cache and refreshes derived views. An empty batch is a
// no-op. On failure nothing was applied locally, so the cache is untouched.
func (e *Engine) applyBatch(ctx context.Context, edits []shared.EditInstruction) error {
	if len(edits) == 0 {
		return nil
	}

	if err := e.backend.BulkUpdate(ctx, e.classID, e.markSetID, edits); err != nil {
		return fmt.Errorf("bulk update of %d edits: %w", len(edits), err)
	}

	for _, edit := range edits {
		e.cells[edit.Row][edit.Col] = edit.Value
	}

	e.refreshDerived(ctx)
	return nil
}

// reconcileCell re-fetches one cell after a failed single-cell write. Best
// effort: if the re-fetch itself fails the previous cached value stands and
// the failure is logged, not surfaced.
func (e *Engine) reconcileCell(ctx context.Context, row, col int) {
	cells, err := e.backend.Get(ctx, e.classID, e.markSetID, row, 1, col, 1)
	if err != nil {
		log.Printf("WARN: failed to reconcile cell (%d, %d): %v", row, col, err)
		return
	}
	if len(cells) != 1 || len(cells[0]) != 1 {
		log.Printf("WARN: reconcile fetch for cell (%d, %d) returned malformed shape", row, col)
		return
	}
	e.cells[row][col] = cells[0][0]
}

// refreshDerived replaces the derived-view cache wholesale from the calc
// collaborator. Both reads are issued concurrently. Failure is non-fatal:
// the previous derived values stay on display.
func (e *Engine) refreshDerived(ctx context.Context) {
	var (
		stats   []shared.AssessmentStats
		summary []shared.StudentSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = e.backend.AssessmentStats(gctx, e.classID, e.markSetID)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = e.backend.MarkSetSummary(gctx, e.classID, e.markSetID)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Printf("WARN: derived view refresh failed, keeping previous values: %v", err)
		return
	}

	e.stats = stats
	e.summary = summary
}
