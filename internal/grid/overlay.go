package grid

import (
	"context"
	"fmt"
)

// ============================================================================
// Editing Overlay State Machine
// ============================================================================
// At most one uncommitted typed edit exists at a time, bound to exactly one
// cell. Activating any cell discards whatever overlay was live before; there
// is no merging of uncommitted edits.
//
//   Idle -> Editing          ActivateCell
//   Editing -> Editing       SetOverlayText (local only, no network)
//   Editing -> Idle          CommitOverlay success / CancelOverlay
//   Editing -> Editing       CommitOverlay failure (text kept for correction)

// OverlayPhase enumerates the overlay states.
type OverlayPhase int

const (
	OverlayIdle OverlayPhase = iota
	OverlayEditing
	OverlayCommitting
)

// OverlayState is the transient in-progress edit bound to a single cell.
type OverlayState struct {
	Phase OverlayPhase
	Row   int
	Col   int
	Text  string
}

// Overlay returns the current overlay state.
func (e *Engine) Overlay() OverlayState { return e.overlay }

// ActivateCell begins editing a cell, seeding the overlay text with the
// cell's current display value. Any previous overlay is discarded.
func (e *Engine) ActivateCell(row, col int) error {
	if !cellInBounds(CellRef{Row: row, Col: col}, e.RowCount(), e.ColCount()) {
		return fmt.Errorf("cell (%d, %d) is outside the grid", row, col)
	}

	e.overlay = OverlayState{
		Phase: OverlayEditing,
		Row:   row,
		Col:   col,
		Text:  FormatCellValue(e.cells[row][col]),
	}
	return nil
}

// SetOverlayText replaces the overlay's uncommitted text. Keystrokes only
// touch this local field; nothing goes over the wire until commit.
func (e *Engine) SetOverlayText(text string) {
	if e.overlay.Phase != OverlayEditing {
		return
	}
	e.overlay.Text = text
}

// CommitOverlay commits the overlay text through the single-cell edit
// protocol. On success the overlay returns to Idle. On any error -
// validation or request failure - the overlay stays in Editing with its
// text intact so the user can correct and retry.
func (e *Engine) CommitOverlay(ctx context.Context) error {
	if e.overlay.Phase != OverlayEditing {
		return fmt.Errorf("no cell is being edited")
	}

	e.overlay.Phase = OverlayCommitting
	if err := e.CommitTyped(ctx, e.overlay.Row, e.overlay.Col, e.overlay.Text); err != nil {
		e.overlay.Phase = OverlayEditing
		return err
	}

	e.overlay = OverlayState{Phase: OverlayIdle}
	return nil
}

// CancelOverlay discards the overlay without any network call.
func (e *Engine) CancelOverlay() {
	e.overlay = OverlayState{Phase: OverlayIdle}
}
