package grid

import (
	"context"
	"strings"

	"markbook/internal/shared"
)

// ============================================================================
// Propagation Operators
// ============================================================================
// Fill-down, fill-right, and paste each build one batch for the edit
// protocol. Fill classifies the source cell's current display value, so an
// explicit zero propagates as zero; paste classifies raw tokens and
// collapses zeros to No Mark.

// FillDown propagates the topmost row's value down every column of the
// rectangle. Requires a rectangle at least two rows tall; anything else is
// a no-op. The source row itself is never rewritten.
func (e *Engine) FillDown(ctx context.Context, r Rect) error {
	if r.Height <= 1 {
		return nil
	}

	sourceRow := r.Y
	if sourceRow < 0 || sourceRow >= e.RowCount() {
		return nil
	}

	var edits []shared.EditInstruction
	for displayCol := r.X; displayCol < r.X+r.Width; displayCol++ {
		if displayCol < 1 || displayCol > e.ColCount() {
			continue
		}
		col := displayCol - 1
		source := e.cells[sourceRow][col]

		for row := sourceRow + 1; row < r.Y+r.Height; row++ {
			if row >= e.RowCount() {
				break
			}
			edits = append(edits, EditFromDisplayValue(row, col, source))
		}
	}

	return e.applyBatch(ctx, edits)
}

// FillRight propagates the leftmost score column's value across every row
// of the rectangle. Requires a rectangle at least two columns wide;
// anything else is a no-op. The source column itself is never rewritten.
func (e *Engine) FillRight(ctx context.Context, r Rect) error {
	if r.Width <= 1 {
		return nil
	}

	// The source is the leftmost column of the range that is a score column
	sourceDisplayCol := r.X
	if sourceDisplayCol < 1 {
		sourceDisplayCol = 1
	}
	if sourceDisplayCol > e.ColCount() {
		return nil
	}
	sourceCol := sourceDisplayCol - 1

	var edits []shared.EditInstruction
	for row := r.Y; row < r.Y+r.Height; row++ {
		if row < 0 || row >= e.RowCount() {
			continue
		}
		source := e.cells[row][sourceCol]

		for displayCol := sourceDisplayCol + 1; displayCol < r.X+r.Width; displayCol++ {
			if displayCol > e.ColCount() {
				break
			}
			edits = append(edits, EditFromDisplayValue(row, displayCol-1, source))
		}
	}

	return e.applyBatch(ctx, edits)
}

// Paste ingests tabular text (tab-separated columns, newline-separated
// rows) anchored at the top-left cell (anchorRow, anchorCol) in grid
// coordinates. Tokens landing outside the grid are dropped; tokens that
// fail classification leave their cell unchanged without aborting the
// paste. The surviving instructions go out as a single batch.
func (e *Engine) Paste(ctx context.Context, anchorRow, anchorCol int, text string) error {
	if anchorRow < 0 || anchorCol < 0 {
		return nil
	}

	var edits []shared.EditInstruction
	for dr, line := range splitPasteRows(text) {
		row := anchorRow + dr
		if row >= e.RowCount() {
			break
		}

		for dc, token := range strings.Split(line, "\t") {
			col := anchorCol + dc
			if col >= e.ColCount() {
				break
			}

			if edit, ok := PasteInstruction(row, col, token); ok {
				edits = append(edits, edit)
			}
		}
	}

	return e.applyBatch(ctx, edits)
}

// splitPasteRows splits pasted text into rows, tolerating CRLF and one
// trailing newline (the usual shape of clipboard data copied out of a
// spreadsheet).
func splitPasteRows(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
