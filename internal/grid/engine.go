package grid

import (
	"context"
	"fmt"

	"markbook/internal/shared"
)

// Engine is the mark-entry grid core: the local cell cache, the derived-view
// cache, and the editing overlay for one open mark set.
//
// The engine assumes a single cooperative caller (a UI event loop); it is
// not safe for concurrent use. The cache is a read-through mirror of the
// backend: it is only ever mutated by applying instructions the backend has
// already acknowledged.
type Engine struct {
	backend   Backend
	classID   string
	markSetID string

	students    []shared.Student
	assessments []shared.Assessment
	cells       [][]*float64

	stats   []shared.AssessmentStats
	summary []shared.StudentSummary

	overlay OverlayState
}

// New creates an engine bound to one mark set. Call Load before anything
// else.
func New(backend Backend, classID, markSetID string) *Engine {
	return &Engine{
		backend:   backend,
		classID:   classID,
		markSetID: markSetID,
		overlay:   OverlayState{Phase: OverlayIdle},
	}
}

// Load opens the mark set and fetches the full cell matrix, then the
// derived views. The initial derived-view fetch is best-effort like every
// later refresh.
func (e *Engine) Load(ctx context.Context) error {
	open, err := e.backend.Open(ctx, e.classID, e.markSetID)
	if err != nil {
		return fmt.Errorf("open mark set: %w", err)
	}

	cells, err := e.backend.Get(ctx, e.classID, e.markSetID, 0, int(open.RowCount), 0, int(open.ColCount))
	if err != nil {
		return fmt.Errorf("fetch cells: %w", err)
	}
	if len(cells) != int(open.RowCount) {
		return fmt.Errorf("backend returned %d rows, want %d", len(cells), open.RowCount)
	}
	for r, row := range cells {
		if len(row) != int(open.ColCount) {
			return fmt.Errorf("backend returned %d columns in row %d, want %d", len(row), r, open.ColCount)
		}
	}

	e.students = open.Students
	e.assessments = open.Assessments
	e.cells = cells
	e.overlay = OverlayState{Phase: OverlayIdle}

	e.refreshDerived(ctx)
	return nil
}

// ============================================================================
// Accessors
// ============================================================================

// Students returns the roster axis.
func (e *Engine) Students() []shared.Student { return e.students }

// Assessments returns the assessment axis.
func (e *Engine) Assessments() []shared.Assessment { return e.assessments }

// RowCount returns the number of grid rows.
func (e *Engine) RowCount() int { return len(e.students) }

// ColCount returns the number of score columns.
func (e *Engine) ColCount() int { return len(e.assessments) }

// CellValue returns the cached value of one cell; nil is No Mark.
func (e *Engine) CellValue(row, col int) (*float64, error) {
	if !cellInBounds(CellRef{Row: row, Col: col}, e.RowCount(), e.ColCount()) {
		return nil, fmt.Errorf("cell (%d, %d) is outside the grid", row, col)
	}
	return e.cells[row][col], nil
}

// Stats returns the cached per-assessment statistics (possibly stale if the
// last refresh failed).
func (e *Engine) Stats() []shared.AssessmentStats { return e.stats }

// Summary returns the cached per-student final marks (possibly stale if the
// last refresh failed).
func (e *Engine) Summary() []shared.StudentSummary { return e.summary }
