package grid

import (
	"context"

	"markbook/internal/shared"
)

// OpenResult is the response shape of Backend.Open: the grid axes and
// dimensions.
type OpenResult struct {
	Students    []shared.Student    `json:"students"`
	Assessments []shared.Assessment `json:"assessments"`
	RowCount    int32               `json:"row_count"`
	ColCount    int32               `json:"col_count"`
}

// Backend is the typed request/response channel to the authoritative score
// store and the calc collaborator. The engine's cache is only ever mutated
// after one of these calls has acknowledged; the backend is the sole source
// of truth.
//
// Contract invariants the engine relies on: values are never negative,
// editKind matches value nullness ("set" carries a number, "clear" carries
// nil), and Get responses are shaped exactly rowCount x colCount.
type Backend interface {
	Open(ctx context.Context, classID, markSetID string) (*OpenResult, error)
	Get(ctx context.Context, classID, markSetID string, rowStart, rowCount, colStart, colCount int) ([][]*float64, error)
	UpdateCell(ctx context.Context, classID, markSetID string, row, col int, value *float64, editKind string) error
	BulkUpdate(ctx context.Context, classID, markSetID string, edits []shared.EditInstruction) error

	// Derived views, computed by the external calc collaborator.
	AssessmentStats(ctx context.Context, classID, markSetID string) ([]shared.AssessmentStats, error)
	MarkSetSummary(ctx context.Context, classID, markSetID string) ([]shared.StudentSummary, error)
}
