package grid

import (
	"context"
	"fmt"
	"testing"
	"time"

	"markbook/internal/shared"
)

// fakeBackend is an in-memory authoritative store implementing Backend. It
// applies acknowledged writes to its own matrix so tests can observe
// client/backend divergence and reconciliation.
type fakeBackend struct {
	students    []shared.Student
	assessments []shared.Assessment
	cells       [][]*float64

	getCalls        int
	updateCalls     int
	lastUpdateKind  string
	lastUpdateValue *float64
	bulkCalls       int
	lastBatch       []shared.EditInstruction
	statsCalls      int
	summaryCalls    int

	failUpdate error
	failBulk   error
	failStats  error
}

func newFakeBackend(rows, cols int) *fakeBackend {
	b := &fakeBackend{}
	for r := 0; r < rows; r++ {
		b.students = append(b.students, shared.Student{
			ID:          fmt.Sprintf("student-%03d", r),
			DisplayName: fmt.Sprintf("Student %d", r),
			SortOrder:   int32(r),
			Active:      true,
		})
		b.cells = append(b.cells, make([]*float64, cols))
	}
	for c := 0; c < cols; c++ {
		b.assessments = append(b.assessments, shared.Assessment{
			ID:    fmt.Sprintf("assessment-%03d", c),
			Idx:   int32(c),
			Date:  time.Now(),
			Title: fmt.Sprintf("Assessment %d", c),
			OutOf: 100, Weight: 10,
		})
	}
	return b
}

func (b *fakeBackend) Open(ctx context.Context, classID, markSetID string) (*OpenResult, error) {
	return &OpenResult{
		Students:    b.students,
		Assessments: b.assessments,
		RowCount:    int32(len(b.students)),
		ColCount:    int32(len(b.assessments)),
	}, nil
}

func (b *fakeBackend) Get(ctx context.Context, classID, markSetID string, rowStart, rowCount, colStart, colCount int) ([][]*float64, error) {
	b.getCalls++
	out := make([][]*float64, rowCount)
	for r := 0; r < rowCount; r++ {
		out[r] = make([]*float64, colCount)
		for c := 0; c < colCount; c++ {
			out[r][c] = b.cells[rowStart+r][colStart+c]
		}
	}
	return out, nil
}

func (b *fakeBackend) UpdateCell(ctx context.Context, classID, markSetID string, row, col int, value *float64, editKind string) error {
	b.updateCalls++
	b.lastUpdateKind = editKind
	b.lastUpdateValue = value
	if b.failUpdate != nil {
		return b.failUpdate
	}
	b.cells[row][col] = value
	return nil
}

func (b *fakeBackend) BulkUpdate(ctx context.Context, classID, markSetID string, edits []shared.EditInstruction) error {
	b.bulkCalls++
	b.lastBatch = edits
	if b.failBulk != nil {
		return b.failBulk
	}
	for _, edit := range edits {
		b.cells[edit.Row][edit.Col] = edit.Value
	}
	return nil
}

func (b *fakeBackend) AssessmentStats(ctx context.Context, classID, markSetID string) ([]shared.AssessmentStats, error) {
	b.statsCalls++
	if b.failStats != nil {
		return nil, b.failStats
	}
	stats := make([]shared.AssessmentStats, len(b.assessments))
	for c := range b.assessments {
		stats[c] = shared.AssessmentStats{AssessmentID: b.assessments[c].ID, Idx: int32(c)}
		for r := range b.students {
			switch v := b.cells[r][c]; {
			case v == nil:
				stats[c].NoMarkCount++
			case *v == 0:
				stats[c].ZeroCount++
			default:
				stats[c].ScoredCount++
			}
		}
	}
	return stats, nil
}

func (b *fakeBackend) MarkSetSummary(ctx context.Context, classID, markSetID string) ([]shared.StudentSummary, error) {
	b.summaryCalls++
	if b.failStats != nil {
		return nil, b.failStats
	}
	summary := make([]shared.StudentSummary, len(b.students))
	for r := range b.students {
		summary[r] = shared.StudentSummary{StudentID: b.students[r].ID, SortOrder: int32(r)}
	}
	return summary, nil
}

// newTestEngine returns a loaded engine over a rows x cols fake backend
// with every cell initially No Mark.
func newTestEngine(t *testing.T, rows, cols int) (*Engine, *fakeBackend) {
	t.Helper()

	backend := newFakeBackend(rows, cols)
	engine := New(backend, "class-1", "markset-1")
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return engine, backend
}

func cellEquals(t *testing.T, e *Engine, row, col int, want *float64) {
	t.Helper()

	got, err := e.CellValue(row, col)
	if err != nil {
		t.Fatalf("CellValue(%d, %d): %v", row, col, err)
	}
	switch {
	case want == nil && got != nil:
		t.Errorf("cell (%d, %d) = %v, want No Mark", row, col, *got)
	case want != nil && got == nil:
		t.Errorf("cell (%d, %d) = No Mark, want %v", row, col, *want)
	case want != nil && got != nil && *want != *got:
		t.Errorf("cell (%d, %d) = %v, want %v", row, col, *got, *want)
	}
}

func TestEngineLoad(t *testing.T) {
	engine, backend := newTestEngine(t, 3, 2)

	if engine.RowCount() != 3 || engine.ColCount() != 2 {
		t.Errorf("grid is %dx%d, want 3x2", engine.RowCount(), engine.ColCount())
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 2; c++ {
			cellEquals(t, engine, r, c, nil)
		}
	}

	// Load also primes the derived-view cache
	if backend.statsCalls != 1 || backend.summaryCalls != 1 {
		t.Errorf("derived views fetched %d/%d times after load, want 1/1", backend.statsCalls, backend.summaryCalls)
	}
	if len(engine.Stats()) != 2 {
		t.Errorf("stats cache has %d entries, want 2", len(engine.Stats()))
	}
	if engine.Overlay().Phase != OverlayIdle {
		t.Errorf("overlay should be idle after load")
	}
}

func TestEngineCellValueBounds(t *testing.T) {
	engine, _ := newTestEngine(t, 2, 2)

	if _, err := engine.CellValue(2, 0); err == nil {
		t.Error("expected error for out-of-bounds row")
	}
	if _, err := engine.CellValue(0, -1); err == nil {
		t.Error("expected error for out-of-bounds column")
	}
}
