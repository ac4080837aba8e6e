// ============================================================================
// internal/shared/models.go
// Shared data models and structs for MongoDB documents
// ============================================================================

package shared

import (
	"fmt"
	"time"
)

// ============================================================================
// Class & Mark Set Models
// ============================================================================

// Class represents a class (homeroom/section) owning students and mark sets
type Class struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Term      string    `bson:"term" json:"term"` // e.g., "Fall 2025"
	TeacherID string    `bson:"teacher_id,omitempty" json:"teacher_id,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// MarkSet represents one gradebook grid within a class (e.g., "Term 1")
type MarkSet struct {
	ID        string    `bson:"_id" json:"id"`
	ClassID   string    `bson:"class_id" json:"class_id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ============================================================================
// Roster Models
// ============================================================================

// Student represents one roster entry; row identity in the grid.
// Rows are ordered by SortOrder. The grid never mutates students.
type Student struct {
	ID          string    `bson:"_id" json:"id"`
	ClassID     string    `bson:"class_id" json:"class_id"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	SortOrder   int32     `bson:"sort_order" json:"sort_order"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Assessment represents one scored column in a mark set.
// Columns are ordered by Idx. The grid never mutates assessments.
type Assessment struct {
	ID           string    `bson:"_id" json:"id"`
	MarkSetID    string    `bson:"mark_set_id" json:"mark_set_id"`
	Idx          int32     `bson:"idx" json:"idx"`
	Date         time.Time `bson:"date" json:"date"`
	CategoryName string    `bson:"category_name" json:"category_name"` // e.g., "Quiz", "Lab"
	Title        string    `bson:"title" json:"title"`
	Weight       float64   `bson:"weight" json:"weight"`
	OutOf        float64   `bson:"out_of" json:"out_of"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// ============================================================================
// Score Models
// ============================================================================

// Score represents one cell of the grid as stored.
// Value nil means No Mark; 0 means an explicit zero; values are never
// negative (enforced at the service boundary).
type Score struct {
	ID           string    `bson:"_id" json:"id"`
	MarkSetID    string    `bson:"mark_set_id" json:"mark_set_id"`
	StudentID    string    `bson:"student_id" json:"student_id"`
	AssessmentID string    `bson:"assessment_id" json:"assessment_id"`
	Value        *float64  `bson:"value" json:"value"`
	ModifiedAt   time.Time `bson:"modified_at" json:"modified_at"`
}

// EditKind discriminates the two single-cell update operations on the wire.
const (
	EditKindSet   = "set"   // value must be non-nil
	EditKindClear = "clear" // value must be nil
)

// ValidEditKind reports whether kind is a recognized edit kind.
func ValidEditKind(kind string) bool {
	return kind == EditKindSet || kind == EditKindClear
}

// ============================================================================
// Edit Instruction Models
// ============================================================================

// Edit states carried by an EditInstruction. Zero is distinct from NoMark at
// the instruction level even though both may display as blank.
const (
	EditStateScored = "scored"
	EditStateZero   = "zero"
	EditStateNoMark = "no_mark"
)

// EditInstruction is the canonical unit of a grid mutation: one cell address
// plus the state/value pair to write. State and Value must agree.
type EditInstruction struct {
	Row   int32    `bson:"row" json:"row"`
	Col   int32    `bson:"col" json:"col"`
	State string   `bson:"state" json:"state"`
	Value *float64 `bson:"value" json:"value"`
}

// Validate checks cell address sanity and the state/value agreement:
// no_mark carries nil, zero carries 0, scored carries a positive number.
func (e EditInstruction) Validate() error {
	if e.Row < 0 || e.Col < 0 {
		return fmt.Errorf("invalid cell address (%d, %d)", e.Row, e.Col)
	}

	switch e.State {
	case EditStateNoMark:
		if e.Value != nil {
			return fmt.Errorf("no_mark instruction must not carry a value")
		}
	case EditStateZero:
		if e.Value == nil || *e.Value != 0 {
			return fmt.Errorf("zero instruction must carry value 0")
		}
	case EditStateScored:
		if e.Value == nil || *e.Value <= 0 {
			return fmt.Errorf("scored instruction must carry a positive value")
		}
	default:
		return fmt.Errorf("unknown edit state %q", e.State)
	}

	return nil
}

// ============================================================================
// Derived Statistics Models (computed by the calc service, never stored)
// ============================================================================

// AssessmentStats holds per-assessment aggregates over committed cells.
type AssessmentStats struct {
	AssessmentID  string   `json:"assessment_id"`
	Idx           int32    `json:"idx"`
	AvgRaw        *float64 `json:"avg_raw"`
	AvgPercent    *float64 `json:"avg_percent"`
	MedianPercent *float64 `json:"median_percent"`
	ScoredCount   int32    `json:"scored_count"`
	ZeroCount     int32    `json:"zero_count"`
	NoMarkCount   int32    `json:"no_mark_count"`
}

// StudentSummary holds the per-student weighted final mark.
// FinalMark is nil when the student has no scored cells.
type StudentSummary struct {
	StudentID string   `json:"student_id"`
	SortOrder int32    `json:"sort_order"`
	FinalMark *float64 `json:"final_mark"`
}
