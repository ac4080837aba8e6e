package grid

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"markbook/internal/shared"
)

// ============================================================================
// Value Normalization
// ============================================================================
// A raw input becomes an edit instruction under a rule that differs by entry
// path. The asymmetry around zero is deliberate and load-bearing:
//
//   typed commit   blank -> No Mark, 0 -> No Mark, negative -> rejected
//   bulk command   the button names the state; "Set Zero" keeps a real zero
//   fill source    classified from the source cell's current value, so a
//                  bulk-set zero propagates as zero
//   paste token    blank and 0 -> No Mark; anything unparsable is skipped
//
// Do not unify these paths.

// ErrNegativeMark is the validation error for negative typed input.
var ErrNegativeMark = errors.New("Negative marks are not allowed.")

// ErrNotANumber is the validation error for unparsable typed input.
var ErrNotANumber = errors.New("Marks must be a number.")

// ParseTypedValue normalizes a typed single-cell commit. Blank collapses to
// No Mark, and so does a literal zero. Negative or unparsable input is a
// validation error; no instruction is produced and the cell stays as it was.
func ParseTypedValue(text string) (*float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, ErrNotANumber
	}
	if v < 0 {
		return nil, ErrNegativeMark
	}
	if v == 0 {
		return nil, nil
	}
	return &v, nil
}

// EditFromDisplayValue classifies a cell's current display value into an
// instruction for (row, col). This is the fill-source rule: a zero stays an
// explicit zero rather than collapsing to No Mark.
func EditFromDisplayValue(row, col int, value *float64) shared.EditInstruction {
	edit := shared.EditInstruction{Row: int32(row), Col: int32(col)}

	switch {
	case value == nil:
		edit.State = shared.EditStateNoMark
	case *value == 0:
		zero := 0.0
		edit.State = shared.EditStateZero
		edit.Value = &zero
	default:
		v := *value
		edit.State = shared.EditStateScored
		edit.Value = &v
	}

	return edit
}

// PasteInstruction classifies one pasted token into an instruction for
// (row, col). Blank and zero tokens become No Mark. A token that does not
// parse as a non-negative finite number yields ok=false: the cell is left
// unchanged rather than failing the whole paste.
func PasteInstruction(row, col int, token string) (shared.EditInstruction, bool) {
	edit := shared.EditInstruction{Row: int32(row), Col: int32(col)}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		edit.State = shared.EditStateNoMark
		return edit, true
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return shared.EditInstruction{}, false
	}
	if v == 0 {
		edit.State = shared.EditStateNoMark
		return edit, true
	}

	edit.State = shared.EditStateScored
	edit.Value = &v
	return edit, true
}

// FormatCellValue renders a cell value the way the grid displays it: No
// Mark as blank, everything else as a plain decimal.
func FormatCellValue(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
