package grid

// ============================================================================
// Selection Targeting
// ============================================================================
// Display-column layout: column 0 is the student label, columns
// 1..len(assessments) are score columns, and column len(assessments)+1 is
// the computed current-mark column. Only score columns are addressable by
// edits; the targeter translates display columns to grid columns (display
// column c maps to grid column c-1).

// Rect is a rectangular selection in display coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CellRef addresses one cell in grid coordinates.
type CellRef struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Selection is the transient 2-D selection: an optional rectangle in
// display coordinates plus the optional single active cell in grid
// coordinates. Never persisted.
type Selection struct {
	Range  *Rect
	Active *CellRef
}

// SelectCell returns a single-cell selection in grid coordinates.
func SelectCell(row, col int) Selection {
	return Selection{Active: &CellRef{Row: row, Col: col}}
}

// SelectRange returns a rectangular selection in display coordinates.
func SelectRange(x, y, width, height int) Selection {
	return Selection{Range: &Rect{X: x, Y: y, Width: width, Height: height}}
}

// Targets maps a selection to the ordered (row-major) list of addressable
// cells within a rowCount x colCount grid. The label column and the
// current-mark column are never returned. A rectangle that covers no
// addressable cell falls back to the active cell when one is set and valid;
// otherwise the result is empty and callers treat the operation as a no-op.
func Targets(sel Selection, rowCount, colCount int) []CellRef {
	var targets []CellRef

	if sel.Range != nil {
		for row := sel.Range.Y; row < sel.Range.Y+sel.Range.Height; row++ {
			if row < 0 || row >= rowCount {
				continue
			}
			for displayCol := sel.Range.X; displayCol < sel.Range.X+sel.Range.Width; displayCol++ {
				if displayCol < 1 || displayCol > colCount {
					continue
				}
				targets = append(targets, CellRef{Row: row, Col: displayCol - 1})
			}
		}
		if len(targets) > 0 {
			return targets
		}
	}

	if sel.Active != nil && cellInBounds(*sel.Active, rowCount, colCount) {
		return []CellRef{*sel.Active}
	}

	return nil
}

func cellInBounds(cell CellRef, rowCount, colCount int) bool {
	return cell.Row >= 0 && cell.Row < rowCount && cell.Col >= 0 && cell.Col < colCount
}
