// Package tape implements the lazily materialized, bi-infinite tape used by every engine.
//
// Cells that were never written read as the blank symbol. Storage grows on demand in
// both directions: right growth appends, left growth shifts an offset so that negative
// logical indices stay valid.
package tape

import (
	"strconv"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Tape is a bi-infinite sequence of symbols.
// Logical index i lives at cells[i+offset]. A Tape is owned by one engine and is not
// safe for concurrent use.
type Tape struct {
	blank  domain.Symbol
	cells  []domain.Symbol
	offset int
}

// New creates a tape holding input starting at index 0.
func New(blank domain.Symbol, input []domain.Symbol) *Tape {
	if blank == "" {
		blank = domain.DefaultBlank
	}
	cells := make([]domain.Symbol, len(input))
	copy(cells, input)
	return &Tape{blank: blank, cells: cells}
}

// FromCells rebuilds a tape from its checkpointed storage.
func FromCells(blank domain.Symbol, offset int, cells []domain.Symbol) *Tape {
	t := New(blank, cells)
	t.offset = offset
	return t
}

// Blank returns the tape's blank symbol.
func (t *Tape) Blank() domain.Symbol {
	return t.blank
}

// Read returns the symbol at index, or blank if it was never materialized.
func (t *Tape) Read(index int) domain.Symbol {
	i := index + t.offset
	if i < 0 || i >= len(t.cells) {
		return t.blank
	}
	return t.cells[i]
}

// Write stores symbol at index, growing storage as needed.
func (t *Tape) Write(index int, symbol domain.Symbol) {
	i := index + t.offset
	if i < 0 {
		grow := -i
		cells := make([]domain.Symbol, grow+len(t.cells))
		for j := 0; j < grow; j++ {
			cells[j] = t.blank
		}
		copy(cells[grow:], t.cells)
		t.cells = cells
		t.offset += grow
		i = 0
	}
	for i >= len(t.cells) {
		t.cells = append(t.cells, t.blank)
	}
	t.cells[i] = symbol
}

// Bounds returns the materialized logical range [lo, hi).
func (t *Tape) Bounds() (lo, hi int) {
	return -t.offset, len(t.cells) - t.offset
}

// Offset exposes the storage offset for checkpointing.
func (t *Tape) Offset() int {
	return t.offset
}

// Cells returns a copy of the materialized storage.
func (t *Tape) Cells() []domain.Symbol {
	return append([]domain.Symbol(nil), t.cells...)
}

// Clone returns an independent copy.
func (t *Tape) Clone() *Tape {
	return &Tape{blank: t.blank, cells: t.Cells(), offset: t.offset}
}

// Content returns the materialized symbols with leading and trailing blanks trimmed.
func (t *Tape) Content() string {
	start, end := 0, len(t.cells)
	for start < end && t.cells[start] == t.blank {
		start++
	}
	for end > start && t.cells[end-1] == t.blank {
		end--
	}
	return domain.Join(t.cells[start:end])
}

// Equal reports whether two tapes hold the same non-blank content at the same indices.
func (t *Tape) Equal(other *Tape) bool {
	lo, hi := t.Bounds()
	olo, ohi := other.Bounds()
	lo, hi = min(lo, olo), max(hi, ohi)
	for i := lo; i < hi; i++ {
		if t.Read(i) != other.Read(i) {
			return false
		}
	}
	return true
}

// Fingerprint returns a string that is equal for tapes that are Equal.
func (t *Tape) Fingerprint() string {
	start, end := 0, len(t.cells)
	for start < end && t.cells[start] == t.blank {
		start++
	}
	for end > start && t.cells[end-1] == t.blank {
		end--
	}
	if start == end {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(start - t.offset))
	sb.WriteByte(':')
	for _, c := range t.cells[start:end] {
		sb.WriteString(string(c))
		sb.WriteByte(0)
	}
	return sb.String()
}

// Window is a display slice of the tape.
type Window struct {
	// Start is the logical index of Cells[0].
	Start int             `json:"start"`
	Cells []domain.Symbol `json:"cells"`
}

// String renders the window symbols back to back.
func (w Window) String() string {
	return domain.Join(w.Cells)
}

// Window returns width symbols around center for display.
// The window starts width/2 cells left of center, but never left of the materialized
// lower bound unless center itself lies there. Positions outside storage read as blank.
func (t *Tape) Window(center, width int) Window {
	if width <= 0 {
		return Window{Start: center}
	}
	lo, _ := t.Bounds()
	start := center - width/2
	if start < lo {
		start = min(lo, center)
	}
	cells := make([]domain.Symbol, width)
	for i := range cells {
		cells[i] = t.Read(start + i)
	}
	return Window{Start: start, Cells: cells}
}
