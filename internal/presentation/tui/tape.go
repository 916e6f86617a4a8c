package tui

import (
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/tape"
	"github.com/muesli/termenv"
)

// TapePainter renders tape windows, highlighting the cell under the head.
// A plain painter (Ascii profile) brackets the head cell instead of coloring it.
type TapePainter struct {
	profile termenv.Profile
	blank   domain.Symbol
}

// NewTapePainter creates a painter for the given color profile.
func NewTapePainter(profile termenv.Profile, blank domain.Symbol) *TapePainter {
	return &TapePainter{profile: profile, blank: blank}
}

// Paint renders one window with the head at logical index head.
func (p *TapePainter) Paint(w tape.Window, head int) string {
	var sb strings.Builder
	for i, s := range w.Cells {
		cell := string(s)
		atHead := w.Start+i == head
		switch {
		case atHead && p.profile == termenv.Ascii:
			sb.WriteString("[" + cell + "]")
		case atHead:
			sb.WriteString(termenv.String(" " + cell + " ").Reverse().Bold().String())
		case s == p.blank && p.profile != termenv.Ascii:
			sb.WriteString(termenv.String(" " + cell + " ").Foreground(p.profile.Color("#6b7280")).String())
		default:
			sb.WriteString(" " + cell + " ")
		}
	}
	return sb.String()
}

// Status colors a status word: green for accepted, red for rejected or stuck.
func (p *TapePainter) Status(s domain.Status) string {
	if p.profile == termenv.Ascii {
		return string(s)
	}
	out := termenv.String(string(s))
	switch s {
	case domain.StatusAccepted:
		out = out.Foreground(p.profile.Color("#22c55e")).Bold()
	case domain.StatusRejected, domain.StatusStuck:
		out = out.Foreground(p.profile.Color("#ef4444")).Bold()
	case domain.StatusHalted:
		out = out.Foreground(p.profile.Color("#eab308"))
	}
	return out.String()
}
