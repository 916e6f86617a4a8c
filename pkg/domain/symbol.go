package domain

import (
	"fmt"
	"strings"
)

// Symbol is an opaque tape token (usually a single character).
type Symbol string

const (
	// DefaultBlank is used when a machine does not declare its own blank.
	DefaultBlank Symbol = "_"

	// Wildcard matches any symbol in a rule key.
	// As a write symbol it means "keep the symbol that was read".
	Wildcard Symbol = "*"
)

// Symbols splits an input string into one Symbol per rune.
// Engines reject invalid UTF-8 before splitting.
func Symbols(input string) []Symbol {
	out := make([]Symbol, 0, len(input))
	for _, r := range input {
		out = append(out, Symbol(string(r)))
	}
	return out
}

// Join concatenates symbols back into a string.
func Join(symbols []Symbol) string {
	var sb strings.Builder
	for _, s := range symbols {
		sb.WriteString(string(s))
	}
	return sb.String()
}

// Move is the head movement applied after a write.
type Move string

const (
	MoveLeft  Move = "L"
	MoveRight Move = "R"
	MoveStay  Move = "S"
)

// ParseMove accepts the short forms (L, R, S) and their long names.
// An empty string is Stay.
func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "s", "stay", "n", "none":
		return MoveStay, nil
	case "l", "left":
		return MoveLeft, nil
	case "r", "right":
		return MoveRight, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
}

// Delta returns the head offset for the move.
func (m Move) Delta() int {
	switch m {
	case MoveLeft:
		return -1
	case MoveRight:
		return 1
	default:
		return 0
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
