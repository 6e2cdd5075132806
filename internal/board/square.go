package board

import (
	"fmt"

	"github.com/pkg/errors"
)

// Square identifies a board square by file (1-8, a-h) and rank (1-8).
type Square struct {
	File int `json:"file"`
	Rank int `json:"rank"`
}

func (s Square) Valid() bool {
	return s.File >= 1 && s.File <= 8 && s.Rank >= 1 && s.Rank <= 8
}

// String returns the algebraic name of the square, e.g. "e4".
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.File-1, s.Rank)
}

func (s Square) fileLetter() string {
	return fmt.Sprintf("%c", 'a'+s.File-1)
}

func (s Square) rankDigit() string {
	return fmt.Sprintf("%d", s.Rank)
}

// Less orders squares rank-major (a1, b1, ... h1, a2, ...) for deterministic
// iteration.
func (s Square) Less(o Square) bool {
	if s.Rank != o.Rank {
		return s.Rank < o.Rank
	}
	return s.File < o.File
}

func (s Square) offset(df, dr int) Square {
	return Square{File: s.File + df, Rank: s.Rank + dr}
}

// ParseSquare converts an algebraic square name ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Square{}, errors.Errorf("invalid square %q", s)
	}
	return Square{File: int(s[0]-'a') + 1, Rank: int(s[1]-'0')}, nil
}
