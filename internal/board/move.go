package board

import (
	"strings"

	"github.com/pkg/errors"
)

// MoveClass is the engine's classification of an applied move.
type MoveClass string

const (
	Simple           MoveClass = "simple"
	DoublePawnPush   MoveClass = "doublePawnPush"
	Capture          MoveClass = "capture"
	EnPassantCapture MoveClass = "enPassantCapture"
	CastleKingSide   MoveClass = "castleKingSide"
	CastleQueenSide  MoveClass = "castleQueenSide"
	Promotion        MoveClass = "promotion"
)

// MoveIntent describes a requested move with only as much detail as the
// triggering input supplied. Origin pins the exact piece; otherwise PieceType
// plus the optional file/rank hints narrow the candidates.
type MoveIntent struct {
	PieceType  PieceType `json:"pieceType,omitempty"`
	Target     Square    `json:"target"`
	Origin     *Square   `json:"origin,omitempty"`
	OriginFile int       `json:"originFile,omitempty"` // 1-8, 0 when unspecified
	OriginRank int       `json:"originRank,omitempty"` // 1-8, 0 when unspecified
	Promotion  PieceType `json:"promotion,omitempty"`

	// ClassHint and IsCapture carry what the triggering input claimed about
	// the move, e.g. when it came from parsed notation. The engine classifies
	// every move itself and does not trust either field.
	ClassHint MoveClass `json:"classHint,omitempty"`
	IsCapture bool      `json:"isCapture,omitempty"`
}

// ParseUCIIntent builds an intent from a UCI-style move string such as
// "e2e4" or "e7e8q".
func ParseUCIIntent(s string) (MoveIntent, error) {
	if len(s) != 4 && len(s) != 5 {
		return MoveIntent{}, errors.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return MoveIntent{}, errors.Wrapf(err, "invalid move %q", s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return MoveIntent{}, errors.Wrapf(err, "invalid move %q", s)
	}
	intent := MoveIntent{Target: to, Origin: &from}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			intent.Promotion = Queen
		case 'r':
			intent.Promotion = Rook
		case 'b':
			intent.Promotion = Bishop
		case 'n':
			intent.Promotion = Knight
		default:
			return MoveIntent{}, errors.Errorf("invalid promotion in %q", s)
		}
	}
	return intent, nil
}

// ResolvedMove is the fully-determined record of an applied move: the
// concrete mover, the classification, the minimal disambiguators needed for
// notation, and the status of the resulting position. It is immutable once
// appended to history.
type ResolvedMove struct {
	Piece     Piece     `json:"piece"` // the mover, with its origin square
	Target    Square    `json:"target"`
	Class     MoveClass `json:"class"`
	IsCapture bool      `json:"isCapture"`
	Captured  *Piece    `json:"captured,omitempty"`
	Promoted  PieceType `json:"promoted,omitempty"`

	// Minimal origin qualifiers. At most one of the three is set: file or
	// rank alone when that suffices, the full square when both would be
	// needed.
	OriginFile   string `json:"originFile,omitempty"`
	OriginRank   string `json:"originRank,omitempty"`
	OriginSquare string `json:"originSquare,omitempty"`

	IsCheck       bool   `json:"isCheck"`
	IsDoubleCheck bool   `json:"isDoubleCheck"`
	IsCheckmate   bool   `json:"isCheckmate"`
	ResultingFEN  string `json:"resultingFen"`
}

// SAN renders the move in standard algebraic notation.
func (m ResolvedMove) SAN() string {
	var b strings.Builder
	switch m.Class {
	case CastleKingSide:
		b.WriteString("O-O")
	case CastleQueenSide:
		b.WriteString("O-O-O")
	default:
		b.WriteString(m.Piece.Type.sanLetter())
		switch {
		case m.OriginSquare != "":
			b.WriteString(m.OriginSquare)
		case m.OriginFile != "":
			b.WriteString(m.OriginFile)
		case m.OriginRank != "":
			b.WriteString(m.OriginRank)
		}
		if m.IsCapture {
			// Pawn captures always name the origin file.
			if m.Piece.Type == Pawn {
				b.WriteString(m.Piece.Square.fileLetter())
			}
			b.WriteByte('x')
		}
		b.WriteString(m.Target.String())
		if m.Class == Promotion {
			b.WriteByte('=')
			b.WriteString(m.Promoted.sanLetter())
		}
	}
	switch {
	case m.IsCheckmate:
		b.WriteByte('#')
	case m.IsCheck || m.IsDoubleCheck:
		b.WriteByte('+')
	}
	return b.String()
}
