package board

// Color is the side a piece belongs to.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

type PieceType string

const (
	Pawn   PieceType = "pawn"
	Knight PieceType = "knight"
	Bishop PieceType = "bishop"
	Rook   PieceType = "rook"
	Queen  PieceType = "queen"
	King   PieceType = "king"
)

// sanLetter is the piece letter used in algebraic notation. Pawns have none.
func (p PieceType) sanLetter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

// fenSymbol is the single-letter FEN symbol for a piece of the given color.
func (p PieceType) fenSymbol(c Color) byte {
	var b byte
	switch p {
	case Pawn:
		b = 'p'
	case Knight:
		b = 'n'
	case Bishop:
		b = 'b'
	case Rook:
		b = 'r'
	case Queen:
		b = 'q'
	case King:
		b = 'k'
	}
	if c == White {
		b -= 'a' - 'A'
	}
	return b
}

func pieceTypeFromFEN(b byte) (PieceType, Color, bool) {
	color := Black
	if b >= 'A' && b <= 'Z' {
		color = White
		b += 'a' - 'A'
	}
	switch b {
	case 'p':
		return Pawn, color, true
	case 'n':
		return Knight, color, true
	case 'b':
		return Bishop, color, true
	case 'r':
		return Rook, color, true
	case 'q':
		return Queen, color, true
	case 'k':
		return King, color, true
	}
	return "", "", false
}

// Piece is a concrete piece on the board. Square tracks its current location
// and is kept up to date by the engine's mutations.
type Piece struct {
	Type   PieceType `json:"type"`
	Color  Color     `json:"color"`
	Square Square    `json:"square"`
}
