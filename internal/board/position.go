package board

// CastlingRights tracks the four independent castling permissions. Rights only
// ever transition from true to false; nothing re-grants a cleared right.
type CastlingRights struct {
	WhiteKingSide  bool `json:"whiteKingSide"`
	WhiteQueenSide bool `json:"whiteQueenSide"`
	BlackKingSide  bool `json:"blackKingSide"`
	BlackQueenSide bool `json:"blackQueenSide"`
}

func allCastlingRights() CastlingRights {
	return CastlingRights{
		WhiteKingSide:  true,
		WhiteQueenSide: true,
		BlackKingSide:  true,
		BlackQueenSide: true,
	}
}

// Position holds a full chess position: piece placement, side to move,
// castling rights, en-passant target and move counters. It is mutated only by
// the Engine; everything else reads it.
type Position struct {
	board           [8][8]*Piece // indexed [rank-1][file-1]
	sideToMove      Color
	castling        CastlingRights
	enPassantTarget *Square
	halfMoveClock   int
	fullMoveNumber  int
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos := &Position{
		sideToMove:     White,
		castling:       allCastlingRights(),
		fullMoveNumber: 1,
	}
	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file := 1; file <= 8; file++ {
		pos.place(&Piece{Type: backRank[file-1], Color: White}, Square{File: file, Rank: 1})
		pos.place(&Piece{Type: Pawn, Color: White}, Square{File: file, Rank: 2})
		pos.place(&Piece{Type: Pawn, Color: Black}, Square{File: file, Rank: 7})
		pos.place(&Piece{Type: backRank[file-1], Color: Black}, Square{File: file, Rank: 8})
	}
	return pos
}

func (p *Position) place(pc *Piece, sq Square) {
	pc.Square = sq
	p.board[sq.Rank-1][sq.File-1] = pc
}

func (p *Position) remove(sq Square) *Piece {
	pc := p.board[sq.Rank-1][sq.File-1]
	p.board[sq.Rank-1][sq.File-1] = nil
	return pc
}

// PieceAt returns the piece on sq, or nil for an empty or invalid square.
func (p *Position) PieceAt(sq Square) *Piece {
	if !sq.Valid() {
		return nil
	}
	return p.board[sq.Rank-1][sq.File-1]
}

func (p *Position) SideToMove() Color {
	return p.sideToMove
}

func (p *Position) Castling() CastlingRights {
	return p.castling
}

// EnPassantTarget returns the current en-passant target square, if any. It is
// only ever set for the single ply following a double pawn push.
func (p *Position) EnPassantTarget() *Square {
	if p.enPassantTarget == nil {
		return nil
	}
	sq := *p.enPassantTarget
	return &sq
}

func (p *Position) HalfMoveClock() int {
	return p.halfMoveClock
}

func (p *Position) FullMoveNumber() int {
	return p.fullMoveNumber
}

// Pieces returns all pieces of the given color in square order.
func (p *Position) Pieces(c Color) []*Piece {
	var out []*Piece
	for rank := 1; rank <= 8; rank++ {
		for file := 1; file <= 8; file++ {
			if pc := p.board[rank-1][file-1]; pc != nil && pc.Color == c {
				out = append(out, pc)
			}
		}
	}
	return out
}

// KingSquare locates the king of the given color. The second return value is
// false only for malformed positions, which Load refuses to accept.
func (p *Position) KingSquare(c Color) (Square, bool) {
	for rank := 1; rank <= 8; rank++ {
		for file := 1; file <= 8; file++ {
			if pc := p.board[rank-1][file-1]; pc != nil && pc.Color == c && pc.Type == King {
				return pc.Square, true
			}
		}
	}
	return Square{}, false
}

// clone deep-copies the position so a candidate mutation can be probed or
// applied without any partially-updated state becoming observable.
func (p *Position) clone() *Position {
	c := &Position{
		sideToMove:     p.sideToMove,
		castling:       p.castling,
		halfMoveClock:  p.halfMoveClock,
		fullMoveNumber: p.fullMoveNumber,
	}
	if p.enPassantTarget != nil {
		sq := *p.enPassantTarget
		c.enPassantTarget = &sq
	}
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			if pc := p.board[rank][file]; pc != nil {
				cp := *pc
				c.board[rank][file] = &cp
			}
		}
	}
	return c
}
