package board

// Oracle answers the two legality questions the engine delegates: which
// squares a piece may legally move to (already filtered so the mover's own
// king is never left in check), and whether a square is attacked by a color.
// Keeping this behind an interface lets the move generator be tested and
// replaced independently of the state-transition engine.
type Oracle interface {
	// LegalTargets returns the squares the piece on from may legally move to.
	// An empty or invalid from square yields no targets.
	LegalTargets(pos *Position, from Square) []Square

	// AttackedBy reports whether sq is attacked by any piece of color by.
	AttackedBy(pos *Position, sq Square, by Color) bool

	// Attackers returns the squares of every piece of color by attacking sq.
	Attackers(pos *Position, sq Square, by Color) []Square
}

// StandardRules is the built-in Oracle implementing orthodox chess movement.
type StandardRules struct{}

type direction struct {
	df, dr int
}

var (
	rookDirs   = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	royalDirs  = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightDirs = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// pawnForward is the rank direction a pawn of color c advances in.
func pawnForward(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func pawnStartRank(c Color) int {
	if c == White {
		return 2
	}
	return 7
}

func promotionRank(c Color) int {
	if c == White {
		return 8
	}
	return 1
}

func (StandardRules) LegalTargets(pos *Position, from Square) []Square {
	pc := pos.PieceAt(from)
	if pc == nil {
		return nil
	}
	var legal []Square
	for _, target := range pseudoTargets(pos, pc) {
		if !leavesKingInCheck(pos, pc, target) {
			legal = append(legal, target)
		}
	}
	return legal
}

func (r StandardRules) AttackedBy(pos *Position, sq Square, by Color) bool {
	return len(r.Attackers(pos, sq, by)) > 0
}

func (StandardRules) Attackers(pos *Position, sq Square, by Color) []Square {
	var attackers []Square

	// Sliding attacks along ranks, files and diagonals.
	scan := func(dirs []direction, slider PieceType) {
		for _, d := range dirs {
			for cur := sq.offset(d.df, d.dr); cur.Valid(); cur = cur.offset(d.df, d.dr) {
				pc := pos.PieceAt(cur)
				if pc == nil {
					continue
				}
				if pc.Color == by && (pc.Type == Queen || pc.Type == slider) {
					attackers = append(attackers, cur)
				}
				break
			}
		}
	}
	scan(rookDirs, Rook)
	scan(bishopDirs, Bishop)

	for _, d := range knightDirs {
		cur := sq.offset(d.df, d.dr)
		if pc := pos.PieceAt(cur); pc != nil && pc.Color == by && pc.Type == Knight {
			attackers = append(attackers, cur)
		}
	}
	for _, d := range royalDirs {
		cur := sq.offset(d.df, d.dr)
		if pc := pos.PieceAt(cur); pc != nil && pc.Color == by && pc.Type == King {
			attackers = append(attackers, cur)
		}
	}

	// A pawn of color by attacks sq from one rank behind it, diagonally.
	back := -pawnForward(by)
	for _, df := range []int{-1, 1} {
		cur := sq.offset(df, back)
		if pc := pos.PieceAt(cur); pc != nil && pc.Color == by && pc.Type == Pawn {
			attackers = append(attackers, cur)
		}
	}

	return attackers
}

// pseudoTargets generates movement-pattern targets without king-safety
// filtering. Castle targets are included when the rights and empty-square
// preconditions hold; attack conditions on the king's path are enforced by
// the engine when it classifies the move.
func pseudoTargets(pos *Position, pc *Piece) []Square {
	switch pc.Type {
	case Pawn:
		return pseudoPawnTargets(pos, pc)
	case Knight:
		return leaperTargets(pos, pc, knightDirs)
	case Bishop:
		return sliderTargets(pos, pc, bishopDirs)
	case Rook:
		return sliderTargets(pos, pc, rookDirs)
	case Queen:
		return sliderTargets(pos, pc, royalDirs)
	case King:
		return append(leaperTargets(pos, pc, royalDirs), castleTargets(pos, pc)...)
	}
	return nil
}

func pseudoPawnTargets(pos *Position, pc *Piece) []Square {
	var targets []Square
	dir := pawnForward(pc.Color)

	one := pc.Square.offset(0, dir)
	if one.Valid() && pos.PieceAt(one) == nil {
		targets = append(targets, one)
		two := pc.Square.offset(0, 2*dir)
		if pc.Square.Rank == pawnStartRank(pc.Color) && pos.PieceAt(two) == nil {
			targets = append(targets, two)
		}
	}
	for _, df := range []int{-1, 1} {
		cap := pc.Square.offset(df, dir)
		if !cap.Valid() {
			continue
		}
		if victim := pos.PieceAt(cap); victim != nil && victim.Color != pc.Color {
			targets = append(targets, cap)
		} else if ep := pos.enPassantTarget; ep != nil && *ep == cap {
			targets = append(targets, cap)
		}
	}
	return targets
}

func leaperTargets(pos *Position, pc *Piece, dirs []direction) []Square {
	var targets []Square
	for _, d := range dirs {
		cur := pc.Square.offset(d.df, d.dr)
		if !cur.Valid() {
			continue
		}
		if occ := pos.PieceAt(cur); occ == nil || occ.Color != pc.Color {
			targets = append(targets, cur)
		}
	}
	return targets
}

func sliderTargets(pos *Position, pc *Piece, dirs []direction) []Square {
	var targets []Square
	for _, d := range dirs {
		for cur := pc.Square.offset(d.df, d.dr); cur.Valid(); cur = cur.offset(d.df, d.dr) {
			occ := pos.PieceAt(cur)
			if occ == nil {
				targets = append(targets, cur)
				continue
			}
			if occ.Color != pc.Color {
				targets = append(targets, cur)
			}
			break
		}
	}
	return targets
}

func castleTargets(pos *Position, king *Piece) []Square {
	if king.Square.File != 5 || king.Square.Rank != homeRank(king.Color) {
		return nil
	}
	rank := king.Square.Rank
	var targets []Square

	kingSide, queenSide := pos.castling.BlackKingSide, pos.castling.BlackQueenSide
	if king.Color == White {
		kingSide, queenSide = pos.castling.WhiteKingSide, pos.castling.WhiteQueenSide
	}

	if kingSide && cornerRook(pos, king.Color, 8) &&
		pos.PieceAt(Square{File: 6, Rank: rank}) == nil &&
		pos.PieceAt(Square{File: 7, Rank: rank}) == nil {
		targets = append(targets, Square{File: 7, Rank: rank})
	}
	if queenSide && cornerRook(pos, king.Color, 1) &&
		pos.PieceAt(Square{File: 2, Rank: rank}) == nil &&
		pos.PieceAt(Square{File: 3, Rank: rank}) == nil &&
		pos.PieceAt(Square{File: 4, Rank: rank}) == nil {
		targets = append(targets, Square{File: 3, Rank: rank})
	}
	return targets
}

func homeRank(c Color) int {
	if c == White {
		return 1
	}
	return 8
}

func cornerRook(pos *Position, c Color, file int) bool {
	pc := pos.PieceAt(Square{File: file, Rank: homeRank(c)})
	return pc != nil && pc.Color == c && pc.Type == Rook
}

// leavesKingInCheck probes a candidate move on a copy of the position and
// reports whether the mover's own king would be attacked afterwards. The
// probe performs the basic relocation plus en-passant removal; castling
// transit safety is checked separately by the engine.
func leavesKingInCheck(pos *Position, pc *Piece, target Square) bool {
	probe := pos.clone()
	mover := probe.PieceAt(pc.Square)

	if mover.Type == Pawn && probe.enPassantTarget != nil && *probe.enPassantTarget == target {
		probe.remove(target.offset(0, -pawnForward(mover.Color)))
	}
	probe.remove(mover.Square)
	probe.place(mover, target)

	kingSq, ok := probe.KingSquare(mover.Color)
	if !ok {
		return true
	}
	return StandardRules{}.AttackedBy(probe, kingSq, mover.Color.Opposite())
}
