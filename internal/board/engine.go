package board

import (
	"github.com/pkg/errors"
)

// Status classifies the position for the side about to move next.
type Status string

const (
	StatusNone        Status = "none"
	StatusCheck       Status = "check"
	StatusDoubleCheck Status = "doubleCheck"
	StatusCheckmate   Status = "checkmate"
	StatusStalemate   Status = "stalemate"
)

// Terminal reports whether the game accepts no further moves.
func (s Status) Terminal() bool {
	return s == StatusCheckmate || s == StatusStalemate
}

// Engine owns one Position and its move history and applies move intents to
// it. All mutating calls must be serialized by the caller; the engine itself
// performs no locking.
type Engine struct {
	pos      *Position
	oracle   Oracle
	history  []HistoryEntry
	status   Status
	startFEN string
}

type engineConfig struct {
	fen    string
	oracle Oracle
}

type Option func(*engineConfig)

// WithFEN starts the engine from the given position instead of the standard
// starting position.
func WithFEN(fen string) Option {
	return func(c *engineConfig) {
		c.fen = fen
	}
}

// WithOracle replaces the built-in StandardRules legality oracle.
func WithOracle(o Oracle) Option {
	return func(c *engineConfig) {
		c.oracle = o
	}
}

// NewEngine creates an engine. It fails only when a WithFEN position does not
// validate.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := engineConfig{
		fen:    DefaultStartingFEN,
		oracle: StandardRules{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	pos, err := ParseFEN(cfg.fen)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		pos:      pos,
		oracle:   cfg.oracle,
		startFEN: pos.FEN(FENOptions{}),
	}
	e.status = e.computeStatus(pos)
	return e, nil
}

// Position returns the current position. Callers must treat it as read-only;
// snapshot via FEN before reading concurrently with the next Apply.
func (e *Engine) Position() *Position {
	return e.pos
}

// Status returns the termination status for the side to move.
func (e *Engine) Status() Status {
	return e.status
}

// History returns a copy of the applied moves in order.
func (e *Engine) History() []HistoryEntry {
	out := make([]HistoryEntry, len(e.history))
	copy(out, e.history)
	return out
}

// ExportFEN serializes the current position.
func (e *Engine) ExportFEN(opts FENOptions) string {
	return e.pos.FEN(opts)
}

// Apply resolves a move intent against the current position, mutates the
// position, recomputes the termination status and appends the move to
// history. On any error the position and history are left exactly as before
// the call.
func (e *Engine) Apply(intent MoveIntent) (*ResolvedMove, error) {
	if e.status.Terminal() {
		return nil, errors.Wrapf(ErrGameTerminated, "status %s", e.status)
	}

	mover, err := e.resolveMover(intent)
	if err != nil {
		return nil, err
	}

	class, err := e.classify(mover, intent)
	if err != nil {
		return nil, err
	}

	resolved := ResolvedMove{
		Piece:  *mover,
		Target: intent.Target,
		Class:  class,
	}
	e.disambiguate(mover, intent.Target, &resolved)

	// Mutate a copy so no partial state is ever observable, then swap.
	next := e.pos.clone()
	e.mutate(next, next.PieceAt(mover.Square), intent, class, &resolved)

	status := e.computeStatus(next)
	resolved.IsCheck = status == StatusCheck
	resolved.IsDoubleCheck = status == StatusDoubleCheck
	resolved.IsCheckmate = status == StatusCheckmate
	resolved.ResultingFEN = next.FEN(FENOptions{})

	e.pos = next
	e.status = status
	e.history = append(e.history, HistoryEntry{Move: resolved, FEN: resolved.ResultingFEN})
	return &resolved, nil
}

// Rewind restores the position to the snapshot after ply n (0 = initial
// position) and truncates history accordingly.
func (e *Engine) Rewind(ply int) error {
	if ply < 0 || ply > len(e.history) {
		return errors.Wrapf(ErrPlyOutOfRange, "ply %d, history length %d", ply, len(e.history))
	}
	fen := e.startFEN
	if ply > 0 {
		fen = e.history[ply-1].FEN
	}
	pos, err := ParseFEN(fen)
	if err != nil {
		// Snapshots are produced by Export; failing to reload one means an
		// internal invariant broke.
		return errors.Wrap(err, "reloading history snapshot")
	}
	e.pos = pos
	e.history = e.history[:ply]
	e.status = e.computeStatus(pos)
	return nil
}

// resolveMover narrows the intent down to the single piece it describes.
func (e *Engine) resolveMover(intent MoveIntent) (*Piece, error) {
	if !intent.Target.Valid() {
		return nil, errors.Wrapf(ErrIllegalDestination, "target %s", intent.Target)
	}

	if intent.Origin != nil {
		pc := e.pos.PieceAt(*intent.Origin)
		if pc == nil || pc.Color != e.pos.sideToMove {
			return nil, errors.Wrapf(ErrNoPieceAtOrigin, "origin %s", intent.Origin)
		}
		if intent.PieceType != "" && pc.Type != intent.PieceType {
			return nil, errors.Wrapf(ErrNoPieceAtOrigin, "origin %s holds a %s, not a %s", intent.Origin, pc.Type, intent.PieceType)
		}
		if !containsSquare(e.oracle.LegalTargets(e.pos, pc.Square), intent.Target) {
			return nil, errors.Wrapf(ErrIllegalDestination, "%s %s%s", pc.Type, pc.Square, intent.Target)
		}
		return pc, nil
	}

	if intent.PieceType == "" {
		return nil, errors.Wrap(ErrNoPieceAtOrigin, "intent names neither origin nor piece type")
	}
	var candidates []*Piece
	for _, pc := range e.pos.Pieces(e.pos.sideToMove) {
		if pc.Type != intent.PieceType {
			continue
		}
		if intent.OriginFile != 0 && pc.Square.File != intent.OriginFile {
			continue
		}
		if intent.OriginRank != 0 && pc.Square.Rank != intent.OriginRank {
			continue
		}
		if containsSquare(e.oracle.LegalTargets(e.pos, pc.Square), intent.Target) {
			candidates = append(candidates, pc)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, errors.Wrapf(ErrIllegalDestination, "no %s can reach %s", intent.PieceType, intent.Target)
	case 1:
		return candidates[0], nil
	default:
		return nil, errors.Wrapf(ErrAmbiguousIntent, "%d %ss can reach %s", len(candidates), intent.PieceType, intent.Target)
	}
}

// classify determines the move class, checking the more specific classes
// first, and enforces the castling safety conditions.
func (e *Engine) classify(mover *Piece, intent MoveIntent) (MoveClass, error) {
	target := intent.Target

	if mover.Type == Pawn && abs(target.Rank-mover.Square.Rank) == 2 {
		return DoublePawnPush, nil
	}

	if mover.Type == King && abs(target.File-mover.Square.File) == 2 {
		return e.classifyCastle(mover, target)
	}

	if mover.Type == Pawn {
		if ep := e.pos.enPassantTarget; ep != nil && *ep == target {
			return EnPassantCapture, nil
		}
		if target.Rank == promotionRank(mover.Color) {
			return Promotion, nil
		}
	}

	if victim := e.pos.PieceAt(target); victim != nil && victim.Color != mover.Color {
		return Capture, nil
	}
	return Simple, nil
}

func (e *Engine) classifyCastle(king *Piece, target Square) (MoveClass, error) {
	rank := king.Square.Rank
	var class MoveClass
	var right bool
	var transit []Square

	switch target.File {
	case 7: // king-side, king lands on the g-file
		class = CastleKingSide
		transit = []Square{{File: 6, Rank: rank}, {File: 7, Rank: rank}}
		if king.Color == White {
			right = e.pos.castling.WhiteKingSide
		} else {
			right = e.pos.castling.BlackKingSide
		}
	case 3: // queen-side, king lands on the c-file
		class = CastleQueenSide
		transit = []Square{{File: 4, Rank: rank}, {File: 3, Rank: rank}}
		if king.Color == White {
			right = e.pos.castling.WhiteQueenSide
		} else {
			right = e.pos.castling.BlackQueenSide
		}
	default:
		return "", errors.Wrapf(ErrIllegalDestination, "king %s%s", king.Square, target)
	}

	if !right {
		return "", errors.Wrapf(ErrIllegalDestination, "castling rights for %s already cleared", class)
	}
	opponent := king.Color.Opposite()
	if e.oracle.AttackedBy(e.pos, king.Square, opponent) {
		return "", errors.Wrapf(ErrIllegalDestination, "cannot castle out of check")
	}
	for _, sq := range transit {
		if e.pos.PieceAt(sq) != nil {
			return "", errors.Wrapf(ErrIllegalDestination, "castling path %s is occupied", sq)
		}
		if e.oracle.AttackedBy(e.pos, sq, opponent) {
			return "", errors.Wrapf(ErrIllegalDestination, "castling path %s is attacked", sq)
		}
	}
	return class, nil
}

// mutate applies the classified move to pos. mover is the piece inside pos
// (not the caller's copy). All effects land together; callers only ever see
// the position before or after.
func (e *Engine) mutate(pos *Position, mover *Piece, intent MoveIntent, class MoveClass, resolved *ResolvedMove) {
	from := mover.Square
	target := intent.Target
	var captured *Piece

	switch class {
	case EnPassantCapture:
		captured = pos.remove(target.offset(0, -pawnForward(mover.Color)))
	case CastleKingSide:
		rook := pos.remove(Square{File: 8, Rank: from.Rank})
		pos.place(rook, Square{File: 6, Rank: from.Rank})
	case CastleQueenSide:
		rook := pos.remove(Square{File: 1, Rank: from.Rank})
		pos.place(rook, Square{File: 4, Rank: from.Rank})
	default:
		captured = pos.PieceAt(target)
	}

	pos.remove(from)
	pos.place(mover, target)

	if class == Promotion {
		promoted := intent.Promotion
		if promoted == "" {
			promoted = Queen
		}
		pos.place(&Piece{Type: promoted, Color: mover.Color}, target)
		resolved.Promoted = promoted
	}

	if captured != nil {
		resolved.IsCapture = true
		cp := *captured
		resolved.Captured = &cp
	}

	e.updateCastlingRights(pos, mover.Color, mover.Type, from, target, captured)

	// En-passant target lives for exactly one ply after a double push.
	pos.enPassantTarget = nil
	if class == DoublePawnPush {
		passed := from.offset(0, pawnForward(mover.Color))
		pos.enPassantTarget = &passed
	}

	if mover.Type == Pawn || captured != nil {
		pos.halfMoveClock = 0
	} else {
		pos.halfMoveClock++
	}
	if pos.sideToMove == Black {
		pos.fullMoveNumber++
	}
	pos.sideToMove = pos.sideToMove.Opposite()
}

// updateCastlingRights clears rights the first time a king or corner rook
// moves, or a corner rook is captured. Rights only ever go from true to
// false.
func (e *Engine) updateCastlingRights(pos *Position, mover Color, pt PieceType, from, target Square, captured *Piece) {
	if pt == King {
		if mover == White {
			pos.castling.WhiteKingSide = false
			pos.castling.WhiteQueenSide = false
		} else {
			pos.castling.BlackKingSide = false
			pos.castling.BlackQueenSide = false
		}
	}
	if pt == Rook {
		clearRookRight(pos, mover, from)
	}
	if captured != nil && captured.Type == Rook {
		clearRookRight(pos, captured.Color, target)
	}
}

func clearRookRight(pos *Position, c Color, sq Square) {
	if sq.Rank != homeRank(c) {
		return
	}
	switch sq.File {
	case 1:
		if c == White {
			pos.castling.WhiteQueenSide = false
		} else {
			pos.castling.BlackQueenSide = false
		}
	case 8:
		if c == White {
			pos.castling.WhiteKingSide = false
		} else {
			pos.castling.BlackKingSide = false
		}
	}
}

// computeStatus classifies the position for the side about to move next.
func (e *Engine) computeStatus(pos *Position) Status {
	side := pos.sideToMove
	kingSq, ok := pos.KingSquare(side)
	if !ok {
		// Load validates king presence, so this indicates a prior unguarded
		// mutation; report the strongest terminal state rather than guess.
		return StatusCheckmate
	}
	attackers := e.oracle.Attackers(pos, kingSq, side.Opposite())
	hasMove := e.hasAnyLegalMove(pos, side)

	switch {
	case len(attackers) > 0 && !hasMove:
		return StatusCheckmate
	case len(attackers) >= 2:
		return StatusDoubleCheck
	case len(attackers) == 1:
		return StatusCheck
	case !hasMove:
		return StatusStalemate
	default:
		return StatusNone
	}
}

func (e *Engine) hasAnyLegalMove(pos *Position, c Color) bool {
	for _, pc := range pos.Pieces(c) {
		if len(e.oracle.LegalTargets(pos, pc.Square)) > 0 {
			return true
		}
	}
	return false
}

// disambiguate fills in the minimal origin qualifier that separates the
// mover from every other same-type, same-color piece that could also reach
// the target. Pawns and kings are never ambiguous and skip the scan.
func (e *Engine) disambiguate(mover *Piece, target Square, resolved *ResolvedMove) {
	if mover.Type == Pawn || mover.Type == King {
		return
	}
	var byFile, byRank bool
	for _, other := range e.pos.Pieces(mover.Color) {
		if other == mover || other.Type != mover.Type {
			continue
		}
		if !containsSquare(e.oracle.LegalTargets(e.pos, other.Square), target) {
			continue
		}
		switch {
		case other.Square.Rank == mover.Square.Rank:
			byFile = true
		case other.Square.File == mover.Square.File:
			byRank = true
		default:
			// File is the default qualifier when neither coordinate is
			// shared.
			byFile = true
		}
	}
	switch {
	case byFile && byRank:
		resolved.OriginSquare = mover.Square.String()
	case byFile:
		resolved.OriginFile = mover.Square.fileLetter()
	case byRank:
		resolved.OriginRank = mover.Square.rankDigit()
	}
}

func containsSquare(squares []Square, sq Square) bool {
	for _, s := range squares {
		if s == sq {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
