package board

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(opts...)
	require.NoError(t, err)
	return engine
}

func applyUCI(t *testing.T, engine *Engine, moves ...string) *ResolvedMove {
	t.Helper()
	var last *ResolvedMove
	for _, mv := range moves {
		intent, err := ParseUCIIntent(mv)
		require.NoError(t, err)
		last, err = engine.Apply(intent)
		require.NoError(t, err, "applying %s", mv)
	}
	return last
}

func TestDoublePawnPushSetsEnPassantTarget(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	resolved := applyUCI(t, engine, "e2e4")
	assert.Equal(t, DoublePawnPush, resolved.Class)
	require.NotNil(t, engine.Position().EnPassantTarget())
	assert.Equal(t, "e3", engine.Position().EnPassantTarget().String())
	assert.Equal(t, 0, engine.Position().HalfMoveClock())

	// The very next move clears the target no matter what it is.
	applyUCI(t, engine, "g8f6")
	assert.Nil(t, engine.Position().EnPassantTarget())
	assert.Equal(t, 2, engine.Position().FullMoveNumber())
}

func TestEnPassantCaptureRemovesPassedPawn(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	resolved := applyUCI(t, engine, "e2e4", "a7a6", "e4e5", "d7d5", "e5d6")
	assert.Equal(t, EnPassantCapture, resolved.Class)
	assert.True(t, resolved.IsCapture)
	require.NotNil(t, resolved.Captured)
	assert.Equal(t, Pawn, resolved.Captured.Type)
	assert.Equal(t, "exd6", resolved.SAN())

	// The passed-over pawn is gone, not the one on the target square.
	assert.Nil(t, engine.Position().PieceAt(Square{File: 4, Rank: 5}))
	require.NotNil(t, engine.Position().PieceAt(Square{File: 4, Rank: 6}))
}

func TestFoolsMate(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	resolved := applyUCI(t, engine, "f2f3", "e7e5", "g2g4", "d8h4")
	assert.True(t, resolved.IsCheckmate)
	assert.Equal(t, "Qh4#", resolved.SAN())
	assert.Equal(t, StatusCheckmate, engine.Status())
	assert.True(t, engine.Status().Terminal())
}

func TestTerminatedGameRejectsMoves(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	applyUCI(t, engine, "f2f3", "e7e5", "g2g4", "d8h4")

	before := engine.ExportFEN(FENOptions{})
	intent, err := ParseUCIIntent("a2a3")
	require.NoError(t, err)
	_, err = engine.Apply(intent)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGameTerminated))
	assert.Equal(t, before, engine.ExportFEN(FENOptions{}))
	assert.Len(t, engine.History(), 4)
}

func TestCastleKingSide(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1"))

	resolved := applyUCI(t, engine, "e1g1")
	assert.Equal(t, CastleKingSide, resolved.Class)
	assert.Equal(t, "O-O", resolved.SAN())

	pos := engine.Position()
	require.NotNil(t, pos.PieceAt(Square{File: 7, Rank: 1}))
	assert.Equal(t, King, pos.PieceAt(Square{File: 7, Rank: 1}).Type)
	require.NotNil(t, pos.PieceAt(Square{File: 6, Rank: 1}))
	assert.Equal(t, Rook, pos.PieceAt(Square{File: 6, Rank: 1}).Type)
	assert.Nil(t, pos.PieceAt(Square{File: 8, Rank: 1}))

	// Both of the mover's rights fall together.
	assert.False(t, pos.Castling().WhiteKingSide)
	assert.False(t, pos.Castling().WhiteQueenSide)
}

func TestCastleQueenSide(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1"))

	resolved := applyUCI(t, engine, "e1c1")
	assert.Equal(t, CastleQueenSide, resolved.Class)
	assert.Equal(t, "O-O-O", resolved.SAN())

	pos := engine.Position()
	assert.Equal(t, King, pos.PieceAt(Square{File: 3, Rank: 1}).Type)
	assert.Equal(t, Rook, pos.PieceAt(Square{File: 4, Rank: 1}).Type)
	assert.Nil(t, pos.PieceAt(Square{File: 1, Rank: 1}))
}

func TestCastleRejectedWhenTransitAttacked(t *testing.T) {
	t.Parallel()

	// f1 is attacked by the f8 rook. Rights are intact and the squares are
	// empty, but the king may not pass through an attacked square.
	engine := newTestEngine(t, WithFEN("k4r2/8/8/8/8/8/8/4K2R w K - 0 1"))
	before := engine.ExportFEN(FENOptions{})

	intent, err := ParseUCIIntent("e1g1")
	require.NoError(t, err)
	_, err = engine.Apply(intent)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalDestination))
	assert.Equal(t, before, engine.ExportFEN(FENOptions{}))
}

func TestCastleRejectedWhileInCheck(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("4k3/8/8/8/8/8/4r3/4K2R w K - 0 1"))

	intent, err := ParseUCIIntent("e1g1")
	require.NoError(t, err)
	_, err = engine.Apply(intent)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalDestination))
}

func TestRookMoveAndRookCaptureClearRights(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("r3k3/8/8/8/8/8/8/R3K3 w Qq - 0 1"))

	// Ra1xa8 moves the queen-side rook off its corner and captures the
	// opponent's queen-side rook: both rights fall in one move.
	resolved := applyUCI(t, engine, "a1a8")
	assert.True(t, resolved.IsCapture)
	rights := engine.Position().Castling()
	assert.False(t, rights.WhiteQueenSide)
	assert.False(t, rights.BlackQueenSide)
	assert.Equal(t, CastlingRights{}, rights)
}

func TestCastlingRightsMonotonic(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	cleared := map[string]bool{}
	record := func() {
		rights := engine.Position().Castling()
		for name, set := range map[string]bool{
			"K": rights.WhiteKingSide,
			"Q": rights.WhiteQueenSide,
			"k": rights.BlackKingSide,
			"q": rights.BlackQueenSide,
		} {
			if cleared[name] {
				assert.False(t, set, "right %s was re-granted", name)
			}
			if !set {
				cleared[name] = true
			}
		}
	}

	for _, mv := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "e1g1", "g8f6", "d2d3", "e8g8"} {
		applyUCI(t, engine, mv)
		record()
	}
	rights := engine.Position().Castling()
	assert.Equal(t, CastlingRights{}, rights)
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("k7/4P3/8/8/8/8/8/K7 w - - 0 1"))

	resolved := applyUCI(t, engine, "e7e8")
	assert.Equal(t, Promotion, resolved.Class)
	assert.Equal(t, Queen, resolved.Promoted)
	assert.True(t, resolved.IsCheck)
	assert.Equal(t, "e8=Q+", resolved.SAN())
	assert.Equal(t, Queen, engine.Position().PieceAt(Square{File: 5, Rank: 8}).Type)
}

func TestUnderpromotion(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("k7/4P3/8/8/8/8/8/K7 w - - 0 1"))

	resolved := applyUCI(t, engine, "e7e8n")
	assert.Equal(t, Knight, resolved.Promoted)
	assert.Equal(t, "e8=N", resolved.SAN())
}

func TestPromotionWithCapture(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("k2r4/2P5/8/8/8/8/8/4K3 w - - 0 1"))

	resolved := applyUCI(t, engine, "c7d8")
	assert.Equal(t, Promotion, resolved.Class)
	assert.True(t, resolved.IsCapture)
	require.NotNil(t, resolved.Captured)
	assert.Equal(t, Rook, resolved.Captured.Type)
	assert.Equal(t, "cxd8=Q+", resolved.SAN())
}

func TestDisambiguationByFile(t *testing.T) {
	t.Parallel()

	// Knights on b1 and f3 can both reach d2; they share neither file nor
	// rank, so the file qualifies.
	engine := newTestEngine(t, WithFEN("k7/8/8/8/8/5N2/8/1N2K3 w - - 0 1"))

	resolved := applyUCI(t, engine, "b1d2")
	assert.Equal(t, "b", resolved.OriginFile)
	assert.Empty(t, resolved.OriginRank)
	assert.Empty(t, resolved.OriginSquare)
	assert.Equal(t, "Nbd2", resolved.SAN())
}

func TestDisambiguationByRank(t *testing.T) {
	t.Parallel()

	// Knights on d1 and d5 share a file, so the rank qualifies.
	engine := newTestEngine(t, WithFEN("7k/8/8/3N4/8/8/8/3NK3 w - - 0 1"))

	resolved := applyUCI(t, engine, "d1e3")
	assert.Equal(t, "1", resolved.OriginRank)
	assert.Empty(t, resolved.OriginFile)
	assert.Equal(t, "N1e3", resolved.SAN())
}

func TestDisambiguationCollapsesToOriginSquare(t *testing.T) {
	t.Parallel()

	// Three knights reach c3: one shares the mover's file, one shares
	// neither coordinate, so file and rank would both be needed and the full
	// origin square replaces them.
	engine := newTestEngine(t, WithFEN("k7/8/8/1N1N4/8/8/8/1N2K3 w - - 0 1"))

	resolved := applyUCI(t, engine, "b1c3")
	assert.Equal(t, "b1", resolved.OriginSquare)
	assert.Empty(t, resolved.OriginFile)
	assert.Empty(t, resolved.OriginRank)
	assert.Equal(t, "Nb1c3", resolved.SAN())
}

func TestPawnsSkipDisambiguation(t *testing.T) {
	t.Parallel()

	// Pawns on c4 and e4 can both capture on d5; notation relies on the
	// origin file a pawn capture always carries, not on a disambiguator.
	engine := newTestEngine(t, WithFEN("k7/8/8/3p4/2P1P3/8/8/4K3 w - - 0 1"))

	resolved := applyUCI(t, engine, "e4d5")
	assert.Empty(t, resolved.OriginFile)
	assert.Empty(t, resolved.OriginRank)
	assert.Empty(t, resolved.OriginSquare)
	assert.Equal(t, "exd5", resolved.SAN())
}

func TestIntentResolutionByPieceType(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("k7/8/8/1N1N4/8/8/8/1N2K3 w - - 0 1"))
	target := Square{File: 3, Rank: 3} // c3

	// Three knights reach c3: without a hint the intent is ambiguous.
	_, err := engine.Apply(MoveIntent{PieceType: Knight, Target: target})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousIntent))

	// A file hint narrows it to the d5 knight.
	resolved, err := engine.Apply(MoveIntent{PieceType: Knight, Target: target, OriginFile: 4})
	require.NoError(t, err)
	assert.Equal(t, "d5", resolved.Piece.Square.String())
}

func TestApplyErrors(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	before := engine.ExportFEN(FENOptions{})

	empty := Square{File: 5, Rank: 3} // e3
	_, err := engine.Apply(MoveIntent{Origin: &empty, Target: Square{File: 5, Rank: 4}})
	assert.True(t, errors.Is(err, ErrNoPieceAtOrigin))

	intent, err := ParseUCIIntent("e2e5")
	require.NoError(t, err)
	_, err = engine.Apply(intent)
	assert.True(t, errors.Is(err, ErrIllegalDestination))

	// Moving the opponent's piece counts as having no piece of one's own.
	intent, err = ParseUCIIntent("e7e5")
	require.NoError(t, err)
	_, err = engine.Apply(intent)
	assert.True(t, errors.Is(err, ErrNoPieceAtOrigin))

	assert.Equal(t, before, engine.ExportFEN(FENOptions{}))
	assert.Empty(t, engine.History())
}

func TestRewind(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	applyUCI(t, engine, "e2e4", "e7e5", "g1f3")
	history := engine.History()
	require.Len(t, history, 3)

	require.NoError(t, engine.Rewind(2))
	assert.Equal(t, history[1].FEN, engine.ExportFEN(FENOptions{}))
	assert.Len(t, engine.History(), 2)

	require.NoError(t, engine.Rewind(0))
	assert.Equal(t, DefaultStartingFEN, engine.ExportFEN(FENOptions{}))
	assert.Empty(t, engine.History())

	err := engine.Rewind(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlyOutOfRange))
	err = engine.Rewind(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlyOutOfRange))
}

func TestRewindReopensTerminatedGame(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	applyUCI(t, engine, "f2f3", "e7e5", "g2g4", "d8h4")
	require.True(t, engine.Status().Terminal())

	require.NoError(t, engine.Rewind(3))
	assert.Equal(t, StatusNone, engine.Status())
	applyUCI(t, engine, "g4g5")
}

func TestStalematePositionIsTerminal(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("k7/8/1Q6/8/8/8/8/K7 b - - 0 1"))

	assert.Equal(t, StatusStalemate, engine.Status())
	// Querying twice without an Apply yields the same answer.
	assert.Equal(t, engine.Status(), engine.Status())

	intent, err := ParseUCIIntent("a8a7")
	require.NoError(t, err)
	_, err = engine.Apply(intent)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGameTerminated))
}

func TestCheckmatePositionFromLoad(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithFEN("R5k1/5ppp/8/8/8/8/8/7K b - - 0 1"))
	assert.Equal(t, StatusCheckmate, engine.Status())
}

func TestDoubleCheckStatus(t *testing.T) {
	t.Parallel()

	// Rook on e1 and knight on f6 both check the e8 king, which still has
	// escape squares.
	engine := newTestEngine(t, WithFEN("4k3/8/5N2/8/8/8/8/4R2K b - - 0 1"))
	assert.Equal(t, StatusDoubleCheck, engine.Status())
	applyUCI(t, engine, "e8f7")
}

func TestHalfMoveClock(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	applyUCI(t, engine, "e2e4")
	assert.Equal(t, 0, engine.Position().HalfMoveClock())
	applyUCI(t, engine, "b8c6")
	assert.Equal(t, 1, engine.Position().HalfMoveClock())
	applyUCI(t, engine, "g1f3")
	assert.Equal(t, 2, engine.Position().HalfMoveClock())
	applyUCI(t, engine, "d7d5")
	assert.Equal(t, 0, engine.Position().HalfMoveClock())
	applyUCI(t, engine, "e4d5")
	assert.Equal(t, 0, engine.Position().HalfMoveClock())
}

func TestPositionInvariantsAfterEveryApply(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	moves := []string{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3", "d5a5", "d2d4", "g8f6", "g1f3", "c8g4"}
	for _, mv := range moves {
		applyUCI(t, engine, mv)
		pos := engine.Position()
		for _, color := range []Color{White, Black} {
			kings := 0
			for _, pc := range pos.Pieces(color) {
				if pc.Type == King {
					kings++
				}
				// Every piece's recorded square points back at itself.
				assert.Same(t, pc, pos.PieceAt(pc.Square))
			}
			assert.Equal(t, 1, kings, "%s kings after %s", color, mv)
		}
	}
}

func TestResolvedMoveSnapshotsResultingPosition(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	resolved := applyUCI(t, engine, "e2e4")
	assert.Equal(t, resolved.ResultingFEN, engine.ExportFEN(FENOptions{}))
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", resolved.ResultingFEN)
}
