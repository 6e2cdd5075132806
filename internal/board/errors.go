package board

import "github.com/pkg/errors"

// Sentinel errors for the engine's public operations. Callers match them with
// errors.Is / errors.Cause.
var (
	// ErrMalformedPosition rejects a position description that fails
	// validation (missing or duplicated kings, overlapping pieces, bad
	// syntax).
	ErrMalformedPosition = errors.New("malformed position")

	// ErrNoPieceAtOrigin rejects an intent whose origin square is empty or
	// holds an opponent piece.
	ErrNoPieceAtOrigin = errors.New("no movable piece at origin")

	// ErrIllegalDestination rejects an intent whose target the legality
	// oracle does not allow for the selected piece.
	ErrIllegalDestination = errors.New("illegal destination")

	// ErrAmbiguousIntent rejects an intent that matches several pieces and
	// carries no disambiguator that narrows them to one.
	ErrAmbiguousIntent = errors.New("ambiguous move intent")

	// ErrGameTerminated rejects any move after checkmate or stalemate.
	ErrGameTerminated = errors.New("game already terminated")

	// ErrPlyOutOfRange rejects a rewind index beyond the recorded history.
	ErrPlyOutOfRange = errors.New("ply index out of range")
)
