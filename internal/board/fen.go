package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// DefaultStartingFEN is the standard initial position.
const DefaultStartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FENOptions configures Export. Callers pass it explicitly; there is no
// package-level default to mutate.
type FENOptions struct {
	// OmitCounters drops the half-move clock and full-move number segments,
	// producing the four-segment form display surfaces often want.
	OmitCounters bool
}

// ParseFEN loads a position from Forsyth-Edwards Notation. The placement is
// validated before the position is accepted: every violation found is
// collected, and the combined error wraps ErrMalformedPosition.
func ParseFEN(fen string) (*Position, error) {
	segments := strings.Fields(fen)
	if len(segments) != 4 && len(segments) != 6 {
		return nil, errors.Wrapf(ErrMalformedPosition, "expected 4 or 6 segments, got %d", len(segments))
	}

	pos := &Position{fullMoveNumber: 1}
	var errs error

	rows := strings.Split(segments[0], "/")
	if len(rows) != 8 {
		return nil, errors.Wrapf(ErrMalformedPosition, "expected 8 ranks, got %d", len(rows))
	}
	kings := map[Color]int{}
	for i, row := range rows {
		rank := 8 - i
		file := 1
		for j := 0; j < len(row); j++ {
			if file > 8 {
				errs = multierror.Append(errs, errors.Errorf("rank %d overflows the board", rank))
				break
			}
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pt, color, ok := pieceTypeFromFEN(c)
			if !ok {
				errs = multierror.Append(errs, errors.Errorf("unknown symbol %q on rank %d", string(c), rank))
				file++
				continue
			}
			if pt == Pawn && (rank == 1 || rank == 8) {
				errs = multierror.Append(errs, errors.Errorf("pawn on back rank %s", Square{File: file, Rank: rank}))
			}
			if pt == King {
				kings[color]++
			}
			pos.place(&Piece{Type: pt, Color: color}, Square{File: file, Rank: rank})
			file++
		}
		if file != 9 {
			errs = multierror.Append(errs, errors.Errorf("rank %d describes %d files", rank, file-1))
		}
	}
	for _, color := range []Color{White, Black} {
		if n := kings[color]; n != 1 {
			errs = multierror.Append(errs, errors.Errorf("%s has %d kings, want exactly 1", color, n))
		}
	}

	switch segments[1] {
	case "w":
		pos.sideToMove = White
	case "b":
		pos.sideToMove = Black
	default:
		errs = multierror.Append(errs, errors.Errorf("invalid side to move %q", segments[1]))
	}

	if segments[2] != "-" {
		for _, r := range segments[2] {
			switch r {
			case 'K':
				pos.castling.WhiteKingSide = true
			case 'Q':
				pos.castling.WhiteQueenSide = true
			case 'k':
				pos.castling.BlackKingSide = true
			case 'q':
				pos.castling.BlackQueenSide = true
			default:
				errs = multierror.Append(errs, errors.Errorf("invalid castling rights %q", segments[2]))
			}
		}
	}

	if segments[3] != "-" {
		sq, err := ParseSquare(segments[3])
		if err != nil {
			errs = multierror.Append(errs, errors.Errorf("invalid en-passant target %q", segments[3]))
		} else if sq.Rank != 3 && sq.Rank != 6 {
			errs = multierror.Append(errs, errors.Errorf("en-passant target %s is not on rank 3 or 6", sq))
		} else {
			pos.enPassantTarget = &sq
		}
	}

	if len(segments) == 6 {
		half, err := strconv.Atoi(segments[4])
		if err != nil || half < 0 {
			errs = multierror.Append(errs, errors.Errorf("invalid half-move clock %q", segments[4]))
		} else {
			pos.halfMoveClock = half
		}
		full, err := strconv.Atoi(segments[5])
		if err != nil || full < 1 {
			errs = multierror.Append(errs, errors.Errorf("invalid full-move number %q", segments[5]))
		} else {
			pos.fullMoveNumber = full
		}
	}

	if errs != nil {
		return nil, errors.Wrap(ErrMalformedPosition, errs.Error())
	}
	return pos, nil
}

// FEN serializes the position back to the textual form ParseFEN accepts.
// Export(Load(x)) round-trips for any valid six-segment x.
func (p *Position) FEN(opts FENOptions) string {
	var b strings.Builder
	for rank := 8; rank >= 1; rank-- {
		empty := 0
		for file := 1; file <= 8; file++ {
			pc := p.board[rank-1][file-1]
			if pc == nil {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteByte(pc.Type.fenSymbol(pc.Color))
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if rank > 1 {
			b.WriteByte('/')
		}
	}

	if p.sideToMove == Black {
		b.WriteString(" b ")
	} else {
		b.WriteString(" w ")
	}

	if p.castling == (CastlingRights{}) {
		b.WriteByte('-')
	} else {
		if p.castling.WhiteKingSide {
			b.WriteByte('K')
		}
		if p.castling.WhiteQueenSide {
			b.WriteByte('Q')
		}
		if p.castling.BlackKingSide {
			b.WriteByte('k')
		}
		if p.castling.BlackQueenSide {
			b.WriteByte('q')
		}
	}
	b.WriteByte(' ')

	if p.enPassantTarget == nil {
		b.WriteByte('-')
	} else {
		b.WriteString(p.enPassantTarget.String())
	}

	if !opts.OmitCounters {
		b.WriteString(fmt.Sprintf(" %d %d", p.halfMoveClock, p.fullMoveNumber))
	}

	return b.String()
}
