package model

import (
	"github.com/chesskeep/backend/internal/board"
)

// WireMove is the move payload clients send: algebraic from/to squares plus
// an optional promotion piece ("q", "r", "b", "n").
type WireMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// Intent translates the wire form into the engine's move intent.
func (m WireMove) Intent() (board.MoveIntent, error) {
	return board.ParseUCIIntent(m.From + m.To + m.Promotion)
}
