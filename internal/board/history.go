package board

// HistoryEntry pairs an applied move with the serialized position taken
// immediately after it. Rewinding reloads a snapshot instead of computing
// inverse moves.
type HistoryEntry struct {
	Move ResolvedMove `json:"move"`
	FEN  string       `json:"fen"`
}
