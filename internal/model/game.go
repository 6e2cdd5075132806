package model

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/pkg/errors"

	"github.com/chesskeep/backend/internal/board"
	"github.com/chesskeep/backend/internal/ws"
)

// GameConnections holds the websocket connections observing one game.
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
}

// Game serializes access to a single board engine and its observers. The
// engine itself performs no locking; every mutating call funnels through
// g.mu, which satisfies the engine's single-writer requirement.
type Game struct {
	ID          string
	mu          sync.Mutex
	engine      *board.Engine
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
	players     Players
	captured    CapturedPieces
	lastMove    *WireMove
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// GameState is the JSON view broadcast to clients after every change.
type GameState struct {
	FEN             string         `json:"fen"`
	ToMove          board.Color    `json:"toMove"`
	Status          board.Status   `json:"status"`
	MoveHistory     []HistoryView  `json:"moveHistory"`
	CapturedPieces  CapturedPieces `json:"capturedPieces"`
	EnPassantTarget *string        `json:"enPassantTarget"`
	Players         Players        `json:"players"`
	LastMove        *WireMove      `json:"lastMove"`
}

// HistoryView is one applied ply as clients see it.
type HistoryView struct {
	Ply int    `json:"ply"`
	SAN string `json:"san"`
	FEN string `json:"fen"`
}

type CapturedPieces struct {
	White []board.Piece `json:"white"`
	Black []board.Piece `json:"black"`
}

func NewGame(id string) *Game {
	engine, err := board.NewEngine()
	if err != nil {
		// The default starting position always validates.
		panic(err)
	}
	return &Game{
		ID:          id,
		engine:      engine,
		connections: NewGameConnections(),
		whiteClock:  NewClock(time.Duration(600) * time.Second),
		blackClock:  NewClock(time.Duration(600) * time.Second),
		captured:    newCapturedPieces(),
	}
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

func newCapturedPieces() CapturedPieces {
	return CapturedPieces{
		White: make([]board.Piece, 0),
		Black: make([]board.Piece, 0),
	}
}

func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.players.White.ID == "" {
		g.players.White = ClientPlayer{
			ID:       playerID,
			Color:    PlayerColorWhite,
			TimeLeft: 6000,
		}
		return PlayerColorWhite, nil
	}
	if g.players.Black.ID == "" {
		g.players.Black = ClientPlayer{
			ID:       playerID,
			Color:    PlayerColorBlack,
			TimeLeft: 6000,
		}
		return PlayerColorBlack, nil
	}
	return "", errors.New("game is full")
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateView()
}

// stateView builds the client snapshot. Callers hold g.mu.
func (g *Game) stateView() GameState {
	history := g.engine.History()
	views := make([]HistoryView, len(history))
	for i, entry := range history {
		views[i] = HistoryView{Ply: i + 1, SAN: entry.Move.SAN(), FEN: entry.FEN}
	}
	var ep *string
	if sq := g.engine.Position().EnPassantTarget(); sq != nil {
		s := sq.String()
		ep = &s
	}
	return GameState{
		FEN:             g.engine.ExportFEN(board.FENOptions{}),
		ToMove:          g.engine.Position().SideToMove(),
		Status:          g.engine.Status(),
		MoveHistory:     views,
		CapturedPieces:  g.captured,
		EnPassantTarget: ep,
		Players:         g.players,
		LastMove:        g.lastMove,
	}
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	if g.players.White.ID != "" && g.players.White.ID == playerID {
		return true
	}
	if g.players.Black.ID != "" && g.players.Black.ID == playerID {
		return true
	}
	return false
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.players.White.ID == "" || g.players.Black.ID == ""
}

// playerColor maps a player ID to the side they control.
func (g *Game) playerColor(playerID string) (board.Color, bool) {
	switch playerID {
	case "":
		return "", false
	case g.players.White.ID:
		return board.White, true
	case g.players.Black.ID:
		return board.Black, true
	}
	return "", false
}

// MakeMove applies a wire move on behalf of playerID. The engine guarantees
// all-or-nothing semantics, so a rejected move leaves the game untouched.
func (g *Game) MakeMove(playerID string, mv WireMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.playerColor(playerID)
	if !ok {
		return errors.New("player not in game")
	}
	if color != g.engine.Position().SideToMove() {
		return errors.New("not your turn")
	}

	intent, err := mv.Intent()
	if err != nil {
		return err
	}
	resolved, err := g.engine.Apply(intent)
	if err != nil {
		return err
	}

	if resolved.Captured != nil {
		// Captured lists are keyed by the capturing side.
		if color == board.White {
			g.captured.White = append(g.captured.White, *resolved.Captured)
		} else {
			g.captured.Black = append(g.captured.Black, *resolved.Captured)
		}
	}
	g.lastMove = &mv

	// Hand the clock to the opponent.
	if color == board.White {
		g.whiteClock.Stop()
		g.blackClock.Start()
	} else {
		g.blackClock.Stop()
		g.whiteClock.Start()
	}
	g.players.White.TimeLeft = int(g.whiteClock.GetTimeLeft().Milliseconds() / 100)
	g.players.Black.TimeLeft = int(g.blackClock.GetTimeLeft().Milliseconds() / 100)

	go g.broadcastState()
	return nil
}

// Rewind truncates the game back to ply n and restores the snapshot taken at
// that point.
func (g *Game) Rewind(ply int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.engine.Rewind(ply); err != nil {
		return err
	}
	g.captured = g.rebuildCaptured()
	g.lastMove = nil

	go g.broadcastState()
	return nil
}

// rebuildCaptured replays the surviving history's capture records. Callers
// hold g.mu.
func (g *Game) rebuildCaptured() CapturedPieces {
	captured := newCapturedPieces()
	for _, entry := range g.engine.History() {
		if entry.Move.Captured == nil {
			continue
		}
		if entry.Move.Piece.Color == board.White {
			captured.White = append(captured.White, *entry.Move.Captured)
		} else {
			captured.Black = append(captured.Black, *entry.Move.Captured)
		}
	}
	return captured
}

// LoadPosition replaces the game's position with the given FEN, discarding
// history and captures. A rejected description leaves the game untouched.
func (g *Game) LoadPosition(fen string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	engine, err := board.NewEngine(board.WithFEN(fen))
	if err != nil {
		return err
	}
	g.engine = engine
	g.captured = newCapturedPieces()
	g.lastMove = nil

	go g.broadcastState()
	return nil
}

// ExportFEN serializes the current position.
func (g *Game) ExportFEN(opts board.FENOptions) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.engine.ExportFEN(opts)
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return errors.New("not authorized to join this game")
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the healthy connection and reject the duplicate.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	go g.broadcastState()
	return nil
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	delete(g.connections.connections, playerID)
}

func (g *Game) broadcastState() {
	state := g.GetState()

	payload, err := json.Marshal(state)
	if err != nil {
		log.Printf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.RLock()
	activeConnections := make(map[string]*websocket.Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(payload),
		}); err != nil {
			log.Printf("game %s: send state to %s: %v", g.ID, playerID, err)
			g.connections.mu.Lock()
			delete(g.connections.connections, playerID)
			g.connections.mu.Unlock()
		}
	}
}
