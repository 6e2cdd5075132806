package model

import (
	"github.com/gofiber/websocket/v2"
)

type Player struct {
	ID       string
	Color    PlayerColor
	Conn     *websocket.Conn
	TimeLeft int
}

// ClientPlayer is the seat description sent to clients.
type ClientPlayer struct {
	ID       string      `json:"name"`
	Color    PlayerColor `json:"color"`
	TimeLeft int         `json:"timeLeft"`
}

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)
