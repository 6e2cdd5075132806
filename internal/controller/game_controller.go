package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/chesskeep/backend/internal/board"
	"github.com/chesskeep/backend/internal/service"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusForError maps the engine's error taxonomy onto HTTP statuses. Input
// errors and legality violations are the client's fault; everything else is
// ours.
func statusForError(err error) int {
	switch {
	case errors.Is(err, board.ErrMalformedPosition),
		errors.Is(err, board.ErrNoPieceAtOrigin),
		errors.Is(err, board.ErrIllegalDestination),
		errors.Is(err, board.ErrAmbiguousIntent),
		errors.Is(err, board.ErrPlyOutOfRange):
		return fiber.StatusBadRequest
	case errors.Is(err, board.ErrGameTerminated):
		return fiber.StatusConflict
	case err.Error() == "game not found":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var body struct {
		FEN string `json:"fen"`
	}
	// The body is optional; an empty one means the standard starting
	// position.
	_ = c.BodyParser(&body)

	gameID, err := gc.gameService.CreateGame(body.FEN)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(gameState)
}

// Rewind restores the game to the snapshot after the given ply and truncates
// the history beyond it.
func (gc *GameController) Rewind(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	var body struct {
		Ply int `json:"ply"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid rewind request",
		})
	}

	if err := gc.gameService.Rewind(gameID, body.Ply); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Rewound",
		"ply":     body.Ply,
	})
}

// LoadPosition replaces the game's position with the FEN in the body.
func (gc *GameController) LoadPosition(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	var body struct {
		FEN string `json:"fen"`
	}
	if err := c.BodyParser(&body); err != nil || body.FEN == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "fen is required",
		})
	}

	if err := gc.gameService.LoadPosition(gameID, body.FEN); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Position loaded",
	})
}

// ExportFEN serializes the current position. ?counters=false drops the move
// counters from the output.
func (gc *GameController) ExportFEN(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	opts := board.FENOptions{
		OmitCounters: c.Query("counters") == "false",
	}

	fen, err := gc.gameService.ExportFEN(gameID, opts)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"fen": fen,
	})
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to join matchmaking",
		})
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}
