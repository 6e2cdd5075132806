package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/chesskeep/backend/internal/board"
)

var fen = flag.String("fen", board.DefaultStartingFEN, "starting position")

func main() {
	flag.Parse()

	engine, err := board.NewEngine(board.WithFEN(*fen))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("enter moves as e2e4 (e7e8q to promote); commands: fen, history, rewind <ply>, quit")
	draw(engine)

	scanner := bufio.NewScanner(os.Stdin)
	for prompt(engine); scanner.Scan(); prompt(engine) {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit":
			return
		case line == "fen":
			fmt.Println(engine.ExportFEN(board.FENOptions{}))
			continue
		case line == "history":
			for i, entry := range engine.History() {
				fmt.Printf("%3d. %s\n", i+1, entry.Move.SAN())
			}
			continue
		case strings.HasPrefix(line, "rewind "):
			ply, err := strconv.Atoi(strings.TrimPrefix(line, "rewind "))
			if err != nil {
				fmt.Println("rewind wants a ply number")
				continue
			}
			if err := engine.Rewind(ply); err != nil {
				fmt.Println(err)
				continue
			}
			draw(engine)
			continue
		}

		intent, err := board.ParseUCIIntent(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		resolved, err := engine.Apply(intent)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(resolved.SAN())
		draw(engine)

		if engine.Status().Terminal() {
			fmt.Printf("game over: %s\n", engine.Status())
			return
		}
	}
}

func prompt(engine *board.Engine) {
	status := ""
	if engine.Status() != board.StatusNone {
		status = fmt.Sprintf(" (%s)", engine.Status())
	}
	fmt.Printf("%s%s> ", engine.Position().SideToMove(), status)
}

var (
	whitePiece = color.New(color.FgHiWhite, color.Bold)
	blackPiece = color.New(color.FgHiBlack, color.Bold)
	boardFrame = color.New(color.FgCyan)
)

func draw(engine *board.Engine) {
	pos := engine.Position()
	for rank := 8; rank >= 1; rank-- {
		boardFrame.Printf("%d ", rank)
		for file := 1; file <= 8; file++ {
			pc := pos.PieceAt(board.Square{File: file, Rank: rank})
			if pc == nil {
				fmt.Print(". ")
				continue
			}
			symbol := pieceLetter(pc.Type)
			if pc.Color == board.White {
				whitePiece.Printf("%s ", strings.ToUpper(symbol))
			} else {
				blackPiece.Printf("%s ", symbol)
			}
		}
		fmt.Println()
	}
	boardFrame.Println("  a b c d e f g h")
}

func pieceLetter(pt board.PieceType) string {
	switch pt {
	case board.Knight:
		return "n"
	case board.King:
		return "k"
	default:
		return string(pt[0])
	}
}
