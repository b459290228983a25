package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jaminalder/tictactoe-ai/internal/engine"
)

// Game holds the current state of a match between a human and the engine.
type Game struct {
	Board  engine.Board
	Turn   engine.Symbol
	Winner engine.Symbol
	Over   bool
	Moves  int
}

// Errors returned by domain operations.
var (
	ErrNotANumber  = errors.New("not a number")
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
	ErrNotYourTurn = errors.New("not your turn")
)

// New returns an empty game with first to move. Anything other than
// engine.AI starts with the human.
func New(first engine.Symbol) Game {
	if first != engine.AI {
		first = engine.Human
	}
	return Game{Turn: first}
}

// ParseMove converts typed input into a board index 0..8.
func ParseMove(input string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return -1, fmt.Errorf("%w: %q", ErrNotANumber, input)
	}
	if pos < 0 || pos > 8 {
		return -1, ErrOutOfBounds
	}
	return pos, nil
}

// Play applies the human's move at pos. State is left untouched on error.
func (g *Game) Play(pos int) error {
	if g.Over {
		return ErrGameOver
	}
	if g.Turn != engine.Human {
		return ErrNotYourTurn
	}
	if pos < 0 || pos > 8 {
		return ErrOutOfBounds
	}
	if g.Board[pos] != engine.Empty {
		return ErrOccupied
	}

	g.Board[pos] = engine.Human
	g.Moves++
	g.settle(engine.Human)
	return nil
}

// PlayAI lets the engine choose and commit its move.
func (g *Game) PlayAI() (engine.Result, error) {
	if g.Over {
		return engine.Result{Move: -1}, ErrGameOver
	}
	if g.Turn != engine.AI {
		return engine.Result{Move: -1}, ErrNotYourTurn
	}
	res, err := engine.Commit(&g.Board)
	if err != nil {
		return res, fmt.Errorf("ai move: %w", err)
	}
	g.Moves++
	g.settle(engine.AI)
	return res, nil
}

// settle runs the terminal checks after mover placed a mark and flips the turn.
func (g *Game) settle(mover engine.Symbol) {
	if engine.CheckWinner(&g.Board, mover) {
		g.Winner = mover
		g.Over = true
		return
	}
	if engine.BoardIsFull(&g.Board) {
		g.Winner = engine.Empty
		g.Over = true
		return
	}
	if mover == engine.Human {
		g.Turn = engine.AI
	} else {
		g.Turn = engine.Human
	}
}

// Status describes the game in the words shown to the player.
func (g *Game) Status() string {
	switch {
	case !g.Over && g.Turn == engine.Human:
		return "Your move"
	case !g.Over:
		return "AI is thinking"
	case g.Winner == engine.Human:
		return "Congratulations! You win!"
	case g.Winner == engine.AI:
		return "AI wins! Better luck next time."
	default:
		return "It's a draw!"
	}
}
