// Package cli runs an interactive game on a terminal.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jaminalder/tictactoe-ai/internal/domain"
	"github.com/jaminalder/tictactoe-ai/internal/engine"
	"github.com/jaminalder/tictactoe-ai/internal/logging"
	"github.com/muesli/termenv"
)

const legend = `0 | 1 | 2
--+---+--
3 | 4 | 5
--+---+--
6 | 7 | 8
`

// Player drives one game over a line-oriented terminal.
type Player struct {
	in  *bufio.Scanner
	out *termenv.Output
}

// NewPlayer reads moves from in and writes the board to out. Colours are
// used only when out is a terminal that supports them.
func NewPlayer(in io.Reader, out io.Writer) *Player {
	return &Player{in: bufio.NewScanner(in), out: termenv.NewOutput(out)}
}

// Run plays a full game and returns its final state. It stops early with
// io.ErrUnexpectedEOF if input ends before the game is over.
func (p *Player) Run(first engine.Symbol) (domain.Game, error) {
	g := domain.New(first)
	p.printf("Welcome to Tic-Tac-Toe!\n")
	p.printf("You are O, the AI is X.\n")
	p.printf("Positions are numbered 0 to 8 as follows:\n")
	p.printf("%s\n", legend)
	p.display(&g.Board)

	for !g.Over {
		if g.Turn == engine.AI {
			res, err := g.PlayAI()
			if err != nil {
				return g, err
			}
			logging.Debug().Int("move", res.Move).Int("score", res.Score).Int("nodes", res.Nodes).Msg("ai moved")
			p.printf("\nAI chooses position %d.\n\n", res.Move)
			p.display(&g.Board)
			continue
		}

		p.printf("\nEnter your move (0-8): ")
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return g, fmt.Errorf("read move: %w", err)
			}
			return g, io.ErrUnexpectedEOF
		}
		pos, err := domain.ParseMove(p.in.Text())
		if err == nil {
			err = g.Play(pos)
		}
		switch {
		case errors.Is(err, domain.ErrNotANumber):
			p.printf("Invalid input. Please enter a number from 0 to 8.\n")
			continue
		case err != nil:
			p.printf("Invalid move. Try again.\n")
			continue
		}
		p.display(&g.Board)
	}

	p.printf("\n%s\n", p.result(&g))
	return g, nil
}

func (p *Player) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Player) display(b *engine.Board) {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		cells := make([]string, 3)
		for c := range cells {
			cells[c] = p.mark(b[r*3+c])
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteByte('\n')
		if r < 2 {
			sb.WriteString("--+---+--\n")
		}
	}
	p.printf("%s", sb.String())
}

func (p *Player) mark(s engine.Symbol) string {
	switch s {
	case engine.Human:
		return p.out.String(s.String()).Foreground(p.out.Color("4")).Bold().String()
	case engine.AI:
		return p.out.String(s.String()).Foreground(p.out.Color("1")).Bold().String()
	default:
		return s.String()
	}
}

func (p *Player) result(g *domain.Game) string {
	switch g.Winner {
	case engine.Human:
		return p.out.String(g.Status()).Foreground(p.out.Color("2")).String()
	case engine.AI:
		return p.out.String(g.Status()).Foreground(p.out.Color("1")).String()
	default:
		return g.Status()
	}
}
