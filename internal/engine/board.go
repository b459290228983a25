// Package engine implements perfect-play move selection for 3x3 tic-tac-toe
// using minimax search with alpha-beta pruning.
package engine

import "strings"

// Symbol represents the state of a board cell.
type Symbol uint8

const (
	Empty Symbol = iota
	Human
	AI
)

// String returns the letter used for the symbol on screen.
func (s Symbol) String() string {
	switch s {
	case Human:
		return "O"
	case AI:
		return "X"
	default:
		return " "
	}
}

// Board is a fixed 3x3 board stored row-major (index = row*3 + col).
type Board [9]Symbol

// Lines holds the eight winning combinations: rows, columns, diagonals.
var Lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// CheckWinner reports whether any line is fully occupied by symbol.
func CheckWinner(b *Board, symbol Symbol) bool {
	for _, ln := range Lines {
		if b[ln[0]] == symbol && b[ln[1]] == symbol && b[ln[2]] == symbol {
			return true
		}
	}
	return false
}

// BoardIsFull reports whether no cell is empty.
func BoardIsFull(b *Board) bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// EmptyPositions returns the indices of empty cells in ascending order.
func EmptyPositions(b *Board) []int {
	out := make([]int, 0, len(b))
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// String renders the board as three rows separated by "--+---+--".
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if c > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(b[r*3+c].String())
		}
		sb.WriteByte('\n')
		if r < 2 {
			sb.WriteString("--+---+--\n")
		}
	}
	return sb.String()
}
