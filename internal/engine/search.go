package engine

import (
	"errors"
	"math"
)

// Scores from the AI's point of view. Depth does not affect them: a win in
// one move is worth the same as a win in five.
const (
	ScoreLoss = -1
	ScoreDraw = 0
	ScoreWin  = 1
)

// ErrNoMoves is returned when move selection is asked for on a full board.
var ErrNoMoves = errors.New("no empty cells")

// Result describes the outcome of a root search.
type Result struct {
	Move  int
	Score int
	Nodes int
}

type searcher struct {
	nodes int
}

// Minimax scores b with alpha-beta pruning. aiTurn selects the side to move.
// The board is mutated during the search and restored before returning.
func Minimax(b *Board, aiTurn bool, alpha, beta int) int {
	var s searcher
	return s.minimax(b, aiTurn, alpha, beta)
}

func (s *searcher) minimax(b *Board, aiTurn bool, alpha, beta int) int {
	s.nodes++
	if CheckWinner(b, AI) {
		return ScoreWin
	}
	if CheckWinner(b, Human) {
		return ScoreLoss
	}
	if BoardIsFull(b) {
		return ScoreDraw
	}

	if aiTurn {
		best := math.MinInt
		for _, pos := range EmptyPositions(b) {
			score := s.try(b, pos, AI, false, alpha, beta)
			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := math.MaxInt
	for _, pos := range EmptyPositions(b) {
		score := s.try(b, pos, Human, true, alpha, beta)
		best = min(best, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}
	return best
}

// try places sym at pos, scores the child position and undoes the move.
func (s *searcher) try(b *Board, pos int, sym Symbol, aiTurn bool, alpha, beta int) int {
	b[pos] = sym
	defer func() { b[pos] = Empty }()
	return s.minimax(b, aiTurn, alpha, beta)
}

// Search evaluates every empty cell for the AI and returns the first move
// with the highest score. The board is left unchanged.
func Search(b *Board) (Result, error) {
	var s searcher
	res := Result{Move: -1, Score: math.MinInt}
	for _, pos := range EmptyPositions(b) {
		score := s.try(b, pos, AI, false, math.MinInt, math.MaxInt)
		if score > res.Score {
			res.Score = score
			res.Move = pos
		}
	}
	if res.Move < 0 {
		return Result{Move: -1}, ErrNoMoves
	}
	res.Nodes = s.nodes
	return res, nil
}

// Commit runs Search and places the AI's mark on the chosen cell. On error
// the board is left unchanged.
func Commit(b *Board) (Result, error) {
	res, err := Search(b)
	if err != nil {
		return res, err
	}
	b[res.Move] = AI
	return res, nil
}

// AIMakeMove selects the best move for the AI, commits it to b and returns
// the chosen index.
func AIMakeMove(b *Board) (int, error) {
	res, err := Commit(b)
	return res.Move, err
}
