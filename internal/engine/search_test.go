package engine

import (
	"errors"
	"math"
	"testing"
)

// plainMinimax is minimax without pruning, counting visited nodes.
func plainMinimax(b *Board, aiTurn bool, nodes *int) int {
	*nodes++
	if CheckWinner(b, AI) {
		return ScoreWin
	}
	if CheckWinner(b, Human) {
		return ScoreLoss
	}
	if BoardIsFull(b) {
		return ScoreDraw
	}
	best := math.MaxInt
	sym := Human
	if aiTurn {
		best = math.MinInt
		sym = AI
	}
	for _, pos := range EmptyPositions(b) {
		b[pos] = sym
		score := plainMinimax(b, !aiTurn, nodes)
		b[pos] = Empty
		if aiTurn {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}
	return best
}

type position struct {
	board  Board
	aiTurn bool
}

// solver computes game-theoretic values with memoisation, independently of
// the search under test.
type solver map[position]int

func (s solver) value(b Board, aiTurn bool) int {
	key := position{b, aiTurn}
	if v, ok := s[key]; ok {
		return v
	}
	var v int
	switch {
	case CheckWinner(&b, AI):
		v = ScoreWin
	case CheckWinner(&b, Human):
		v = ScoreLoss
	case BoardIsFull(&b):
		v = ScoreDraw
	default:
		v = 2
		if aiTurn {
			v = -2
		}
		for i := range b {
			if b[i] != Empty {
				continue
			}
			child := b
			if aiTurn {
				child[i] = AI
				v = max(v, s.value(child, false))
			} else {
				child[i] = Human
				v = min(v, s.value(child, true))
			}
		}
	}
	s[key] = v
	return v
}

func isTerminal(b *Board) bool {
	return CheckWinner(b, AI) || CheckWinner(b, Human) || BoardIsFull(b)
}

// reachable collects every position reachable from the empty board when
// the given side moves first, stopping at terminal positions.
func reachable(aiFirst bool) map[position]struct{} {
	out := make(map[position]struct{})
	var walk func(b Board, aiTurn bool)
	walk = func(b Board, aiTurn bool) {
		key := position{b, aiTurn}
		if _, seen := out[key]; seen {
			return
		}
		out[key] = struct{}{}
		if isTerminal(&b) {
			return
		}
		sym := Human
		if aiTurn {
			sym = AI
		}
		for _, pos := range EmptyPositions(&b) {
			child := b
			child[pos] = sym
			walk(child, !aiTurn)
		}
	}
	walk(Board{}, aiFirst)
	return out
}

func TestReachableStateCount(t *testing.T) {
	for _, aiFirst := range []bool{false, true} {
		if n := len(reachable(aiFirst)); n != 5478 {
			t.Fatalf("aiFirst=%v: expected 5478 reachable positions, got %d", aiFirst, n)
		}
	}
}

func TestMinimaxOptimalAndMatchesPlainSearch(t *testing.T) {
	solve := solver{}
	for _, aiFirst := range []bool{false, true} {
		for p := range reachable(aiFirst) {
			b := p.board
			before := b

			got := Minimax(&b, p.aiTurn, math.MinInt, math.MaxInt)
			if b != before {
				t.Fatalf("board changed by search: before %v after %v", before, b)
			}
			if want := solve.value(p.board, p.aiTurn); got != want {
				t.Fatalf("position %v aiTurn=%v: got %d, game value %d", p.board, p.aiTurn, got, want)
			}

			var nodes int
			if plain := plainMinimax(&b, p.aiTurn, &nodes); plain != got {
				t.Fatalf("position %v aiTurn=%v: pruned %d, plain %d", p.board, p.aiTurn, got, plain)
			}
		}
	}
}

func TestAIMakeMoveLegalAndOptimal(t *testing.T) {
	solve := solver{}
	for _, aiFirst := range []bool{false, true} {
		for p := range reachable(aiFirst) {
			if !p.aiTurn || isTerminal(&p.board) {
				continue
			}
			b := p.board
			empty := EmptyPositions(&b)

			move, err := AIMakeMove(&b)
			if err != nil {
				t.Fatalf("position %v: unexpected error %v", p.board, err)
			}
			legal := false
			for _, e := range empty {
				legal = legal || e == move
			}
			if !legal {
				t.Fatalf("position %v: move %d not in %v", p.board, move, empty)
			}
			for i := range b {
				switch {
				case i == move:
					if b[i] != AI {
						t.Fatalf("position %v: cell %d not committed to AI", p.board, i)
					}
				case b[i] != p.board[i]:
					t.Fatalf("position %v: cell %d changed unexpectedly", p.board, i)
				}
			}

			// The chosen move reaches the position's value, and no lower
			// index does.
			want := solve.value(p.board, true)
			if got := solve.value(b, false); got != want {
				t.Fatalf("position %v: move %d scores %d, best is %d", p.board, move, got, want)
			}
			for _, e := range empty {
				if e >= move {
					break
				}
				child := p.board
				child[e] = AI
				if solve.value(child, false) == want {
					t.Fatalf("position %v: lower index %d also scores %d, picked %d", p.board, e, want, move)
				}
			}
		}
	}
}

func TestPruningVisitsFewerNodes(t *testing.T) {
	var b Board
	res, err := Search(&b)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	var plain int
	for _, pos := range EmptyPositions(&b) {
		b[pos] = AI
		plainMinimax(&b, false, &plain)
		b[pos] = Empty
	}
	if res.Nodes <= 0 || res.Nodes >= plain {
		t.Fatalf("expected pruned node count in (0, %d), got %d", plain, res.Nodes)
	}
}

func TestAIMakeMoveScenarios(t *testing.T) {
	cases := []struct {
		name  string
		board string
		want  int
	}{
		{"empty board takes first cell", "_________", 0},
		{"completes own row", "XX_OO____", 2},
		{"takes the blocking cell", "OO_XX____", 2},
		{"blocks column ahead of lower cells", "____XO__O", 2},
		{"wins on diagonal", "X_O_XO___", 8},
	}
	for _, tc := range cases {
		b := parse(t, tc.board)
		got, err := AIMakeMove(&b)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected move %d, got %d", tc.name, tc.want, got)
		}
		if b[got] != AI {
			t.Fatalf("%s: move %d not committed", tc.name, got)
		}
	}
}

func TestBlockingScores(t *testing.T) {
	// Human threatens 2-5-8; blocking holds the draw, anything else loses.
	b := parse(t, "____XO__O")
	for _, pos := range EmptyPositions(&b) {
		b[pos] = AI
		score := Minimax(&b, false, math.MinInt, math.MaxInt)
		b[pos] = Empty
		want := ScoreLoss
		if pos == 2 {
			want = ScoreDraw
		}
		if score != want {
			t.Fatalf("move %d: expected score %d, got %d", pos, want, score)
		}
	}

	// Not blocking the human's top row lets the human win next turn.
	b = parse(t, "OO_XX__X_")
	if got := Minimax(&b, false, math.MinInt, math.MaxInt); got != ScoreLoss {
		t.Fatalf("expected loss after ignoring the threat, got %d", got)
	}
}

func TestTerminalScoreOrder(t *testing.T) {
	// Both sides complete a line; the AI check runs first.
	b := parse(t, "XXXOOO___")
	if got := Minimax(&b, false, math.MinInt, math.MaxInt); got != ScoreWin {
		t.Fatalf("expected AI win to take priority, got %d", got)
	}
	b = parse(t, "XOXXOOOXX")
	if got := Minimax(&b, true, math.MinInt, math.MaxInt); got != ScoreDraw {
		t.Fatalf("expected draw on full board, got %d", got)
	}
}

func TestAIMakeMoveFullBoard(t *testing.T) {
	b := parse(t, "XOXXOOOXX")
	before := b
	move, err := AIMakeMove(&b)
	if !errors.Is(err, ErrNoMoves) {
		t.Fatalf("expected ErrNoMoves, got %v", err)
	}
	if move != -1 {
		t.Fatalf("expected -1 on error, got %d", move)
	}
	if b != before {
		t.Fatalf("board changed on failed move")
	}
}

func TestCommitMatchesSearchAndAIMakeMove(t *testing.T) {
	for key := range reachable(true) {
		if !key.aiTurn || isTerminal(&key.board) {
			continue
		}
		want, err := Search(&key.board)
		if err != nil {
			t.Fatalf("search failed:\n%v", key.board)
		}

		committed := key.board
		res, err := Commit(&committed)
		if err != nil {
			t.Fatalf("commit failed: %v", err)
		}
		if res != want {
			t.Fatalf("commit result %+v differs from search %+v", res, want)
		}
		expected := key.board
		expected[want.Move] = AI
		if committed != expected {
			t.Fatalf("commit left wrong board:\n%v", committed)
		}

		viaMakeMove := key.board
		move, err := AIMakeMove(&viaMakeMove)
		if err != nil || move != res.Move || viaMakeMove != committed {
			t.Fatalf("AIMakeMove diverged: move=%d err=%v board:\n%v", move, err, viaMakeMove)
		}
	}
}

func TestCommitFullBoard(t *testing.T) {
	b := parse(t, "XOXXOOOXX")
	before := b
	res, err := Commit(&b)
	if !errors.Is(err, ErrNoMoves) {
		t.Fatalf("expected ErrNoMoves, got %v", err)
	}
	if res.Move != -1 || b != before {
		t.Fatalf("expected untouched board and move -1, got %d", res.Move)
	}
}
