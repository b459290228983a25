package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe-ai/internal/domain"
	"github.com/jaminalder/tictactoe-ai/internal/engine"
	"github.com/jaminalder/tictactoe-ai/internal/logging"
	"github.com/jaminalder/tictactoe-ai/internal/metrics"
)

// Errors exposed by the service layer.
var (
	ErrNotFound   = errors.New("game not found")
	ErrNotAPlayer = errors.New("not a player")
	ErrConflict   = errors.New("game changed during ai move")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    domain.Game
	Player  string
	LastAI  int
	Created time.Time
	Updated time.Time
}

type subscriber struct {
	ch        chan GameState
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
		close(s.done)
	})
}

// Options configures a Service.
type Options struct {
	// AIFirst makes the engine play the opening move of every new game.
	AIFirst bool
}

// Service manages games against the engine and their subscribers.
type Service struct {
	mu    sync.Mutex
	opts  Options
	games map[string]*GameState
	subs  map[string]map[*subscriber]struct{}

	// think commits the engine's move; it runs without s.mu held.
	think func(*domain.Game) (engine.Result, error)
}

// NewService creates an empty service.
func NewService(opts Options) *Service {
	return &Service{
		opts:  opts,
		games: make(map[string]*GameState),
		subs:  make(map[string]map[*subscriber]struct{}),
		think: (*domain.Game).PlayAI,
	}
}

// CreateGame creates and registers a new game. playerID, when set, takes the
// human seat immediately.
func (s *Service) CreateGame(playerID string) (*GameState, error) {
	first := engine.Human
	if s.opts.AIFirst {
		first = engine.AI
	}
	now := time.Now()
	gs := &GameState{
		ID:      uuid.NewString(),
		Game:    domain.New(first),
		Player:  playerID,
		LastAI:  -1,
		Created: now,
		Updated: now,
	}
	if first == engine.AI {
		res, err := s.aiMove(gs.ID, &gs.Game)
		if err != nil {
			return nil, err
		}
		gs.LastAI = res.Move
	}

	s.mu.Lock()
	s.games[gs.ID] = gs
	cp := *gs
	s.mu.Unlock()

	metrics.GamesCreated.Inc()
	logging.Info().Str("game", gs.ID).Bool("ai_first", s.opts.AIFirst).Msg("game created")
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Join gives playerID the human seat if it is free. It reports whether the
// player holds the seat afterwards; everyone else spectates.
func (s *Service) Join(id, playerID string) (bool, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return false, nil, ErrNotFound
	}
	if gs.Player == "" {
		gs.Player = playerID
		gs.Updated = time.Now()
	}
	cp := *gs
	return gs.Player == playerID, &cp, nil
}

// Play applies the human move at pos and, unless the game ended, the engine's
// reply. The search runs on a copy of the game with s.mu released, so other
// games are not held up; the seat stays locked meanwhile because the game's
// turn is the AI's. Subscribers receive the resulting state.
func (s *Service) Play(id, playerID string, pos int) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Player != playerID {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if err := gs.Game.Play(pos); err != nil {
		s.mu.Unlock()
		metrics.InvalidMoves.WithLabelValues(reason(err)).Inc()
		logging.Debug().Str("game", id).Int("pos", pos).Err(err).Msg("move rejected")
		return nil, err
	}
	metrics.MovesPlayed.WithLabelValues("human").Inc()
	logging.Debug().Str("game", id).Int("pos", pos).Msg("human moved")
	gs.Updated = time.Now()

	if !gs.Game.Over {
		g := gs.Game
		s.mu.Unlock()
		res, err := s.aiMove(id, &g)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if cur, ok := s.games[id]; !ok || cur != gs || gs.Game.Moves != g.Moves-1 {
			s.mu.Unlock()
			return nil, fmt.Errorf("game %s: %w", id, ErrConflict)
		}
		gs.Game = g
		gs.LastAI = res.Move
	}
	if gs.Game.Over {
		finish(gs)
	}
	gs.Updated = time.Now()

	cp := *gs
	s.broadcastLocked(id, cp)
	s.mu.Unlock()
	return &cp, nil
}

// aiMove runs the engine on g, which the caller owns exclusively.
func (s *Service) aiMove(id string, g *domain.Game) (engine.Result, error) {
	start := time.Now()
	res, err := s.think(g)
	if err != nil {
		logging.Error().Str("game", id).Err(err).Msg("ai move failed")
		return res, fmt.Errorf("game %s: %w", id, err)
	}
	elapsed := time.Since(start)
	metrics.RecordSearch(elapsed, res.Nodes)
	logging.Info().
		Str("game", id).
		Int("move", res.Move).
		Int("score", res.Score).
		Int("nodes", res.Nodes).
		Dur("elapsed", elapsed).
		Msg("ai moved")
	return res, nil
}

func finish(gs *GameState) {
	outcome := "draw"
	switch gs.Game.Winner {
	case engine.Human:
		outcome = "human"
	case engine.AI:
		outcome = "ai"
	}
	metrics.GamesFinished.WithLabelValues(outcome).Inc()
	logging.Info().Str("game", gs.ID).Str("outcome", outcome).Int("moves", gs.Game.Moves).Msg("game finished")
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrOccupied):
		return "occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "game_over"
	case errors.Is(err, domain.ErrNotYourTurn):
		return "not_your_turn"
	default:
		return "other"
	}
}

// broadcastLocked fans out without blocking; slow subscribers are closed
// and dropped. Sends and closes both happen under s.mu.
func (s *Service) broadcastLocked(id string, gs GameState) {
	dropped := 0
	for sub := range s.subs[id] {
		select {
		case sub.ch <- gs:
		default:
			delete(s.subs[id], sub)
			sub.close()
			metrics.Subscribers.Dec()
			dropped++
		}
	}
	if dropped > 0 {
		logging.Warn().Str("game", id).Int("dropped", dropped).Msg("dropped slow subscribers")
	}
}

// Subscribe registers a subscriber for a game. The channel closes when ctx is
// done, the returned func is called, or the subscriber falls behind. A watcher
// goroutine lives until one of those happens, so callers with a long-lived
// ctx must call the returned func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, func() {}, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, 1), done: make(chan struct{})}
	set[sub] = struct{}{}
	metrics.Subscribers.Inc()

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, present := s.subs[id][sub]; present {
				delete(s.subs[id], sub)
				metrics.Subscribers.Dec()
			}
			sub.close()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-sub.done:
		}
	}()
	return sub.ch, unsub, nil
}
