package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/tictactoe-ai/internal/app"
	"github.com/jaminalder/tictactoe-ai/internal/engine"
	"github.com/jaminalder/tictactoe-ai/internal/logging"
)

var wsIdlePingInterval = 30 * time.Second

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// boardPayload is the JSON snapshot streamed to WebSocket clients.
type boardPayload struct {
	ID     string    `json:"id"`
	Board  [9]string `json:"board"`
	Turn   string    `json:"turn"`
	Over   bool      `json:"over"`
	Winner string    `json:"winner"`
	Status string    `json:"status"`
	LastAI int       `json:"last_ai"`
	Moves  int       `json:"moves"`
}

func newBoardPayload(gs app.GameState) boardPayload {
	p := boardPayload{
		ID:     gs.ID,
		Turn:   symbolName(gs.Game.Turn),
		Over:   gs.Game.Over,
		Status: gs.Game.Status(),
		LastAI: gs.LastAI,
		Moves:  gs.Game.Moves,
	}
	if gs.Game.Over {
		p.Winner = symbolName(gs.Game.Winner)
	}
	for i, c := range gs.Game.Board {
		if c != engine.Empty {
			p.Board[i] = c.String()
		}
	}
	return p
}

func symbolName(s engine.Symbol) string {
	switch s {
	case engine.Human:
		return "human"
	case engine.AI:
		return "ai"
	default:
		return ""
	}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func boardMessage(gs app.GameState) []byte {
	return mustMarshal(wsMessage{Type: "board", Payload: mustMarshal(newBoardPayload(gs))})
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ws streams board snapshots for a game. The current state is sent on connect.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Debug().Err(err).Str("game", id).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()

	// The read loop only detects the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteMessage(websocket.TextMessage, boardMessage(*gs)); err != nil {
		return
	}
	if err := writeWSWithHeartbeat(conn, ch, closed); err != nil {
		logging.Debug().Err(err).Str("game", id).Msg("websocket write")
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, updates <-chan app.GameState, closed <-chan struct{}) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case <-closed:
			return nil
		case gs, ok := <-updates:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, boardMessage(gs)); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
