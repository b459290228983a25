package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe-ai/internal/app"
	"github.com/jaminalder/tictactoe-ai/internal/engine"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"iter": func(n int) []int {
			a := make([]int, n)
			for i := range a {
				a[i] = i
			}
			return a
		},
		"cellSymbol": func(c engine.Symbol) string {
			if c == engine.Empty {
				return ""
			}
			return c.String()
		},
		"add": func(a, b int) int { return a + b },
		"mul": func(a, b int) int { return a * b },
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1>
<p>You are O, the AI is X.</p>
<form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board-container" hx-sse="swap:board">{{template "board" .Board}}</div>
</div>`))
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.Bytes()
}

// boardData feeds boardTemplate.
type boardData struct {
	ID     string
	Board  engine.Board
	Status string
	Over   bool
	LastAI int
	Error  string
}

func newBoardData(gs app.GameState, errMsg string) boardData {
	return boardData{
		ID:     gs.ID,
		Board:  gs.Game.Board,
		Status: gs.Game.Status(),
		Over:   gs.Game.Over,
		LastAI: gs.LastAI,
		Error:  errMsg,
	}
}

const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <p class="status">{{.Status}}</p>
  {{- $d := .}}
  {{range $r := iter 3}}
  <div class="row">
    {{range $c := iter 3}}
      {{$pos := add (mul $r 3) $c}}
      <form hx-post="/game/{{$d.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="pos" value="{{$pos}}">
        <button type="submit"{{if eq $pos $d.LastAI}} class="last"{{end}}{{if $d.Over}} disabled{{end}}>{{cellSymbol (index $d.Board $pos)}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
</div>
`

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
		return c.Value
	}
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/", HttpOnly: true})
	return v
}
