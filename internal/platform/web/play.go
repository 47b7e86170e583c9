package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"

	"github.com/eddielee6/ReactionMatch/internal/config"
	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/engine"
	"github.com/eddielee6/ReactionMatch/internal/registry"
	"github.com/eddielee6/ReactionMatch/internal/storage"
)

// Client commands.
const (
	CmdNewGame   = "new_game"
	CmdResume    = "resume"
	CmdBegin     = "begin"
	CmdFirstMove = "first_move"
	CmdMove      = "move"
	CmdEndMove   = "end_move"
	CmdTick      = "tick"
	CmdSnapshot  = "snapshot"
)

// Server message types that are not engine events.
const (
	MsgSnapshot = "snapshot"
	MsgError    = "error"
)

const (
	writeWait    = 5 * time.Second
	outboxSize   = 64
	commandQueue = 16
	maxTickStep  = 250 * time.Millisecond
)

// ErrUnknownCommand is reported for a command type the server does not know.
var ErrUnknownCommand = errors.New("web: unknown command")

// ClientMessage is one command sent by a browser.
type ClientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	// DtMs is the elapsed time for a tick, in milliseconds.
	DtMs int64 `json:"dt_ms,omitempty"`
}

// ServerMessage is one message sent to a browser: an engine event named
// by its wire name, a snapshot or an error.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// handlePlay upgrades the request and runs one player's engine until the
// socket closes. ?seed=N fixes the level sequence, ?difficulty= picks a
// preset and ?clock=server makes the server tick the engine.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	mode := way.Param(r.Context(), "mode")
	info, ok := registry.Lookup(mode)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown mode "+strconv.Quote(mode))
		return
	}

	q := r.URL.Query()
	difficulty := s.config.Difficulty
	if raw := q.Get("difficulty"); raw != "" {
		d, err := config.ParseDifficulty(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		difficulty = d
	}
	seed := time.Now().UnixNano()
	if raw := q.Get("seed"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "seed must be an integer")
			return
		}
		seed = n
	}

	e, err := registry.Create(info.ID, registry.Options{
		Difficulty: difficulty,
		Random:     core.NewSeededRandom(seed),
		Store:      s.store,
		Logger:     s.logger,
	})
	if err != nil {
		s.logger.Error("cannot create engine", "mode", mode, "err", err)
		s.writeError(w, http.StatusInternalServerError, "cannot create game")
		return
	}
	defer e.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	p := &player{
		conn:   conn,
		engine: e,
		gameID: info.ID,
		store:  s.store,
		logger: s.logger.With("mode", info.ID, "remote", r.RemoteAddr),
		outbox: make(chan ServerMessage, outboxSize),
	}
	if q.Get("clock") == "server" {
		p.tickEvery = time.Second / time.Duration(s.config.TickRate)
	}

	p.logger.Info("player connected")
	p.run(r.Context())
	p.logger.Info("player disconnected", "score", e.Session().Score)
}

// player relays one socket to one engine. The engine is only touched by
// the goroutine running run.
type player struct {
	conn      *websocket.Conn
	engine    *engine.Engine
	gameID    string
	store     storage.Backend
	logger    *log.Logger
	outbox    chan ServerMessage
	tickEvery time.Duration
}

func (p *player) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		p.writeLoop()
	}()

	commands := make(chan ClientMessage, commandQueue)
	go p.readLoop(ctx, commands)

	var ticks <-chan time.Time
	if p.tickEvery > 0 {
		ticker := time.NewTicker(p.tickEvery)
		defer ticker.Stop()
		ticks = ticker.C
	}
	last := time.Now()

loop:
	for {
		select {
		case cmd, ok := <-commands:
			if !ok {
				break loop
			}
			p.handle(ctx, cmd)
		case now := <-ticks:
			p.sendEvents(ctx, p.engine.Tick(min(now.Sub(last), maxTickStep)))
			last = now
		case <-ctx.Done():
			break loop
		}
	}

	p.suspend()
	close(p.outbox)
	wg.Wait()
}

// readLoop decodes commands until the socket fails, then closes commands.
func (p *player) readLoop(ctx context.Context, commands chan<- ClientMessage) {
	defer close(commands)
	for {
		var msg ClientMessage
		if err := p.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.logger.Warn("read failed", "err", err)
			}
			return
		}
		select {
		case commands <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// writeLoop only consumes the outbox. Once it returns the context is
// cancelled, which unblocks any pending send.
func (p *player) writeLoop() {
	for msg := range p.outbox {
		//nolint:errcheck // A failed deadline surfaces on the write below
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteJSON(msg); err != nil {
			p.logger.Warn("write failed", "err", err)
			return
		}
	}
	//nolint:errcheck // Best-effort close handshake
	p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// handle applies one command to the engine and sends what it caused.
func (p *player) handle(ctx context.Context, cmd ClientMessage) {
	var events []engine.Event
	switch cmd.Type {
	case CmdNewGame:
		events = p.engine.NewGame()
	case CmdResume:
		var err error
		events, err = p.resume(ctx)
		if err != nil {
			p.sendError(ctx, err)
			return
		}
	case CmdBegin:
		events = p.engine.BeginLevel()
	case CmdFirstMove:
		events = p.engine.FirstMove()
	case CmdMove:
		events = p.engine.Move(core.Pt(cmd.X, cmd.Y))
	case CmdEndMove:
		events = p.engine.EndMove()
	case CmdTick:
		dt := time.Duration(cmd.DtMs) * time.Millisecond
		events = p.engine.Tick(min(dt, maxTickStep))
	case CmdSnapshot:
		p.send(ctx, ServerMessage{Type: MsgSnapshot, Payload: p.engine.Snapshot()})
		return
	default:
		p.sendError(ctx, fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Type))
		return
	}
	p.sendEvents(ctx, events)
}

func (p *player) resume(ctx context.Context) ([]engine.Event, error) {
	if p.store == nil {
		return nil, storage.ErrNoSession
	}
	sess, err := p.store.LoadSession(ctx, p.gameID)
	if err != nil {
		return nil, err
	}
	return p.engine.Resume(sess)
}

// suspend saves an unfinished game when the socket goes away, and drops a
// stale save once the game is over.
func (p *player) suspend() {
	if p.store == nil || !p.engine.Started() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	sess := p.engine.Session()
	if sess.IsGameOver {
		if err := p.store.DeleteSession(ctx, p.gameID); err != nil && !errors.Is(err, storage.ErrNoSession) {
			p.logger.Warn("cannot discard saved game", "err", err)
		}
		return
	}
	if err := p.store.SaveSession(ctx, sess); err != nil {
		p.logger.Warn("cannot save game", "err", err)
	}
}

func (p *player) sendEvents(ctx context.Context, events []engine.Event) {
	for _, ev := range events {
		p.send(ctx, ServerMessage{Type: ev.Name(), Payload: ev})
	}
}

func (p *player) sendError(ctx context.Context, err error) {
	p.send(ctx, ServerMessage{Type: MsgError, Payload: map[string]string{"error": err.Error()}})
}

func (p *player) send(ctx context.Context, msg ServerMessage) {
	select {
	case p.outbox <- msg:
	case <-ctx.Done():
	}
}
