package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/engine"
	"github.com/eddielee6/ReactionMatch/internal/puzzle"
	"github.com/eddielee6/ReactionMatch/internal/registry"
	"github.com/eddielee6/ReactionMatch/internal/storage"
)

// Presentation timings.
const (
	levelIntroDelay = 250 * time.Millisecond
	bannerDuration  = 700 * time.Millisecond
	storeTimeout    = 2 * time.Second
)

// GameModel is the Bubble Tea model for one game type. It owns the engine
// and feeds it the input collected between ticks.
type GameModel struct {
	engine *engine.Engine
	info   registry.GameInfo
	store  storage.Backend
	logger *log.Logger
	config core.RuntimeConfig
	screen *core.Screen

	keyMapper *KeyMapper
	help      help.Model
	input     core.InputFrame
	clock     frameClock

	dragging   bool
	mouseX     int
	mouseY     int
	intro      time.Duration
	banner     string
	bannerLeft time.Duration
	gameOver   *engine.GameOverEvent

	quitOnBack bool
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a game model and starts a game. When resume is set
// the saved session is continued; if it cannot be, a new game starts.
func NewGameModel(e *engine.Engine, info registry.GameInfo, store storage.Backend, cfg core.RuntimeConfig, logger *log.Logger, resume *engine.Session) GameModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := GameModel{
		engine:    e,
		info:      info,
		store:     store,
		logger:    logger,
		config:    cfg,
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		keyMapper: NewKeyMapper(),
		help:      help.New(),
		input:     core.NewInputFrame(),
	}
	m.help.Width = cfg.ScreenW

	if resume != nil {
		events, err := e.Resume(*resume)
		if err == nil {
			m.apply(events)
			return m
		}
		logger.Warn("cannot resume saved game", "game", info.ID, "err", err)
	}
	m.apply(e.NewGame())
	return m
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil
	case TickMsg:
		if m.quitting || m.backToMenu {
			return m, nil
		}
		return m.handleTick(time.Time(msg))
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keyMapper.MapKeyToFrame(msg, &m.input) {
		m.suspend()
		m.quitting = true
		return m, tea.Quit
	}
	switch {
	case m.input.Has(core.ActionScreenshot):
		m.saveScreenshot()
		delete(m.input.Actions, core.ActionScreenshot)
	case m.input.Has(core.ActionBack):
		m.suspend()
		m.backToMenu = true
		if m.quitOnBack {
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

// handleMouse turns left button drags into press, move and release.
func (m *GameModel) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.dragging = true
		m.mouseX, m.mouseY = msg.X, msg.Y
		m.input.Set(core.ActionPress)
	case tea.MouseActionMotion:
		if !m.dragging {
			return
		}
		v := newViewport(m.screen.Width(), m.screen.Height(), m.engine.Settings().Playfield)
		m.input.AddMove(v.ToPlayDelta(msg.X-m.mouseX, msg.Y-m.mouseY))
		m.mouseX, m.mouseY = msg.X, msg.Y
	case tea.MouseActionRelease:
		if !m.dragging {
			return
		}
		m.dragging = false
		m.input.Set(core.ActionRelease)
	}
}

// handleTick feeds the collected input to the engine and advances its clock.
func (m GameModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	dt := m.clock.Step(now)
	m.step(dt)
	return m, tickCmd(m.config.TickRate)
}

// step applies one frame of input, in press, move, release order, then
// advances time by dt.
func (m *GameModel) step(dt time.Duration) {
	in := m.input
	defer m.input.Clear()

	if m.gameOver != nil {
		if in.Has(core.ActionRestart) {
			m.gameOver = nil
			m.apply(m.engine.NewGame())
		}
		return
	}

	if in.Has(core.ActionPress) {
		m.apply(m.engine.FirstMove())
	}
	if in.HasMove() {
		m.apply(m.engine.Move(in.Move))
	}
	if in.Has(core.ActionRelease) {
		m.apply(m.engine.EndMove())
	}

	if m.engine.State() == puzzle.StateIdle {
		m.intro -= dt
		if m.intro <= 0 {
			m.apply(m.engine.BeginLevel())
		}
	}
	m.apply(m.engine.Tick(dt))

	if m.bannerLeft > 0 {
		m.bannerLeft -= dt
		if m.bannerLeft <= 0 {
			m.banner = ""
		}
	}
}

// apply updates presentation state from engine events.
func (m *GameModel) apply(events []engine.Event) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case engine.LevelStartedEvent:
			m.intro = levelIntroDelay
		case engine.LevelSucceededEvent:
			m.banner = fmt.Sprintf("+%s", pointsLabel(ev.PointsGained))
			m.bannerLeft = bannerDuration
		case engine.GameOverEvent:
			m.gameOver = &ev
			m.dragging = false
			m.discardSavedGame()
		}
	}
}

// suspend saves an unfinished game so it can be resumed from the menu.
func (m *GameModel) suspend() {
	sess := m.engine.Session()
	if m.store == nil || !m.engine.Started() || sess.IsGameOver {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := m.store.SaveSession(ctx, sess); err != nil {
		m.logger.Warn("cannot save game", "game", m.info.ID, "err", err)
		return
	}
	m.logger.Debug("game saved", "game", m.info.ID, "levels", sess.LevelsPlayed, "score", sess.Score)
}

func (m *GameModel) discardSavedGame() {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := m.store.DeleteSession(ctx, m.info.ID); err != nil && !errors.Is(err, storage.ErrNoSession) {
		m.logger.Warn("cannot discard saved game", "game", m.info.ID, "err", err)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.render()

	dir := filepath.Join(os.Getenv("HOME"), ".reactionmatch", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.info.ID, timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(screenshotText(m.screen)), 0o600)
}

// screenshotText is the screen as plain text without trailing blanks.
func screenshotText(s *core.Screen) string {
	lines := make([]string, s.Height())
	for y := range lines {
		lines[y] = strings.TrimRight(s.Row(y), " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m GameModel) render() {
	_, hinting := m.engine.HintPosition()
	drawGame(m.screen, gameView{
		title:    m.info.Title,
		level:    m.engine.Level(),
		settings: m.engine.Settings(),
		score:    m.engine.Session().Score,
		best:     max(m.engine.HighScore(), m.engine.Session().Score),
		started:  m.engine.Session().HasStartedFirstMove,
		hinting:  hinting,
		banner:   m.banner,
		gameOver: m.gameOver,
		help:     m.help.View(m.keyMapper.Keys()),
	})
}

// View renders the game.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.render()
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Run plays one game type until the player quits or goes back.
func Run(e *engine.Engine, info registry.GameInfo, store storage.Backend, cfg core.RuntimeConfig, logger *log.Logger, resume *engine.Session) error {
	model := NewGameModel(e, info, store, cfg, logger, resume)
	model.quitOnBack = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
