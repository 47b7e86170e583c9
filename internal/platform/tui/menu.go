package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eddielee6/ReactionMatch/internal/catalog"
	"github.com/eddielee6/ReactionMatch/internal/core"
	"github.com/eddielee6/ReactionMatch/internal/engine"
	"github.com/eddielee6/ReactionMatch/internal/registry"
	"github.com/eddielee6/ReactionMatch/internal/storage"
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	GameID string
	Title  string
	// Resume is set for an entry continuing a saved game.
	Resume *engine.Session
}

// MenuModel is the Bubble Tea model for the game picker menu.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	config         core.RuntimeConfig
	keys           MenuKeyMap
	help           help.Model
	rng            core.RandomProvider
	demoColor      catalog.Color
	demoShape      catalog.Shape
	quitting       bool
	selected       *MenuItem
	openScoreboard bool
}

// NewMenuModel creates a new menu model. Saved games found in the store
// are listed first.
func NewMenuModel(store storage.Backend, cfg core.RuntimeConfig) MenuModel {
	games := registry.List()
	items := make([]MenuItem, 0, len(games)*2)

	if store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		for _, g := range games {
			sess, err := store.LoadSession(ctx, g.ID)
			if err != nil {
				continue
			}
			items = append(items, MenuItem{
				GameID: g.ID,
				Title:  fmt.Sprintf("Resume %s (level %d, %d pts)", g.Title, sess.LevelsPlayed+1, sess.Score),
				Resume: &sess,
			})
		}
		cancel()
	}
	for _, g := range games {
		items = append(items, MenuItem{GameID: g.ID, Title: g.Title})
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m := MenuModel{
		items:  items,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
		config: cfg,
		keys:   DefaultMenuKeyMap(),
		help:   help.New(),
		rng:    core.NewSeededRandom(seed),
	}
	m.demoColor = catalog.RandomColor(m.rng)
	m.demoShape = catalog.RandomShape(m.rng)
	return m
}

// rollDemo changes both the colour and the shape shown next to the title.
func (m *MenuModel) rollDemo() {
	m.demoColor = catalog.RandomColorExcluding(m.rng, m.demoColor)
	m.demoShape = catalog.RandomShapeExcluding(m.rng, m.demoShape)
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.rollDemo()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.rollDemo()
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case key.Matches(msg, m.keys.Scores):
		m.openScoreboard = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	demo := colorStyles[m.demoColor.Terminal()].Render(string(m.demoShape.Glyph()))
	title := lipgloss.NewStyle().Bold(true).Render("R E A C T I O N   M A T C H")
	b.WriteString("\n")
	b.WriteString(centerText(demo+"  "+title+"  "+demo, m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Drag the shape onto its match", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(cursor+item.Title, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(m.help.View(m.keys), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width, ignoring ANSI sequences.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
