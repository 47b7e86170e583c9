package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eddielee6/ReactionMatch/internal/registry"
	"github.com/eddielee6/ReactionMatch/internal/storage"
)

const (
	statsPanelMinWidth = 80 // below this the stats go under the table
	statsPanelWidth    = 24
	boardScoreLimit    = 100
	scoreboardTimeout  = 3 * time.Second
)

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	boardDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boardTabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	boardActiveTab  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	boardErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(1, 2)
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextMode key.Binding
	PrevMode key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextMode, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.NextMode, k.PrevMode}, {k.Back, k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll")),
		NextMode: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/→", "next mode")),
		PrevMode: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab/←", "prev mode")),
		Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// modeBoard is what the scoreboard shows for one game type. Boards are
// loaded on first view and kept while the screen is open.
type modeBoard struct {
	info    registry.GameInfo
	scores  []storage.ScoreEntry
	stats   *storage.GameStats
	err     error
	fetched bool
}

// ScoreboardModel is the Bubble Tea model for the high score screen.
type ScoreboardModel struct {
	store     storage.Backend
	boards    []modeBoard
	current   int
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a scoreboard over every registered game type.
func NewScoreboardModel(store storage.Backend, width, height int) ScoreboardModel {
	games := registry.List()
	m := ScoreboardModel{
		store:  store,
		boards: make([]modeBoard, len(games)),
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	for i, g := range games {
		m.boards[i].info = g
	}
	m.table = m.newTable()
	m.show(0)
	return m
}

func (m ScoreboardModel) sidePanel() bool {
	return m.width >= statsPanelMinWidth
}

func (m *ScoreboardModel) newTable() table.Model {
	dateWidth := 12
	if m.sidePanel() {
		dateWidth = max(12, min(m.width-statsPanelWidth-50, 20))
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Rank", Width: 5},
			{Title: "Score", Width: 7},
			{Title: "Levels", Width: 6},
			{Title: "Ended", Width: 10},
			{Title: "Date", Width: dateWidth},
		}),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// show switches to board i, fetching it the first time.
func (m *ScoreboardModel) show(i int) {
	if len(m.boards) == 0 {
		return
	}
	m.current = (i + len(m.boards)) % len(m.boards)
	b := &m.boards[m.current]
	if !b.fetched && m.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), scoreboardTimeout)
		b.scores, b.err = m.store.TopScores(ctx, b.info.ID, boardScoreLimit)
		if b.err == nil {
			b.stats, b.err = m.store.GameStats(ctx, b.info.ID)
		}
		cancel()
	}
	b.fetched = true
	m.fillTable()
}

func (m *ScoreboardModel) fillTable() {
	var rows []table.Row
	if len(m.boards) > 0 {
		for i, s := range m.boards[m.current].scores {
			rows = append(rows, table.Row{
				strconv.Itoa(i + 1),
				strconv.FormatInt(s.Score, 10),
				strconv.Itoa(s.LevelsPlayed),
				s.Reason,
				s.CreatedAt.Local().Format("Jan 02 15:04"),
			})
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextMode):
			m.show(m.current + 1)
			return m, nil
		case key.Matches(msg, m.keys.PrevMode):
			m.show(m.current - 1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.newTable()
		m.fillTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString(centerText(boardTitleStyle.Render("HIGH SCORES"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.tabs(), m.width))
	b.WriteString("\n\n")

	board := boardBoxStyle.Render(m.boardContent())
	if m.sidePanel() {
		panel := boardBoxStyle.Width(statsPanelWidth).Render(strings.Join(m.statsLines(), "\n"))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", panel))
	} else {
		b.WriteString(board)
		if line := m.statsLine(); line != "" {
			b.WriteString("\n")
			b.WriteString(boardDimStyle.Render(line))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(boardDimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m ScoreboardModel) tabs() string {
	tabs := make([]string, len(m.boards))
	for i, board := range m.boards {
		if i == m.current {
			tabs[i] = boardActiveTab.Render(board.info.Title)
		} else {
			tabs[i] = boardTabStyle.Render(board.info.Title)
		}
	}
	return strings.Join(tabs, " ")
}

func (m ScoreboardModel) boardContent() string {
	if len(m.boards) == 0 {
		return boardDimStyle.Padding(1, 2).Render("No game modes registered.")
	}
	board := m.boards[m.current]
	switch {
	case board.err != nil:
		return boardErrorStyle.Render("Could not load scores: " + board.err.Error())
	case len(board.scores) == 0:
		return boardDimStyle.Italic(true).Padding(1, 2).
			Render("No scores recorded yet.\nPlay " + board.info.Title + " to set a high score!")
	}
	return m.table.View()
}

// statsLines lists the selected mode's statistics for the side panel.
func (m ScoreboardModel) statsLines() []string {
	lines := []string{boardTitleStyle.Render("Stats"), ""}
	if len(m.boards) == 0 {
		return lines
	}
	s := m.boards[m.current].stats
	if s == nil || s.GamesCount == 0 {
		return append(lines, boardDimStyle.Render("Not played yet"))
	}
	return append(lines,
		fmt.Sprintf("Games:       %d", s.GamesCount),
		fmt.Sprintf("Best:        %d", s.HighScore),
		fmt.Sprintf("Average:     %.1f", s.AvgScore),
		fmt.Sprintf("Most levels: %d", s.MostLevels),
		"",
		"Last played:",
		s.LastPlayed.Local().Format("Jan 02 15:04"),
	)
}

// statsLine summarizes the selected mode's statistics on one line.
func (m ScoreboardModel) statsLine() string {
	if len(m.boards) == 0 {
		return ""
	}
	s := m.boards[m.current].stats
	if s == nil || s.GamesCount == 0 {
		return ""
	}
	return fmt.Sprintf("Games: %d  Best: %d  Average: %.1f  Most levels: %d  Last played: %s",
		s.GamesCount, s.HighScore, s.AvgScore, s.MostLevels,
		s.LastPlayed.Local().Format("Jan 02 15:04"))
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard on its own.
// Returns true if user wants to go back to menu, false if quitting.
func RunScoreboard(store storage.Backend, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
