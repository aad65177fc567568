// Package tui is a terminal front-end for the activity board.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Its-donkey/signup-board/internal/ui/roster"
	"github.com/Its-donkey/signup-board/internal/ui/state"
)

// Options configures the terminal model.
type Options struct {
	API    roster.API
	Logger roster.Logger
	Title  string
	// AfterFunc overrides the banner timer; tests use it to hide banners on demand.
	AfterFunc func(time.Duration, func())
}

// ChangeMsg carries a view change into the Bubble Tea loop.
type ChangeMsg struct {
	Change roster.Change
}

// OutcomeMsg reports a finished signup or removal.
type OutcomeMsg struct {
	Action  roster.Action
	Outcome roster.Outcome
}

// item is one selectable line: a card header or a participant row.
type item struct {
	card        int
	participant string
}

// Model renders the board and routes keys to view actions.
type Model struct {
	view    *roster.View
	changes <-chan roster.Change
	state   state.ViewState
	items   []item
	cursor  int
	title   string

	adding      bool
	addActivity string
	input       textinput.Model
	alert       string

	keys  keyMap
	help  help.Model
	width int
}

// NewModel builds the board model and its view.
func NewModel(opts Options) Model {
	changes := make(chan roster.Change, 64)
	view := roster.New(roster.Options{
		API:       opts.API,
		Logger:    opts.Logger,
		AfterFunc: opts.AfterFunc,
		// Changes are sent from command and timer goroutines, never from Update,
		// so a full buffer only stalls the sender until the loop catches up.
		OnChange: func(c roster.Change) { changes <- c },
	})

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "your-email@mergington.edu"
	ti.CharLimit = 254

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Extracurricular Activities"
	}

	return Model{
		view:    view,
		changes: changes,
		state:   view.State(),
		title:   title,
		input:   ti,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

// Run starts the terminal board and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init loads the board and starts listening for view changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), loadCmd(m.view))
}

// Update handles keys, view changes and action outcomes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case ChangeMsg:
		m = m.applyChange(msg.Change)
		return m, waitForChange(m.changes)
	case OutcomeMsg:
		if !msg.Outcome.OK && msg.Action.Kind == roster.ActionUnregister {
			m.alert = msg.Outcome.Message
		}
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		email := m.input.Value()
		m.adding = false
		m.input.Blur()
		a := roster.Action{Kind: roster.ActionRegister, Activity: m.addActivity, Email: email}
		return m, dispatchCmd(m.view, a)
	case "esc":
		m.adding = false
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.alert = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Reload):
		return m, loadCmd(m.view)
	case key.Matches(msg, m.keys.Register):
		card, ok := m.selectedCard()
		if !ok {
			return m, nil
		}
		m.adding = true
		m.addActivity = card.Name
		m.input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Remove):
		card, ok := m.selectedCard()
		if !ok {
			return m, nil
		}
		email := m.items[m.cursor].participant
		if email == "" {
			return m, nil
		}
		a := roster.Action{Kind: roster.ActionUnregister, Activity: card.Name, Email: email}
		return m, dispatchCmd(m.view, a)
	}
	return m, nil
}

func (m Model) applyChange(c roster.Change) Model {
	m.state = c.State
	if c.Kind == roster.ChangeFormReset {
		m.input.SetValue("")
	}
	m.items = buildItems(m.state)
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

func (m Model) selectedCard() (state.Card, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return state.Card{}, false
	}
	idx := m.items[m.cursor].card
	if idx < 0 || idx >= len(m.state.Cards) {
		return state.Card{}, false
	}
	return m.state.Cards[idx], true
}

func buildItems(s state.ViewState) []item {
	if s.Phase != state.Loaded {
		return nil
	}
	var items []item
	for i, card := range s.Cards {
		items = append(items, item{card: i})
		for _, p := range card.Participants {
			items = append(items, item{card: i, participant: p})
		}
	}
	return items
}

// View renders the board.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	switch m.state.Phase {
	case state.NotLoaded:
		b.WriteString(mutedStyle.Render(roster.LoadingMessage))
		b.WriteString("\n")
	case state.LoadFailed:
		b.WriteString(errorStyle.Render(m.state.FailureMessage))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderCards())
	}

	if banner := m.state.Banner; banner.Visible {
		style := successStyle
		if banner.Kind == state.BannerError {
			style = errorStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(banner.Text))
		b.WriteString("\n")
	}
	if m.alert != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✖ " + m.alert))
		b.WriteString("\n")
	}
	if m.adding {
		prompt := fmt.Sprintf("Sign up for %s", m.addActivity)
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(prompt + "\n" + m.input.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return panelStyle.Render(b.String())
}

func (m Model) renderCards() string {
	var lines []string
	pos := 0
	for i, card := range m.state.Cards {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.prefix(pos)+cardNameStyle.Render(card.Name))
		pos++
		lines = append(lines, "  "+card.Description)
		lines = append(lines, "  "+labelStyle.Render("Schedule:")+" "+card.Schedule)
		lines = append(lines, "  "+labelStyle.Render("Availability:")+fmt.Sprintf(" %d spots left", card.SpotsLeft))
		lines = append(lines, "  "+labelStyle.Render("Participants"))
		if len(card.Participants) == 0 {
			lines = append(lines, "    "+infoStyle.Render(state.NoParticipantsText))
			continue
		}
		for _, p := range card.Participants {
			lines = append(lines, "  "+m.prefix(pos)+p+" "+deleteStyle.Render("✖"))
			pos++
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m Model) prefix(pos int) string {
	if pos == m.cursor {
		return selectedStyle.Render(">") + " "
	}
	return "  "
}

func waitForChange(changes <-chan roster.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return nil
		}
		return ChangeMsg{Change: c}
	}
}

func loadCmd(view *roster.View) tea.Cmd {
	return func() tea.Msg {
		view.Load(context.Background())
		return nil
	}
}

func dispatchCmd(view *roster.View, a roster.Action) tea.Cmd {
	return func() tea.Msg {
		return OutcomeMsg{Action: a, Outcome: view.Dispatch(context.Background(), a)}
	}
}
