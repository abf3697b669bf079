// Package tui is the terminal front end of the group chat.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/models"
)

const helpText = "enter send · /agents roster · /clear wipe history · /quit exit · pgup/pgdn scroll"

type eventMsg struct{ ev ensemble.Event }

type sentMsg struct{ err error }

type clearedMsg struct{ err error }

// Model is the bubbletea model for `ens chat`.
type Model struct {
	ctx    context.Context
	svc    *ensemble.Service
	events <-chan ensemble.Event

	messages  []models.ChatMessage
	thinking  bool
	indicator string
	status    string
	statusErr bool

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model
	theme    theme
	width    int
	height   int
}

// New builds a Model over svc. Turns started from the model run under ctx.
// events should come from svc.Store().Subscribe().
func New(ctx context.Context, svc *ensemble.Service, events <-chan ensemble.Event) Model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 4000
	input.Placeholder = "Say something to the group..."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true

	thinking, indicator := svc.Store().Indicator()
	m := Model{
		ctx:       ctx,
		svc:       svc,
		events:    events,
		messages:  svc.Store().Messages(),
		thinking:  thinking,
		indicator: indicator,
		input:     input,
		timeline:  timeline,
		spinner:   sp,
		theme:     newTheme(),
	}
	if !svc.HasAPIKey() {
		m.setError("no API key configured, run `ens key set` first")
	}
	return m
}

// Run starts the terminal UI and blocks until the user quits or ctx is done.
// In-flight turns are waited for before Run returns.
func Run(ctx context.Context, svc *ensemble.Service) error {
	events, unsubscribe := svc.Store().Subscribe()
	defer unsubscribe()

	p := tea.NewProgram(New(ctx, svc, events), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	svc.Wait()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitEvent(m.events))
}

func waitEvent(ch <-chan ensemble.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.render()

	case eventMsg:
		m.apply(msg.ev)
		m.render()
		cmds = append(cmds, waitEvent(m.events))

	case sentMsg:
		switch {
		case msg.err == nil:
			m.setStatus("")
		case errors.Is(msg.err, ensemble.ErrTurnInFlight):
			m.setError("still waiting on the last round")
		case errors.Is(msg.err, ensemble.ErrNoAPIKey):
			m.setError("no API key configured, run `ens key set` first")
		default:
			m.setError(msg.err.Error())
		}

	case clearedMsg:
		if msg.err != nil {
			m.setError(msg.err.Error())
		} else {
			m.setStatus("history cleared")
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.timeline, cmd = m.timeline.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// submit handles the input line: slash commands locally, anything else as a turn.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	switch text {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/clear":
		store, ctx := m.svc.Store(), m.ctx
		return m, func() tea.Msg { return clearedMsg{err: store.ClearHistory(ctx)} }
	case "/agents":
		names := make([]string, 0)
		for _, a := range m.svc.Store().Agents() {
			names = append(names, fmt.Sprintf("%s (%s)", a.Name, a.Profession))
		}
		m.setStatus(strings.Join(names, ", "))
		return m, nil
	}

	svc, ctx := m.svc, m.ctx
	return m, func() tea.Msg {
		_, err := svc.Start(ctx, text)
		return sentMsg{err: err}
	}
}

func (m *Model) apply(ev ensemble.Event) {
	switch ev.Kind {
	case ensemble.EventMessage:
		if ev.Message != nil {
			m.messages = append(m.messages, *ev.Message)
		}
	case ensemble.EventHistory:
		m.messages = m.svc.Store().Messages()
	case ensemble.EventIndicator:
		m.thinking, m.indicator = ev.Thinking, ev.Indicator
	case ensemble.EventRoster:
		m.setStatus(fmt.Sprintf("roster updated, %d agents", len(m.svc.Store().Agents())))
	}
}

func (m *Model) setStatus(s string) { m.status, m.statusErr = s, false }

func (m *Model) setError(s string) { m.status, m.statusErr = s, true }

func (m *Model) resize() {
	m.timeline.Width = max(20, m.width-4)
	// header, input box, status and footer lines plus the panel border
	m.timeline.Height = max(3, m.height-9)
	m.input.Width = max(10, m.width-8)
}

func (m *Model) render() {
	atBottom := m.timeline.AtBottom()
	m.timeline.SetContent(m.renderTimeline())
	if atBottom || m.timeline.YOffset == 0 {
		m.timeline.GotoBottom()
	}
}

func (m Model) renderTimeline() string {
	width := max(20, m.timeline.Width)
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg, width))
	}
	return b.String()
}

func (m Model) renderMessage(msg models.ChatMessage, width int) string {
	name := m.theme.authorStyle(msg.Author).Render(msg.Author.Name)
	if p := msg.Author.Profile; p != nil {
		if emoji, ok := models.EmotionAvatar[p.Emotion]; ok {
			name = emoji + " " + name
		}
		name += m.theme.muted.Render(" · " + string(p.Profession))
	}
	if !msg.Timestamp.IsZero() {
		name += m.theme.muted.Render("  " + msg.Timestamp.Local().Format("15:04"))
	}
	body := m.theme.body.Width(width).Render(msg.Text)
	return name + "\n" + body + "\n"
}

func (m Model) View() string {
	header := m.theme.header.Render(fmt.Sprintf("Ensemble · %d agents", len(m.svc.Store().Agents())))

	panel := m.theme.panel.Width(max(20, m.width-2)).Render(m.timeline.View())
	input := m.theme.input.Width(max(20, m.width-2)).Render(m.input.View())

	var status string
	switch {
	case m.indicator != "":
		status = m.spinner.View() + " " + m.theme.indicator.Render(m.indicator)
	case m.statusErr:
		status = m.theme.errStatus.Render(m.status)
	case m.status != "":
		status = m.theme.status.Render(m.status)
	}
	footer := m.theme.footer.Render(helpText)
	return lipgloss.JoinVertical(lipgloss.Left, header, panel, input, " "+status, footer)
}
