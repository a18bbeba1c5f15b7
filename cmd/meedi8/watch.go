package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"meedi8/backend/internal/client"
	"meedi8/backend/internal/models"
	"meedi8/backend/internal/phase"
)

// runWatch renders a live view of one room. It polls the lobby endpoint in
// the background and redraws whenever the phase moves.
func runWatch(ctx context.Context, c *client.Client, roomID string) error {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	m := watchModel{
		ctx:     ctx,
		client:  c,
		roomID:  roomID,
		spinner: sp,
		theme:   newWatchTheme(),
	}
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

type watchTheme struct {
	frame    lipgloss.Style
	title    lipgloss.Style
	phaseTag func(color string) lipgloss.Style
	body     lipgloss.Style
	hint     lipgloss.Style
	errText  lipgloss.Style
}

func newWatchTheme() watchTheme {
	return watchTheme{
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2),
		title: lipgloss.NewStyle().Bold(true),
		phaseTag: func(color string) lipgloss.Style {
			return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
		},
		body:    lipgloss.NewStyle().Faint(false),
		hint:    lipgloss.NewStyle().Faint(true),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D")).Bold(true),
	}
}

type watchModel struct {
	ctx     context.Context
	client  *client.Client
	roomID  string
	room    *models.RoomView
	role    phase.Role
	current phase.Phase
	poller  *client.Poller
	spinner spinner.Model
	theme   watchTheme
	err     error
	done    bool
}

type roomLoadedMsg struct{ room *models.RoomView }
type phaseMsg struct{ p phase.Phase }
type pollStoppedMsg struct{}
type advanceDoneMsg struct {
	p   phase.Phase
	err error
}
type loadFailedMsg struct{ err error }

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadRoomCmd())
}

func (m watchModel) loadRoomCmd() tea.Cmd {
	return func() tea.Msg {
		room, err := m.client.GetRoom(m.ctx, m.roomID)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return roomLoadedMsg{room: room}
	}
}

// waitForPhase blocks on the poller's update channel.
func (m watchModel) waitForPhase() tea.Cmd {
	p := m.poller
	return func() tea.Msg {
		next, ok := <-p.Updates()
		if !ok {
			return pollStoppedMsg{}
		}
		return phaseMsg{p: next}
	}
}

func (m watchModel) advanceCmd(event string) tea.Cmd {
	return func() tea.Msg {
		next, err := m.client.Advance(m.ctx, m.roomID, event)
		return advanceDoneMsg{p: next, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.poller != nil {
				// Stop closes Updates, which also releases the
				// waitForPhase command still parked on the channel.
				m.poller.Stop()
			}
			m.done = true
			return m, tea.Quit
		case "enter":
			if m.room == nil {
				return m, nil
			}
			d := phase.Describe(m.current, m.role)
			ev, ok := nextEvent(m.current, m.role)
			if !d.ActionReady || !ok {
				return m, nil
			}
			return m, m.advanceCmd(ev)
		}

	case roomLoadedMsg:
		m.room = msg.room
		m.role = phase.RoleFor(msg.room.IsUser1)
		m.current = msg.room.Phase
		m.poller = client.NewPoller(m.client, m.roomID, 0)
		m.poller.Start(m.ctx)
		return m, m.waitForPhase()

	case phaseMsg:
		m.current = msg.p
		if m.current.Terminal() {
			m.poller.Stop()
			m.done = true
			return m, tea.Quit
		}
		return m, m.waitForPhase()

	case advanceDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.current = msg.p
		if m.current.Terminal() {
			if m.poller != nil {
				m.poller.Stop()
			}
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case pollStoppedMsg:
		return m, nil

	case loadFailedMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.err != nil && m.room == nil {
		return m.theme.errText.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.room == nil {
		return m.spinner.View() + " Loading room...\n"
	}

	d := phase.Describe(m.current, m.role)

	var b strings.Builder
	b.WriteString(m.theme.title.Render(m.room.Title))
	b.WriteString("\n")
	b.WriteString(m.theme.hint.Render("started " + formatAge(m.room.CreatedAt)))
	b.WriteString("\n\n")

	b.WriteString(m.theme.phaseTag(d.Color).Render("● " + d.Label))
	b.WriteString("\n")
	b.WriteString(m.theme.body.Render(d.Description))
	b.WriteString("\n\n")

	if m.current.MainRoomOpen() {
		b.WriteString(m.theme.body.Render("The main room is open."))
	} else if m.current.Terminal() {
		b.WriteString(m.theme.body.Render("This mediation is complete."))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.hint.Render(" waiting for the other person..."))
	}
	b.WriteString("\n\n")

	if _, ok := nextEvent(m.current, m.role); ok && d.ActionReady {
		b.WriteString(m.theme.hint.Render(fmt.Sprintf("enter: %s   q: quit", d.Action)))
	} else {
		b.WriteString(m.theme.hint.Render("q: quit"))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.theme.errText.Render(m.err.Error()))
	}

	return m.theme.frame.Render(b.String()) + "\n"
}

// nextEvent maps the viewer's current position to the transition their
// primary action requests. Phases where the viewer can only wait have no
// event.
func nextEvent(p phase.Phase, r phase.Role) (string, bool) {
	switch {
	case p == phase.User1Coaching && r == phase.Initiator:
		return "complete_coaching", true
	case p == phase.User2Lobby && r == phase.Invitee:
		return "start_coaching", true
	case p == phase.User2Coaching && r == phase.Invitee:
		return "complete_coaching", true
	case p == phase.MainRoom:
		return "begin_session", true
	case p == phase.InSession:
		return "resolve", true
	default:
		return "", false
	}
}
