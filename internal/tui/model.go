// Package tui renders the view controller's state as a terminal UI.
package tui

import (
	"context"
	"fmt"
	"strings"

	"mytutor/internal/catalog"
	"mytutor/internal/viewstate"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const processing = "Processing..."

// settledMsg carries the outcome of a backend call back onto the update loop.
type settledMsg struct {
	req  viewstate.Request
	resp viewstate.Response
	err  error
}

const (
	fieldUsername = iota
	fieldPassword
)

const (
	pickGrade = iota
	pickSubject
)

// Model is the bubbletea model. All state changes go through
// viewstate.Reduce and viewstate.Settle; the widgets only collect input.
type Model struct {
	ctx   context.Context
	api   viewstate.API
	log   *zap.Logger
	state viewstate.State

	username textinput.Model
	password textinput.Model
	focus    int

	// indexes into catalog.Grades and catalog.Subjects, -1 when unset
	grade   int
	subject int
	pick    int
}

func New(ctx context.Context, api viewstate.API, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return Model{
		ctx:      ctx,
		api:      api,
		log:      log,
		state:    viewstate.Initial(),
		username: username,
		password: password,
		grade:    -1,
		subject:  -1,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, api viewstate.API, log *zap.Logger) error {
	p := tea.NewProgram(New(ctx, api, log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) State() viewstate.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settledMsg:
		m.state = viewstate.Settle(m.state, msg.req, msg.resp, msg.err)
		if msg.err != nil {
			m.log.Info("request failed", zap.Stringer("kind", msg.req.Kind), zap.Error(msg.err))
		} else {
			m.log.Info("request settled", zap.Stringer("kind", msg.req.Kind), zap.String("screen", m.state.Screen.Name()))
		}
		if msg.err == nil && msg.req.Kind == viewstate.RequestRegister {
			m.password.Reset()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+l":
			m, cmd := m.dispatch(viewstate.Logout{})
			return m.resetInputs(), cmd
		}

		switch sc := m.state.Screen.(type) {
		case viewstate.LoginScreen:
			return m.updateLogin(msg)
		case viewstate.DashboardScreen:
			if sc.HasTutor {
				return m.updateTutor(msg)
			}
			return m.updatePicker(msg)
		case viewstate.QuizScreen:
			switch msg.String() {
			case "q", "esc":
				return m.dispatch(viewstate.ReturnToDashboard{})
			}
		}
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return m.switchField()
	case "ctrl+t":
		return m.dispatch(viewstate.ToggleAuthMode{})
	case "enter":
		return m.dispatch(viewstate.SubmitCredentials{
			Username: m.username.Value(),
			Password: m.password.Value(),
		})
	}

	var cmd tea.Cmd
	if m.focus == fieldUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) switchField() (tea.Model, tea.Cmd) {
	if m.focus == fieldUsername {
		m.focus = fieldPassword
		m.username.Blur()
		return m, m.password.Focus()
	}
	m.focus = fieldUsername
	m.password.Blur()
	return m, m.username.Focus()
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.pick = 1 - m.pick
	case "left", "h":
		m.cycle(-1)
	case "right", "l":
		m.cycle(1)
	case "enter":
		return m.dispatch(viewstate.SubmitProfile{
			Grade:   label(catalog.Grades, m.grade),
			Subject: label(catalog.Subjects, m.subject),
		})
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) cycle(step int) {
	if m.pick == pickGrade {
		m.grade = wrap(m.grade, step, len(catalog.Grades))
	} else {
		m.subject = wrap(m.subject, step, len(catalog.Subjects))
	}
}

// wrap steps i through [0,n), treating -1 as just before the first entry.
func wrap(i, step, n int) int {
	if i < 0 {
		if step > 0 {
			return 0
		}
		return n - 1
	}
	return ((i+step)%n + n) % n
}

func label(options []string, i int) string {
	if i < 0 || i >= len(options) {
		return ""
	}
	return options[i]
}

func (m Model) updateTutor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "g":
		return m.dispatch(viewstate.RequestQuiz{})
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// dispatch reduces a and, when it asks for a call, returns a command that
// performs it off the update loop.
func (m Model) dispatch(a viewstate.Action) (Model, tea.Cmd) {
	next, req, err := viewstate.Reduce(m.state, a)
	m.state = next
	if err != nil {
		m.log.Debug("action rejected", zap.String("action", fmt.Sprintf("%T", a)), zap.Error(err))
		return m, nil
	}
	if req == nil {
		return m, nil
	}

	ctx, api, r := m.ctx, m.api, *req
	return m, func() tea.Msg {
		resp, err := viewstate.Perform(ctx, api, r)
		return settledMsg{req: r, resp: resp, err: err}
	}
}

func (m Model) resetInputs() Model {
	m.username.Reset()
	m.password.Reset()
	m.password.Blur()
	m.username.Focus()
	m.focus = fieldUsername
	m.grade, m.subject, m.pick = -1, -1, pickGrade
	return m
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("MyTutor\n\n")

	switch msg := m.state.Message; msg.Kind {
	case viewstate.MessageError:
		fmt.Fprintf(&b, "! %s\n\n", msg.Text)
	case viewstate.MessageNotice:
		fmt.Fprintf(&b, "%s\n\n", msg.Text)
	}

	switch sc := m.state.Screen.(type) {
	case viewstate.LoginScreen:
		m.viewLogin(&b, sc)
	case viewstate.DashboardScreen:
		m.viewDashboard(&b, sc)
	case viewstate.QuizScreen:
		fmt.Fprintf(&b, "Quiz: %s (%s)\n\n", sc.Quiz.Topic, sc.Quiz.Difficulty)
		b.WriteString(sc.Quiz.Content)
		b.WriteString("\n\nq: back to dashboard")
	}

	b.WriteString("\n\nctrl+l: logout  ctrl+c: quit\n")
	return b.String()
}

func (m Model) viewLogin(b *strings.Builder, sc viewstate.LoginScreen) {
	title, other := "Login", "Register"
	if sc.Mode == viewstate.ModeRegister {
		title, other = "Register", "Login"
	}
	fmt.Fprintf(b, "%s\n\n", title)
	fmt.Fprintf(b, "Username: %s\n", m.username.View())
	fmt.Fprintf(b, "Password: %s\n\n", m.password.View())
	m.action(b, "enter: "+strings.ToLower(title))
	fmt.Fprintf(b, "\nctrl+t: switch to %s", strings.ToLower(other))
}

func (m Model) viewDashboard(b *strings.Builder, sc viewstate.DashboardScreen) {
	fmt.Fprintf(b, "Welcome, %s\n\n", m.state.Session.Username)
	if sc.HasTutor {
		p := m.state.Profile
		fmt.Fprintf(b, "Grade:   %s\nSubject: %s\nTutor:   %s\n\n", p.Grade, p.Subject, p.TutorName)
		m.action(b, "enter: generate quiz")
		return
	}

	b.WriteString("Choose your grade and subject\n\n")
	m.picker(b, pickGrade, "Grade:  ", label(catalog.Grades, m.grade))
	m.picker(b, pickSubject, "Subject:", label(catalog.Subjects, m.subject))
	b.WriteString("\n")
	m.action(b, "enter: find my tutor")
}

func (m Model) picker(b *strings.Builder, field int, name, value string) {
	cursor := " "
	if m.pick == field {
		cursor = ">"
	}
	if value == "" {
		value = "select"
	}
	fmt.Fprintf(b, "%s %s < %s >\n", cursor, name, value)
}

// action writes the screen's submit hint, or the pending notice while a call
// is outstanding.
func (m Model) action(b *strings.Builder, hint string) {
	if m.state.Pending {
		b.WriteString(processing)
		return
	}
	b.WriteString(hint)
}
