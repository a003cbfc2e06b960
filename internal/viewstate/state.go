// Package viewstate is the client's view controller: an explicit state
// machine over the Login, Dashboard and Quiz screens, a pure reducer that
// turns user actions into at most one backend request, and a Controller
// that runs those requests against the tutoring API.
package viewstate

import "fmt"

type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

func (m AuthMode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Screen is one of LoginScreen, DashboardScreen or QuizScreen.
type Screen interface {
	Name() string
	screen()
}

type LoginScreen struct {
	Mode AuthMode
}

type DashboardScreen struct {
	HasTutor bool
}

type QuizScreen struct {
	Quiz Quiz
}

func (LoginScreen) screen()     {}
func (DashboardScreen) screen() {}
func (QuizScreen) screen()      {}

func (s LoginScreen) Name() string { return "login/" + s.Mode.String() }

func (s DashboardScreen) Name() string {
	if s.HasTutor {
		return "dashboard/tutor"
	}
	return "dashboard"
}

func (QuizScreen) Name() string { return "quiz" }

type Session struct {
	Username string
	Password string
}

type Profile struct {
	Grade     string
	Subject   string
	TutorName string
}

type Quiz struct {
	Topic      string
	Difficulty string
	Content    string
}

type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageError
	MessageNotice
)

// Message is the single error/notice slot shown above the current screen.
type Message struct {
	Kind MessageKind
	Text string
}

func errorMessage(text string) Message  { return Message{Kind: MessageError, Text: text} }
func noticeMessage(text string) Message { return Message{Kind: MessageNotice, Text: text} }

func (m Message) IsZero() bool { return m.Kind == MessageNone }

// State is everything the renderer needs. It is a value: reducers return a
// new one and never share mutable parts.
type State struct {
	Screen  Screen
	Session Session
	Profile Profile
	Message Message
	// Pending is set while a backend call is outstanding.
	Pending bool

	// bumped on logout so answers to calls made before it are dropped
	epoch uint64
}

func Initial() State {
	return State{Screen: LoginScreen{Mode: ModeLogin}}
}

// Mode is the auth mode on the Login screen, ModeLogin elsewhere.
func (s State) Mode() AuthMode {
	if l, ok := s.Screen.(LoginScreen); ok {
		return l.Mode
	}
	return ModeLogin
}

func (s State) HasTutor() bool {
	switch sc := s.Screen.(type) {
	case DashboardScreen:
		return sc.HasTutor
	case QuizScreen:
		return true
	}
	return false
}

func (s State) String() string {
	return fmt.Sprintf("%s pending=%t", s.Screen.Name(), s.Pending)
}
