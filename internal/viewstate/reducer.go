package viewstate

import (
	"errors"
	"strings"

	"mytutor/internal/apiclient"
	"mytutor/internal/catalog"
)

var (
	ErrInvalidTransition = errors.New("action not allowed on this screen")
	ErrBusy              = errors.New("a request is already in flight")
	ErrMissingField      = errors.New("required field is empty")
	ErrUnknownGrade      = errors.New("unknown grade")
	ErrUnknownSubject    = errors.New("unknown subject")
)

const RegisteredNotice = "Registration successful! Please login."

// Action is a user intent fed to Reduce.
type Action interface {
	action()
}

type SubmitCredentials struct {
	Username string
	Password string
}

type SubmitProfile struct {
	Grade   string
	Subject string
}

type RequestQuiz struct{}

type ReturnToDashboard struct{}

type Logout struct{}

type ToggleAuthMode struct{}

func (SubmitCredentials) action() {}
func (SubmitProfile) action()     {}
func (RequestQuiz) action()       {}
func (ReturnToDashboard) action() {}
func (Logout) action()            {}
func (ToggleAuthMode) action()    {}

type RequestKind int

const (
	RequestLogin RequestKind = iota
	RequestRegister
	RequestSelectSubject
	RequestGenerateQuiz
)

func (k RequestKind) String() string {
	switch k {
	case RequestLogin:
		return "login"
	case RequestRegister:
		return "register"
	case RequestSelectSubject:
		return "select-subject"
	case RequestGenerateQuiz:
		return "generate-quiz"
	}
	return "unknown"
}

// FailureText is shown when the backend rejects a call without a detail.
func (k RequestKind) FailureText() string {
	switch k {
	case RequestSelectSubject:
		return "Failed to select subject"
	case RequestGenerateQuiz:
		return "Failed to generate quiz"
	}
	return "Authentication failed"
}

// Request is the single backend call an action asks for.
type Request struct {
	Kind       RequestKind
	Username   string
	Password   string
	Grade      string
	Subject    string
	Topic      string
	Difficulty string

	epoch uint64
}

// Response holds what Settle needs from a successful call.
type Response struct {
	Login       *apiclient.LoginResponse
	TutorName   string
	QuizContent string
}

// Reduce applies a user action. Rejected actions return the state
// unchanged (apart from a validation message) and a non-nil error; no
// request is issued for them.
func Reduce(s State, a Action) (State, *Request, error) {
	switch a := a.(type) {
	case SubmitCredentials:
		return submitCredentials(s, a)
	case SubmitProfile:
		return submitProfile(s, a)
	case RequestQuiz:
		return requestQuiz(s)
	case ReturnToDashboard:
		if _, ok := s.Screen.(QuizScreen); !ok {
			return s, nil, ErrInvalidTransition
		}
		s.Screen = DashboardScreen{HasTutor: true}
		s.Message = Message{}
		return s, nil, nil
	case Logout:
		next := Initial()
		next.Pending = s.Pending
		next.epoch = s.epoch + 1
		return next, nil, nil
	case ToggleAuthMode:
		l, ok := s.Screen.(LoginScreen)
		if !ok {
			return s, nil, ErrInvalidTransition
		}
		if l.Mode == ModeLogin {
			l.Mode = ModeRegister
		} else {
			l.Mode = ModeLogin
		}
		s.Screen = l
		s.Message = Message{}
		return s, nil, nil
	}
	return s, nil, ErrInvalidTransition
}

func submitCredentials(s State, a SubmitCredentials) (State, *Request, error) {
	l, ok := s.Screen.(LoginScreen)
	if !ok {
		return s, nil, ErrInvalidTransition
	}
	if s.Pending {
		return s, nil, ErrBusy
	}
	if strings.TrimSpace(a.Username) == "" || a.Password == "" {
		s.Message = errorMessage("Username and password are required")
		return s, nil, ErrMissingField
	}

	s.Session = Session{Username: a.Username, Password: a.Password}
	s.Message = Message{}
	s.Pending = true

	kind := RequestLogin
	if l.Mode == ModeRegister {
		kind = RequestRegister
	}
	return s, &Request{
		Kind:     kind,
		Username: a.Username,
		Password: a.Password,
		epoch:    s.epoch,
	}, nil
}

func submitProfile(s State, a SubmitProfile) (State, *Request, error) {
	d, ok := s.Screen.(DashboardScreen)
	if !ok || d.HasTutor {
		return s, nil, ErrInvalidTransition
	}
	if s.Pending {
		return s, nil, ErrBusy
	}
	switch {
	case a.Grade == "" || a.Subject == "":
		s.Message = errorMessage("Please select both a grade and a subject")
		return s, nil, ErrMissingField
	case !catalog.IsGrade(a.Grade):
		s.Message = errorMessage("Unknown grade " + a.Grade)
		return s, nil, ErrUnknownGrade
	case !catalog.IsSubject(a.Subject):
		s.Message = errorMessage("Unknown subject " + a.Subject)
		return s, nil, ErrUnknownSubject
	}

	s.Message = Message{}
	s.Pending = true
	return s, &Request{
		Kind:     RequestSelectSubject,
		Username: s.Session.Username,
		Grade:    a.Grade,
		Subject:  a.Subject,
		epoch:    s.epoch,
	}, nil
}

func requestQuiz(s State) (State, *Request, error) {
	d, ok := s.Screen.(DashboardScreen)
	if !ok || !d.HasTutor {
		return s, nil, ErrInvalidTransition
	}
	if s.Pending {
		return s, nil, ErrBusy
	}

	s.Message = Message{}
	s.Pending = true
	return s, &Request{
		Kind:       RequestGenerateQuiz,
		Topic:      s.Profile.Subject,
		Difficulty: catalog.DefaultDifficulty,
		epoch:      s.epoch,
	}, nil
}

// Settle folds the outcome of req into s. Pending is always cleared; the
// outcome itself is dropped when the user logged out while req was in
// flight.
func Settle(s State, req Request, resp Response, err error) State {
	s.Pending = false
	if req.epoch != s.epoch {
		return s
	}
	if err != nil {
		s.Message = errorMessage(FailureMessage(req.Kind, err))
		return s
	}

	switch req.Kind {
	case RequestLogin:
		if resp.Login != nil && resp.Login.HasTutor() {
			s.Profile = Profile{
				Grade:     resp.Login.Grade,
				Subject:   resp.Login.Subject,
				TutorName: resp.Login.TutorName,
			}
			s.Screen = DashboardScreen{HasTutor: true}
		} else {
			s.Profile = Profile{}
			s.Screen = DashboardScreen{HasTutor: false}
		}
	case RequestRegister:
		s.Screen = LoginScreen{Mode: ModeLogin}
		s.Message = noticeMessage(RegisteredNotice)
	case RequestSelectSubject:
		s.Profile = Profile{
			Grade:     req.Grade,
			Subject:   req.Subject,
			TutorName: resp.TutorName,
		}
		s.Screen = DashboardScreen{HasTutor: true}
	case RequestGenerateQuiz:
		s.Screen = QuizScreen{Quiz: Quiz{
			Topic:      req.Topic,
			Difficulty: req.Difficulty,
			Content:    resp.QuizContent,
		}}
	}
	return s
}

// FailureMessage is the text shown for a failed call: the backend's detail
// when it sent one, the per-call default for other rejections, and the
// error text for transport failures.
func FailureMessage(kind RequestKind, err error) string {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return kind.FailureText()
	}
	return err.Error()
}
