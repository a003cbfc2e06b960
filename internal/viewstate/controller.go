package viewstate

import (
	"context"
	"fmt"
	"sync"

	"mytutor/internal/apiclient"

	"go.uber.org/zap"
)

// API is the part of the tutoring API the view controller calls.
type API interface {
	Login(ctx context.Context, username, password string) (*apiclient.LoginResponse, error)
	Register(ctx context.Context, username, password string) (*apiclient.RegisterResponse, error)
	SelectSubject(ctx context.Context, username, grade, subject string) (*apiclient.SelectSubjectResponse, error)
	GenerateQuiz(ctx context.Context, topic, difficulty string) (*apiclient.QuizResponse, error)
}

// Perform issues req against api.
func Perform(ctx context.Context, api API, req Request) (Response, error) {
	switch req.Kind {
	case RequestLogin:
		resp, err := api.Login(ctx, req.Username, req.Password)
		if err != nil {
			return Response{}, err
		}
		return Response{Login: resp}, nil
	case RequestRegister:
		_, err := api.Register(ctx, req.Username, req.Password)
		return Response{}, err
	case RequestSelectSubject:
		resp, err := api.SelectSubject(ctx, req.Username, req.Grade, req.Subject)
		if err != nil {
			return Response{}, err
		}
		return Response{TutorName: resp.TutorName}, nil
	case RequestGenerateQuiz:
		resp, err := api.GenerateQuiz(ctx, req.Topic, req.Difficulty)
		if err != nil {
			return Response{}, err
		}
		return Response{QuizContent: resp.QuizContent}, nil
	}
	return Response{}, fmt.Errorf("unknown request kind %d", req.Kind)
}

// Controller owns a State and runs each action's request to completion.
// It is safe to call from several goroutines; a submit made while another
// call is outstanding fails with ErrBusy.
type Controller struct {
	mu    sync.Mutex
	state State
	api   API
	log   *zap.Logger
}

func NewController(api API, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		state: Initial(),
		api:   api,
		log:   log,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch reduces a, performs the resulting request if any, and settles
// it. The returned error is the reducer's rejection or the call's failure;
// in both cases the message slot already holds what to show.
func (c *Controller) Dispatch(ctx context.Context, a Action) error {
	c.mu.Lock()
	next, req, err := Reduce(c.state, a)
	c.state = next
	c.mu.Unlock()

	if err != nil {
		c.log.Debug("action rejected", zap.String("action", fmt.Sprintf("%T", a)), zap.Error(err))
		return err
	}
	if req == nil {
		c.log.Debug("view changed", zap.String("screen", next.Screen.Name()))
		return nil
	}

	resp, callErr := Perform(ctx, c.api, *req)

	c.mu.Lock()
	c.state = Settle(c.state, *req, resp, callErr)
	settled := c.state
	c.mu.Unlock()

	if callErr != nil {
		c.log.Info("request failed",
			zap.Stringer("kind", req.Kind),
			zap.String("message", settled.Message.Text),
			zap.Error(callErr),
		)
		return callErr
	}
	c.log.Info("request settled",
		zap.Stringer("kind", req.Kind),
		zap.String("screen", settled.Screen.Name()),
	)
	return nil
}

func (c *Controller) SubmitCredentials(ctx context.Context, username, password string) error {
	return c.Dispatch(ctx, SubmitCredentials{Username: username, Password: password})
}

func (c *Controller) SubmitProfile(ctx context.Context, grade, subject string) error {
	return c.Dispatch(ctx, SubmitProfile{Grade: grade, Subject: subject})
}

func (c *Controller) RequestQuiz(ctx context.Context) error {
	return c.Dispatch(ctx, RequestQuiz{})
}

func (c *Controller) ReturnToDashboard() error {
	return c.Dispatch(context.Background(), ReturnToDashboard{})
}

func (c *Controller) Logout() error {
	return c.Dispatch(context.Background(), Logout{})
}

func (c *Controller) ToggleAuthMode() error {
	return c.Dispatch(context.Background(), ToggleAuthMode{})
}
