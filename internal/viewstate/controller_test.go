package viewstate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mytutor/internal/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend is a scripted tutoring API. Each route answers with the status
// and body set for it; calls are counted per path.
type backend struct {
	t      *testing.T
	routes map[string]reply
	calls  map[string]*int32

	mu     sync.Mutex
	bodies map[string]map[string]string
}

type reply struct {
	status int
	body   string
}

func newBackend(t *testing.T, routes map[string]reply) (*backend, *apiclient.Client) {
	b := &backend{
		t:      t,
		routes: routes,
		calls:  map[string]*int32{},
		bodies: map[string]map[string]string{},
	}
	for path := range routes {
		b.calls[path] = new(int32)
	}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, apiclient.New(srv.URL)
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	rep, ok := b.routes[r.URL.Path]
	if !ok {
		b.t.Errorf("unexpected call to %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	atomic.AddInt32(b.calls[r.URL.Path], 1)

	var body map[string]string
	json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	b.bodies[r.URL.Path] = body
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	w.Write([]byte(rep.body))
}

func (b *backend) body(path string) map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[path]
}

func (b *backend) count(path string) int {
	return int(atomic.LoadInt32(b.calls[path]))
}

func ok(body string) reply { return reply{http.StatusOK, body} }

func TestController_LoginWithoutTutor(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		"/login": ok(`{"message":"Login successful","username":"asha","grade":null,"subject":null,"tutor_name":null}`),
	})
	c := NewController(api, nil)

	require.NoError(t, c.SubmitCredentials(context.Background(), "asha", "pw"))

	s := c.State()
	assert.Equal(t, DashboardScreen{HasTutor: false}, s.Screen)
	assert.False(t, s.Pending)
	assert.Equal(t, Profile{}, s.Profile)
	assert.Equal(t, "asha", s.Session.Username)
}

func TestController_LoginWithTutor(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		"/login": ok(`{"message":"Login successful","username":"asha","tutor_name":"Ms. Rao","grade":"Grade 9","subject":"Mathematics"}`),
	})
	c := NewController(api, nil)

	require.NoError(t, c.SubmitCredentials(context.Background(), "asha", "pw"))

	s := c.State()
	assert.Equal(t, DashboardScreen{HasTutor: true}, s.Screen)
	assert.Equal(t, Profile{Grade: "Grade 9", Subject: "Mathematics", TutorName: "Ms. Rao"}, s.Profile)
}

func TestController_Register(t *testing.T) {
	b, api := newBackend(t, map[string]reply{
		"/register": ok(`{"message":"User registered successfully","username":"asha"}`),
	})
	c := NewController(api, nil)
	require.NoError(t, c.ToggleAuthMode())

	require.NoError(t, c.SubmitCredentials(context.Background(), "asha", "pw"))

	s := c.State()
	assert.Equal(t, LoginScreen{Mode: ModeLogin}, s.Screen)
	assert.Equal(t, MessageNotice, s.Message.Kind)
	assert.Contains(t, s.Message.Text, "successful")
	assert.Equal(t, 1, b.count("/register"))
	assert.Equal(t, map[string]string{"username": "asha", "password": "pw"}, b.body("/register"))
}

func TestController_SelectSubject(t *testing.T) {
	b, api := newBackend(t, map[string]reply{
		"/login":          ok(`{"message":"Login successful","username":"asha"}`),
		"/select-subject": ok(`{"message":"ok","tutor_name":"Mr. Lee"}`),
	})
	c := NewController(api, nil)
	ctx := context.Background()
	require.NoError(t, c.SubmitCredentials(ctx, "asha", "pw"))

	require.NoError(t, c.SubmitProfile(ctx, "Grade 10", "Science"))

	s := c.State()
	assert.True(t, s.HasTutor())
	assert.Equal(t, Profile{Grade: "Grade 10", Subject: "Science", TutorName: "Mr. Lee"}, s.Profile)
	assert.Equal(t, map[string]string{"username": "asha", "grade": "Grade 10", "subject": "Science"}, b.body("/select-subject"))
}

func TestController_QuizRoundTrip(t *testing.T) {
	b, api := newBackend(t, map[string]reply{
		"/login":         ok(`{"username":"asha","tutor_name":"Ms. Rao","grade":"Grade 9","subject":"Mathematics"}`),
		"/generate-quiz": ok(`{"topic":"Mathematics","difficulty":"medium","quiz_content":"1. What is 7x8?"}`),
	})
	c := NewController(api, nil)
	ctx := context.Background()
	require.NoError(t, c.SubmitCredentials(ctx, "asha", "pw"))

	require.NoError(t, c.RequestQuiz(ctx))

	s := c.State()
	require.IsType(t, QuizScreen{}, s.Screen)
	assert.Equal(t, Quiz{Topic: "Mathematics", Difficulty: "medium", Content: "1. What is 7x8?"}, s.Screen.(QuizScreen).Quiz)
	assert.Equal(t, map[string]string{"topic": "Mathematics", "difficulty": "medium"}, b.body("/generate-quiz"))

	require.NoError(t, c.ReturnToDashboard())
	assert.Equal(t, DashboardScreen{HasTutor: true}, c.State().Screen)
	assert.Equal(t, 1, b.count("/generate-quiz"))
}

func TestController_QuizWithoutTutorMakesNoCall(t *testing.T) {
	b, api := newBackend(t, map[string]reply{
		"/login":         ok(`{"username":"asha"}`),
		"/generate-quiz": ok(`{"quiz_content":"never"}`),
	})
	c := NewController(api, nil)
	require.NoError(t, c.SubmitCredentials(context.Background(), "asha", "pw"))
	before := c.State()

	err := c.RequestQuiz(context.Background())

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, b.count("/generate-quiz"))
	assert.Equal(t, before, c.State())
}

func TestController_DetailErrorLeavesStateUnchanged(t *testing.T) {
	invalid := reply{http.StatusUnauthorized, `{"detail":"Invalid credentials"}`}
	ctx := context.Background()

	t.Run("login", func(t *testing.T) {
		_, api := newBackend(t, map[string]reply{"/login": invalid})
		c := NewController(api, nil)

		err := c.SubmitCredentials(ctx, "asha", "nope")
		require.Error(t, err)

		s := c.State()
		assert.Equal(t, LoginScreen{Mode: ModeLogin}, s.Screen)
		assert.False(t, s.Pending)
		assert.Equal(t, "Invalid credentials", s.Message.Text)
	})

	t.Run("select subject", func(t *testing.T) {
		_, api := newBackend(t, map[string]reply{
			"/login":          ok(`{"username":"asha"}`),
			"/select-subject": invalid,
		})
		c := NewController(api, nil)
		require.NoError(t, c.SubmitCredentials(ctx, "asha", "pw"))

		require.Error(t, c.SubmitProfile(ctx, "Grade 10", "Science"))

		s := c.State()
		assert.Equal(t, DashboardScreen{HasTutor: false}, s.Screen)
		assert.Equal(t, Profile{}, s.Profile)
		assert.Equal(t, "Invalid credentials", s.Message.Text)
	})

	t.Run("quiz", func(t *testing.T) {
		_, api := newBackend(t, map[string]reply{
			"/login":         ok(`{"username":"asha","tutor_name":"Ms. Rao","grade":"Grade 9","subject":"Mathematics"}`),
			"/generate-quiz": invalid,
		})
		c := NewController(api, nil)
		require.NoError(t, c.SubmitCredentials(ctx, "asha", "pw"))

		require.Error(t, c.RequestQuiz(ctx))

		s := c.State()
		assert.Equal(t, DashboardScreen{HasTutor: true}, s.Screen)
		assert.Equal(t, "Invalid credentials", s.Message.Text)
	})
}

func TestController_DefaultMessages(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		"/login":         ok(`{"username":"asha","tutor_name":"Ms. Rao","grade":"Grade 9","subject":"Mathematics"}`),
		"/generate-quiz": {http.StatusInternalServerError, `oops`},
	})
	c := NewController(api, nil)
	ctx := context.Background()
	require.NoError(t, c.SubmitCredentials(ctx, "asha", "pw"))

	require.Error(t, c.RequestQuiz(ctx))
	assert.Equal(t, "Failed to generate quiz", c.State().Message.Text)
}

func TestController_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	api := apiclient.New(srv.URL)
	srv.Close()
	c := NewController(api, nil)

	err := c.SubmitCredentials(context.Background(), "asha", "pw")
	require.Error(t, err)

	s := c.State()
	assert.Equal(t, LoginScreen{Mode: ModeLogin}, s.Screen)
	assert.False(t, s.Pending)
	assert.Equal(t, err.Error(), s.Message.Text)
	assert.True(t, strings.Contains(s.Message.Text, "/login"))
}

func TestController_LogoutFromEveryScreen(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		"/login":         ok(`{"username":"asha","tutor_name":"Ms. Rao","grade":"Grade 9","subject":"Mathematics"}`),
		"/generate-quiz": ok(`{"quiz_content":"Q"}`),
	})
	ctx := context.Background()

	reach := map[string]func(t *testing.T, c *Controller){
		"login":     func(t *testing.T, c *Controller) {},
		"dashboard": func(t *testing.T, c *Controller) { require.NoError(t, c.SubmitCredentials(ctx, "asha", "pw")) },
		"quiz": func(t *testing.T, c *Controller) {
			require.NoError(t, c.SubmitCredentials(ctx, "asha", "pw"))
			require.NoError(t, c.RequestQuiz(ctx))
		},
	}
	for name, setup := range reach {
		t.Run(name, func(t *testing.T) {
			c := NewController(api, nil)
			setup(t, c)

			require.NoError(t, c.Logout())

			s := c.State()
			assert.Equal(t, LoginScreen{Mode: ModeLogin}, s.Screen)
			assert.Equal(t, Session{}, s.Session)
			assert.Equal(t, Profile{}, s.Profile)
			assert.True(t, s.Message.IsZero())
		})
	}
}

// blockingAPI holds Login until release is closed.
type blockingAPI struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAPI) Login(ctx context.Context, username, password string) (*apiclient.LoginResponse, error) {
	close(b.started)
	<-b.release
	return &apiclient.LoginResponse{Username: username}, nil
}

func (b *blockingAPI) Register(context.Context, string, string) (*apiclient.RegisterResponse, error) {
	return &apiclient.RegisterResponse{}, nil
}

func (b *blockingAPI) SelectSubject(context.Context, string, string, string) (*apiclient.SelectSubjectResponse, error) {
	return &apiclient.SelectSubjectResponse{}, nil
}

func (b *blockingAPI) GenerateQuiz(context.Context, string, string) (*apiclient.QuizResponse, error) {
	return &apiclient.QuizResponse{}, nil
}

func TestController_RejectsOverlappingSubmit(t *testing.T) {
	api := &blockingAPI{started: make(chan struct{}), release: make(chan struct{})}
	c := NewController(api, nil)

	done := make(chan error, 1)
	go func() {
		done <- c.SubmitCredentials(context.Background(), "asha", "pw")
	}()

	select {
	case <-api.started:
	case <-time.After(5 * time.Second):
		t.Fatal("login was not issued")
	}
	assert.True(t, c.State().Pending)
	assert.ErrorIs(t, c.SubmitCredentials(context.Background(), "asha", "pw"), ErrBusy)

	close(api.release)
	require.NoError(t, <-done)
	assert.False(t, c.State().Pending)
	assert.Equal(t, DashboardScreen{HasTutor: false}, c.State().Screen)
}
