package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mytutor/internal/app"
	"mytutor/internal/config"
	"mytutor/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	server    string
	configDir string
}

// newHarness serves the real API over httptest with a canned model behind
// it, and writes a client config that keeps logs in a temp dir.
func newHarness(t *testing.T) *harness {
	dir := t.TempDir()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"1. Name a noble gas."}}]}`))
	}))
	t.Cleanup(llm.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(dir, "api.db"),
		},
		AI:        config.AIConfig{BaseURL: llm.URL},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	require.NoError(t, err)
	srv := httptest.NewServer(app.New(cfg, db).Router)
	t.Cleanup(srv.Close)

	yaml := fmt.Sprintf("log:\n  file: %s\nclient:\n  base_url: %s\n", filepath.Join(dir, "logs", "app.log"), srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	return &harness{server: srv.URL, configDir: dir}
}

type result struct {
	out    string
	errOut string
	err    error
}

func (h *harness) run(stdin string, password string, args ...string) result {
	c := newCLI()
	c.readPassword = func(int) ([]byte, error) { return []byte(password), nil }

	var out, errOut bytes.Buffer
	err := c.execute(context.Background(), append([]string{"--config", h.configDir}, args...),
		strings.NewReader(stdin), &out, &errOut)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func TestCLI_AccountTutorAndQuiz(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "", "register", "-u", "asha", "-p", "s3cret")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Registration successful! Please login.")

	r = h.run("", "", "register", "-u", "asha", "-p", "s3cret")
	assert.EqualError(t, r.err, "Username already exists")

	r = h.run("", "", "login", "-u", "asha", "-p", "s3cret")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Logged in as asha")
	assert.Contains(t, r.out, "No tutor assigned yet.")

	r = h.run("", "", "login", "-u", "asha", "-p", "wrong")
	assert.EqualError(t, r.err, "Invalid credentials")

	r = h.run("", "", "quiz", "-u", "asha", "-p", "s3cret")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "no tutor yet")

	r = h.run("", "", "tutor", "-u", "asha", "-p", "s3cret", "--grade", "Grade 3", "--subject", "Science")
	assert.EqualError(t, r.err, "Unknown grade Grade 3")

	r = h.run("", "", "tutor", "-u", "asha", "-p", "s3cret", "--grade", "Grade 10", "--subject", "Science")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Grade:   Grade 10")
	assert.Contains(t, r.out, "Subject: Science")
	assert.Contains(t, r.out, "Tutor:")

	r = h.run("", "", "tutor-status", "asha")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Your tutor is")
	assert.Contains(t, r.out, "(Grade 10, Science)")

	r = h.run("", "", "quiz", "-u", "asha", "-p", "s3cret")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Quiz: Science (medium)")
	assert.Contains(t, r.out, "1. Name a noble gas.")
}

func TestCLI_PromptsForPassword(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("", "", "register", "-u", "ravi", "-p", "pw").err)

	r := h.run("", "pw", "login", "-u", "ravi")

	require.NoError(t, r.err)
	assert.Contains(t, r.errOut, "Password: ")
	assert.Contains(t, r.out, "Logged in as ravi")
}

func TestCLI_ServerFlagOverridesConfig(t *testing.T) {
	h := newHarness(t)
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	r := h.run("", "", "--server", down.URL, "login", "-u", "asha", "-p", "pw")

	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), down.URL)
}

func TestCLI_SummarizeAndAsk(t *testing.T) {
	h := newHarness(t)

	r := h.run("A long passage about gases.", "", "summarize")
	require.NoError(t, r.err)
	assert.Equal(t, "1. Name a noble gas.\n", r.out)

	r = h.run("", "", "summarize", "   ")
	assert.EqualError(t, r.err, "nothing to summarize")

	r = h.run("", "", "ask", "--context", "Helium is inert.", "Which", "gas?")
	require.NoError(t, r.err)
	assert.Equal(t, "1. Name a noble gas.\n", r.out)
}

func TestCLI_TutorStatusUnknownUser(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "", "tutor-status", "ghost")

	assert.EqualError(t, r.err, "User not found")
}
