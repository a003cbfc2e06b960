// Package apiclient talks JSON to the tutoring API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mytutor/internal/util"
	"mytutor/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// APIError is a non-2xx answer. Detail is empty when the body carried no
// string detail.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout bounds each call. Zero means wait forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	Grade     string `json:"grade"`
	Subject   string `json:"subject"`
	TutorName string `json:"tutor_name"`
}

// HasTutor reports whether the account already has a tutor on file.
func (r *LoginResponse) HasTutor() bool {
	return r.TutorName != ""
}

type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type selectSubjectRequest struct {
	Username string `json:"username"`
	Grade    string `json:"grade"`
	Subject  string `json:"subject"`
}

type SelectSubjectResponse struct {
	Message   string `json:"message"`
	TutorName string `json:"tutor_name"`
}

type quizRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

type QuizResponse struct {
	Topic       string `json:"topic"`
	Difficulty  string `json:"difficulty"`
	QuizContent string `json:"quiz_content"`
}

type TutorResponse struct {
	Message   string `json:"message"`
	TutorName string `json:"tutor_name"`
	Grade     string `json:"grade"`
	Subject   string `json:"subject"`
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

type questionRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", credentials{username, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/register", credentials{username, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SelectSubject(ctx context.Context, username, grade, subject string) (*SelectSubjectResponse, error) {
	var out SelectSubjectResponse
	if err := c.do(ctx, http.MethodPost, "/select-subject", selectSubjectRequest{username, grade, subject}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateQuiz(ctx context.Context, topic, difficulty string) (*QuizResponse, error) {
	var out QuizResponse
	if err := c.do(ctx, http.MethodPost, "/generate-quiz", quizRequest{topic, difficulty}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TutorResponse(ctx context.Context, username string) (*TutorResponse, error) {
	var out TutorResponse
	if err := c.do(ctx, http.MethodGet, "/tutor-response/"+url.PathEscape(username), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summarize(ctx context.Context, text string) (*SummarizeResponse, error) {
	var out SummarizeResponse
	if err := c.do(ctx, http.MethodPost, "/summarize", summarizeRequest{text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AnswerQuestion(ctx context.Context, question, background string) (*AnswerResponse, error) {
	var out AnswerResponse
	if err := c.do(ctx, http.MethodPost, "/answer-question", questionRequest{question, background}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) (err error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(util.RequestIDHeader, requestID)

	ctx, span := tracing.StartClientSpan(ctx, method+" "+path, req.Header)
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", requestID),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: detailOf(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// detailOf pulls a string "detail" out of an error body. Validation errors
// that carry a list, and bodies that are not JSON, yield "".
func detailOf(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

// AsAPIError unwraps err into an *APIError when it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
