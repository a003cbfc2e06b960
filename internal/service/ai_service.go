package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"mytutor/internal/catalog"
	"mytutor/internal/config"
	"mytutor/internal/util"
)

const summaryInputLimit = 1024

type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// UpdateConfig swaps the backend settings; requests already running keep
// the old ones.
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.client = &http.Client{Timeout: cfg.Timeout}
}

func (s *AIService) settings() (config.AIConfig, *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.client
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func QuizPrompt(topic, difficulty string) string {
	if difficulty == "" {
		difficulty = catalog.DefaultDifficulty
	}
	return fmt.Sprintf("Create a 5-question %s quiz about %s:\n", difficulty, topic)
}

func AnswerPrompt(question, background string) string {
	return fmt.Sprintf("Question: %s\nContext: %s\nAnswer:", question, background)
}

func (s *AIService) GenerateQuiz(ctx context.Context, topic, difficulty string) (string, error) {
	return s.Complete(ctx, "You are a tutor writing practice quizzes for school students.", QuizPrompt(topic, difficulty))
}

func (s *AIService) Summarize(ctx context.Context, text string) (string, error) {
	if r := []rune(text); len(r) > summaryInputLimit {
		text = string(r[:summaryInputLimit])
	}
	return s.Complete(ctx, "Summarize the user's text in a few sentences.", text)
}

func (s *AIService) Answer(ctx context.Context, question, background string) (string, error) {
	return s.Complete(ctx, "You are a patient tutor answering a student's question.", AnswerPrompt(question, background))
}

// Complete sends one system and one user message and returns the first
// choice. util.ErrModelNotLoaded is returned when no backend is configured.
func (s *AIService) Complete(ctx context.Context, system, prompt string) (string, error) {
	cfg, client := s.settings()
	if cfg.BaseURL == "" {
		return "", util.ErrModelNotLoaded
	}

	reqBody := ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}
