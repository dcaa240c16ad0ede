// Package gemini generates question sets with the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"quran-quiz-service/internal/domain"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("gemini api key not configured")

// Config configures the client. Zero values fall back to defaults.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	HTTPClient  *http.Client
}

// Client is a provider.Generator backed by Gemini.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	now         func() time.Time
}

func New(cfg Config) *Client {
	c := &Client{
		httpClient:  cfg.HTTPClient,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		now:         time.Now,
	}
	// no client timeout: the caller's context bounds the request
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.temperature == 0 {
		c.temperature = 1.0
	}
	return c
}

// IsAvailable reports whether an API key is configured.
func (c *Client) IsAvailable() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
	Temperature      float64        `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type questionEnvelope struct {
	Questions []record `json:"questions"`
}

type record struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	QuestionText    string   `json:"questionText"`
	Points          float64  `json:"points"`
	DifficultyLevel float64  `json:"difficultyLevel"`
	ArabicText      string   `json:"arabicText"`
	Options         []string `json:"options"`
	CorrectAnswer   string   `json:"correctAnswer"`
	VersePart1      string   `json:"versePart1"`
	HiddenPart      string   `json:"hiddenPart"`
	VersePart2      string   `json:"versePart2"`
}

// Generate asks the model for a question set. The result is not validated here.
func (c *Client) Generate(ctx context.Context, mode domain.GameMode) ([]domain.Question, error) {
	if !c.IsAvailable() {
		return nil, ErrNotConfigured
	}

	seed := fmt.Sprintf("%d-%s", c.now().UnixMilli(), uuid.NewString())
	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: buildPrompt(mode, seed)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
			Temperature:      c.temperature,
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
		}
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("gemini error %d %s: %s", genResp.Error.Code, genResp.Error.Status, genResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}
	if len(genResp.Candidates) == 0 {
		return nil, errors.New("empty response from gemini")
	}

	var text strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	var envelope questionEnvelope
	if err := json.Unmarshal([]byte(cleanJSONContent(text.String())), &envelope); err != nil {
		return nil, fmt.Errorf("gemini returned invalid JSON: %w", err)
	}

	questions := make([]domain.Question, 0, len(envelope.Questions))
	for _, r := range envelope.Questions {
		questions = append(questions, r.toQuestion())
	}
	return questions, nil
}

func (r record) toQuestion() domain.Question {
	points := int(math.Round(r.Points))
	if domain.Topic(r.Type) == domain.TopicCompleteVerse {
		hidden := r.HiddenPart
		if hidden == "" {
			hidden = r.CorrectAnswer
		}
		q := domain.NewFillBlank(r.ID, r.QuestionText, points, r.VersePart1, hidden, r.VersePart2, r.Options)
		q.DifficultyLevel = int(math.Round(r.DifficultyLevel))
		return q
	}

	q := domain.NewChoice(r.ID, r.QuestionText, points, r.ArabicText, r.Options, r.CorrectAnswer)
	q.Topic = domain.Topic(r.Type)
	q.DifficultyLevel = int(math.Round(r.DifficultyLevel))
	return q
}

func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
