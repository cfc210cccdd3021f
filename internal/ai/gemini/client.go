// Package gemini implements the interview collaborators on top of the
// Google GenAI API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/mockmate/mockmate/internal/util"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 2
	retryBaseDelay    = 2 * time.Second
)

// contentGenerator is the prompt-in/text-out surface the collaborators use.
// It is satisfied by *Generator and by stubs in tests.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Generator wraps the Google GenAI client to provide simple prompt-based
// interactions with bounded retries on temporary API errors.
type Generator struct {
	client     *genai.Client
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{client: client, model: model, maxRetries: maxRetries, logger: logger}, nil
}

// GenerateContent sends the prompt to Gemini and returns the first textual
// response, retrying temporary failures up to the configured budget.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			lastErr = err
			if !isTemporary(err) || attempt == g.maxRetries {
				return "", fmt.Errorf("generate content: %w", err)
			}

			delay := retryBaseDelay * time.Duration(attempt)
			g.logger.Warn("temporary gemini error, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", g.maxRetries),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if waitErr := util.WaitFor(ctx, delay); waitErr != nil {
				return "", waitErr
			}
			continue
		}

		output := collectText(resp)
		if output == "" {
			return "", errors.New("gemini api returned empty response")
		}
		return output, nil
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func collectText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// isTemporary reports whether the API error is worth retrying. Server-side
// failures are; quota exhaustion is not, since its retry delay exceeds any
// sensible interactive wait.
func isTemporary(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code >= http.StatusInternalServerError {
		return true
	}
	if apiErr.Code == http.StatusTooManyRequests {
		return !strings.Contains(strings.ToLower(apiErr.Message), "quota")
	}
	return false
}
