package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/util"
)

//go:embed prompts/critic.md
var criticTemplate string

const defaultMaxLogLength = 200

// Critic scores answers on the 0-10 scale with structured feedback.
type Critic struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewCritic creates the scoring collaborator.
func NewCritic(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Critic {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Critic{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

var _ ai.Critic = (*Critic)(nil)

// Evaluate scores one answer. A transport failure is returned as an error;
// a malformed response degrades to a flagged neutral judgment instead,
// because the provider did answer, just not in the agreed schema.
func (c *Critic) Evaluate(ctx context.Context, req *ai.EvaluationRequest) (*ai.Judgment, error) {
	if req == nil {
		return nil, fmt.Errorf("evaluation request is required")
	}

	signal := strings.TrimSpace(req.Signal)
	if signal == "" {
		signal = "none"
	}

	prompt := strings.NewReplacer(
		"{{STAGE}}", req.Stage,
		"{{QUESTION}}", req.Question,
		"{{ANSWER}}", req.Answer,
		"{{SIGNAL}}", signal,
	).Replace(criticTemplate)

	c.logger.Debug("critic request",
		zap.String("stage", req.Stage),
		zap.Int("answer_length", utf8.RuneCountInString(req.Answer)),
		zap.String("question_preview", util.TruncateForLog(req.Question, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("critic response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, c.maxLogLen)),
	)

	judgment, err := parseJudgment(raw)
	if err != nil {
		c.logger.Warn("unparseable evaluation, substituting neutral judgment",
			zap.Error(err),
			zap.String("response_preview", util.TruncateForLog(raw, c.maxLogLen)),
		)
		return &ai.Judgment{
			Score:     5,
			Tip:       "This answer could not be evaluated; treat the score as low-confidence.",
			Sentiment: "unknown",
			Degraded:  true,
		}, nil
	}

	return judgment, nil
}

func parseJudgment(raw string) (*ai.Judgment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse critic response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, errors.New("critic response has no numeric score")
	}

	return &ai.Judgment{
		Score:      clampScore(score),
		Strengths:  coerceString(data["strengths"]),
		Weaknesses: coerceString(data["weaknesses"]),
		Tip:        coerceString(data["tip"]),
		Sentiment:  coerceString(data["sentiment"]),
	}, nil
}
