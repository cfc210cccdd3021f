package gemini

import (
	"context"
	"errors"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/util"
)

//go:embed prompts/researcher.md
var researcherTemplate string

// Researcher summarizes what is known about the target company.
type Researcher struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewResearcher creates the company-research collaborator.
func NewResearcher(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Researcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Researcher{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

var _ ai.Researcher = (*Researcher)(nil)

// Research returns a short intel summary for the company.
func (r *Researcher) Research(ctx context.Context, company string) (string, error) {
	if strings.TrimSpace(company) == "" {
		return "", errors.New("company name is required")
	}

	prompt := strings.ReplaceAll(researcherTemplate, "{{COMPANY}}", company)

	intel, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	r.logger.Debug("researcher response",
		zap.String("company", company),
		zap.String("intel_preview", util.TruncateForLog(intel, r.maxLogLen)),
	)

	return strings.TrimSpace(intel), nil
}
