package gemini

import (
	"context"
	"encoding/json"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/util"
)

//go:embed prompts/strategist.md
var strategistTemplate string

// Strategist plans the interview arc.
type Strategist struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewStrategist creates the strategy-planning collaborator.
func NewStrategist(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Strategist {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Strategist{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

var _ ai.Strategist = (*Strategist)(nil)

// Plan returns a short interview strategy derived from the profile and the
// company intel. The strategy is advisory text, not parsed structure.
func (s *Strategist) Plan(ctx context.Context, profile *ai.Profile, companyIntel string) (string, error) {
	profileJSON := "{}"
	if profile != nil {
		if data, err := json.MarshalIndent(profile, "", "  "); err == nil {
			profileJSON = string(data)
		}
	}

	prompt := strings.NewReplacer(
		"{{PROFILE_JSON}}", profileJSON,
		"{{COMPANY_INTEL}}", companyIntel,
	).Replace(strategistTemplate)

	strategy, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.logger.Debug("strategist response",
		zap.String("strategy_preview", util.TruncateForLog(strategy, s.maxLogLen)),
	)

	return strings.TrimSpace(strategy), nil
}
