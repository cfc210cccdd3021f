package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/util"
)

//go:embed prompts/profiler.md
var profilerTemplate string

// Profiler analyzes a resume against a job description.
type Profiler struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewProfiler creates the profile-analysis collaborator.
func NewProfiler(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Profiler {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Profiler{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

var _ ai.Profiler = (*Profiler)(nil)

// Analyze extracts the structured profile. Unlike answer scoring there is no
// neutral default here: the interview cannot be planned without a profile,
// so malformed output is an error.
func (p *Profiler) Analyze(ctx context.Context, resumeText, jobDescription string) (*ai.Profile, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, errors.New("resume text is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, errors.New("job description is required")
	}

	prompt := strings.NewReplacer(
		"{{RESUME}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(profilerTemplate)

	p.logger.Debug("profiler request",
		zap.Int("resume_length", utf8.RuneCountInString(resumeText)),
		zap.Int("job_description_length", utf8.RuneCountInString(jobDescription)),
	)

	raw, err := p.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("profiler response",
		zap.String("response_preview", util.TruncateForLog(raw, p.maxLogLen)),
	)

	return parseProfile(raw)
}

func parseProfile(raw string) (*ai.Profile, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse profiler response: %w", err)
	}

	var decoded struct {
		MatchedSkills   []string `mapstructure:"matched_skills"`
		MissingSkills   []string `mapstructure:"missing_skills"`
		Strengths       []string `mapstructure:"strengths"`
		Weaknesses      []string `mapstructure:"weaknesses"`
		ExperienceLevel string   `mapstructure:"experience_level"`
		RedFlags        []string `mapstructure:"red_flags"`
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &decoded,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build profile decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode profiler response: %w", err)
	}

	return &ai.Profile{
		MatchedSkills:   decoded.MatchedSkills,
		MissingSkills:   decoded.MissingSkills,
		Strengths:       decoded.Strengths,
		Weaknesses:      decoded.Weaknesses,
		ExperienceLevel: strings.TrimSpace(decoded.ExperienceLevel),
		RedFlags:        decoded.RedFlags,
	}, nil
}
