package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/util"
)

//go:embed prompts/reporter.md
var reporterTemplate string

// Reporter writes the final verdict and improvement roadmap.
type Reporter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewReporter creates the report-generation collaborator.
func NewReporter(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Reporter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reporter{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

var _ ai.Reporter = (*Reporter)(nil)

// Report generates the final assessment. A response that is not the agreed
// JSON shape is still useful prose, so it degrades to a verdict-only report
// instead of an error.
func (r *Reporter) Report(ctx context.Context, req *ai.ReportRequest) (*ai.Report, error) {
	if req == nil {
		return nil, fmt.Errorf("report request is required")
	}

	profileJSON := "{}"
	if req.Profile != nil {
		if data, err := json.MarshalIndent(req.Profile, "", "  "); err == nil {
			profileJSON = string(data)
		}
	}

	failedTopics := "none"
	if len(req.FailedTopics) > 0 {
		failedTopics = strings.Join(req.FailedTopics, "; ")
	}

	earlyTermination := "no"
	if req.EarlyTermination != "" {
		earlyTermination = req.EarlyTermination
	}

	prompt := strings.NewReplacer(
		"{{CANDIDATE}}", req.Candidate,
		"{{COMPANY}}", req.Company,
		"{{ROLE}}", req.Role,
		"{{OVERALL_SCORE}}", fmt.Sprintf("%.1f", req.OverallScore),
		"{{EARLY_TERMINATION}}", earlyTermination,
		"{{FAILED_TOPICS}}", failedTopics,
		"{{PROFILE_JSON}}", profileJSON,
		"{{TRANSCRIPT}}", renderFeedback(req.Transcript),
	).Replace(reporterTemplate)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("reporter response",
		zap.String("response_preview", util.TruncateForLog(raw, r.maxLogLen)),
	)

	report, err := parseReport(raw)
	if err != nil {
		r.logger.Warn("unstructured report response, using it as the verdict", zap.Error(err))
		return &ai.Report{Verdict: strings.TrimSpace(raw)}, nil
	}

	return report, nil
}

func parseReport(raw string) (*ai.Report, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse reporter response: %w", err)
	}

	verdict := coerceString(data["verdict"])
	if verdict == "" {
		return nil, fmt.Errorf("reporter response has no verdict")
	}

	return &ai.Report{
		Verdict: verdict,
		Roadmap: coerceString(data["roadmap"]),
	}, nil
}

func renderFeedback(transcript []ai.TurnSummary) string {
	if len(transcript) == 0 {
		return "(no questions were answered)"
	}

	var builder strings.Builder
	for _, turn := range transcript {
		fmt.Fprintf(&builder, "Question %d (%s) scored %.1f/10\n", turn.Number, turn.Stage, turn.Score)
		fmt.Fprintf(&builder, "  Q: %s\n", turn.Question)
		answer := turn.Answer
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&builder, "  A: %s\n", answer)
		if turn.Strengths != "" {
			fmt.Fprintf(&builder, "  Strengths: %s\n", turn.Strengths)
		}
		if turn.Weaknesses != "" {
			fmt.Fprintf(&builder, "  Weaknesses: %s\n", turn.Weaknesses)
		}
		if turn.Tip != "" {
			fmt.Fprintf(&builder, "  Tip: %s\n", turn.Tip)
		}
	}
	return strings.TrimSpace(builder.String())
}
