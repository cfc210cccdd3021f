package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/util"
)

//go:embed prompts/interviewer.md
var interviewerTemplate string

var stageInstructions = map[string]string{
	"intro": "Ask a targeted opening about the candidate's most relevant experience " +
		"for this role. Never open with a generic 'tell me about yourself'.",
	"technical": "Ask a hard technical question aimed at one of the candidate's weak areas. " +
		"Demand implementation detail: data structures, algorithms, trade-offs, scale. " +
		"Make it specific to the role and company.",
	"behavioral": "Ask a challenging behavioral question about failure, conflict or missed " +
		"deadlines. Demand specifics: names, dates, numbers, outcomes.",
	"closing": "Confront a gap: pick a missing skill from the profile and ask directly how " +
		"the candidate plans to ramp up on it.",
}

var personaTones = map[string]string{
	"supportive": "Be professional but direct. If the candidate struggles, guide with " +
		"leading questions without giving answers away.",
	"neutral": "Be a standard tech interviewer: professional, fact-checking, probing for " +
		"depth. No fluff.",
	"challenging": "You are a senior staff engineer known for being tough. Be blunt about " +
		"weak answers and demand technical precision.",
}

// Interviewer generates interview questions.
type Interviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewInterviewer creates the question-generation collaborator.
func NewInterviewer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Interviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Interviewer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

var _ ai.Interviewer = (*Interviewer)(nil)

// NextQuestion produces the next question for the session. On pushback
// (req.Intensify) it re-asks req.Topic with heightened demand instead of
// opening a new topic.
func (i *Interviewer) NextQuestion(ctx context.Context, req *ai.QuestionRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("question request is required")
	}

	prompt := buildQuestionPrompt(req)

	i.logger.Debug("interviewer request",
		zap.String("stage", req.Stage),
		zap.String("persona", req.Persona),
		zap.Bool("intensify", req.Intensify),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	question, err := i.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	i.logger.Debug("interviewer response",
		zap.String("question_preview", util.TruncateForLog(question, i.maxLogLen)),
	)

	return strings.TrimSpace(question), nil
}

func buildQuestionPrompt(req *ai.QuestionRequest) string {
	tone, ok := personaTones[req.Persona]
	if !ok {
		tone = personaTones["neutral"]
	}

	instructions, ok := stageInstructions[req.Stage]
	if !ok {
		instructions = "Continue the conversation naturally."
	}

	profileJSON := "{}"
	if req.Profile != nil {
		if data, err := json.MarshalIndent(req.Profile, "", "  "); err == nil {
			profileJSON = string(data)
		}
	}

	pushback := ""
	if req.Intensify {
		pushback = fmt.Sprintf(`[Pushback]
The candidate's last answer on the topic %q was unacceptable. Do not move on.
Rephrase the same topic as a harder, more specific demand: require concrete
implementations, numbers and measurable outcomes. Be stern, like a real
interviewer who will not accept a vague answer twice.`, req.Topic)
	}

	return strings.NewReplacer(
		"{{ROLE}}", req.Role,
		"{{COMPANY}}", req.Company,
		"{{PERSONA_TONE}}", tone,
		"{{STAGE}}", req.Stage,
		"{{STAGE_INSTRUCTIONS}}", instructions,
		"{{STRATEGY}}", req.Strategy,
		"{{COMPANY_INTEL}}", req.CompanyIntel,
		"{{PROFILE_JSON}}", profileJSON,
		"{{TRANSCRIPT}}", renderTranscript(req.Transcript),
		"{{PUSHBACK_BLOCK}}", pushback,
	).Replace(interviewerTemplate)
}

func renderTranscript(transcript []ai.TurnSummary) string {
	if len(transcript) == 0 {
		return "(no questions asked yet)"
	}

	var builder strings.Builder
	for _, turn := range transcript {
		fmt.Fprintf(&builder, "Q%d (%s, scored %.1f/10): %s\n", turn.Number, turn.Stage, turn.Score, turn.Question)
		answer := turn.Answer
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&builder, "A%d: %s\n", turn.Number, answer)
	}
	return strings.TrimSpace(builder.String())
}
