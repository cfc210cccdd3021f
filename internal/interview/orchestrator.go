package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/logger"
	"github.com/mockmate/mockmate/internal/store"
	"github.com/mockmate/mockmate/internal/util"
)

// Collaborators aggregates the generation dependencies of an orchestrator.
type Collaborators struct {
	Interviewer ai.Interviewer
	Critic      ai.Critic
	Profiler    ai.Profiler
	Researcher  ai.Researcher
	Strategist  ai.Strategist
	Reporter    ai.Reporter
}

// Setup carries the required inputs for a new session.
type Setup struct {
	Candidate      string
	ResumeText     string
	JobDescription string
	Company        string
	Role           string
}

// State is the externally visible decision state after a submitted answer.
type State string

const (
	StateContinuing State = "continuing"
	StatePushback   State = "pushback"
	StateTerminated State = "terminated"
	StateReporting  State = "reporting"
)

// TurnResult is returned for every submitted answer.
type TurnResult struct {
	Decision Decision
	State    State
	// Feedback is the evaluation of the answer just submitted.
	Feedback *ai.Judgment
	// NextQuestion is empty once the session has finished.
	NextQuestion   string
	QuestionNumber int
	// Warnings carries non-fatal degradations, currently persistence
	// failures. In-memory state is never rolled back because of them.
	Warnings []string
}

const (
	failedTopicMaxLen = 50
	transcriptWindow  = 6
)

type phase int

const (
	phaseInit phase = iota
	phaseAwaitingAnswer
	phaseDone
)

// Orchestrator drives one interview session through the question/answer
// loop. It exclusively owns its Session for the session's lifetime and is
// not safe for concurrent use; run independent sessions on independent
// instances.
type Orchestrator struct {
	logger *zap.Logger
	collab Collaborators
	store  store.Store
	now    func() time.Time

	session   *Session
	phase     phase
	question  string
	topic     string
	stage     Stage
	pushbacks int
}

// New creates an orchestrator. The store may be nil, in which case nothing
// is persisted.
func New(collab Collaborators, st store.Store, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		logger: logger,
		collab: collab,
		store:  st,
		now:    time.Now,
	}
}

// Session exposes the session state for display. Callers must treat it as
// read-only.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Start validates the setup inputs, runs the preparation phase (profile
// analysis, company research, strategy) and returns the first question.
// Only validation and profile analysis can fail here; everything after the
// session exists degrades to a documented fallback instead of failing.
func (o *Orchestrator) Start(ctx context.Context, setup Setup) (string, error) {
	if o.phase != phaseInit {
		return "", fmt.Errorf("session already started")
	}

	for _, input := range []struct {
		field string
		value string
	}{
		{"candidate name", setup.Candidate},
		{"resume text", setup.ResumeText},
		{"job description", setup.JobDescription},
		{"company name", setup.Company},
	} {
		if strings.TrimSpace(input.value) == "" {
			return "", &ValidationError{Field: input.field}
		}
	}

	profile, err := o.collab.Profiler.Analyze(ctx, setup.ResumeText, setup.JobDescription)
	if err != nil {
		return "", &CollaboratorError{Collaborator: "profiler", Err: err}
	}

	intel, err := o.collab.Researcher.Research(ctx, setup.Company)
	if err != nil || strings.TrimSpace(intel) == "" {
		o.logger.Warn("company research degraded, using canned intel", zap.Error(err))
		intel = fmt.Sprintf("%s values innovation, teamwork and technical excellence.", setup.Company)
	}

	strategy, err := o.collab.Strategist.Plan(ctx, profile, intel)
	if err != nil {
		o.logger.Warn("strategy planning degraded, using default arc", zap.Error(err))
		strategy = "Standard arc: warm up on their strongest skill, then probe the gaps with increasing depth."
	}

	o.session = &Session{
		ID:           uuid.New().String(),
		Candidate:    setup.Candidate,
		Company:      setup.Company,
		Role:         setup.Role,
		ResumeLength: len(setup.ResumeText),
		StartedAt:    o.now(),
		Stage:        StageIntro,
		Persona:      initialPersona(strategy),
		Strategy:     strategy,
		CompanyIntel: intel,
		Profile:      profile,
	}

	o.logger = logger.WithFields(o.logger, logger.SessionFields(o.session.ID, "")...)

	o.logger.Info("session created",
		zap.String("candidate", o.session.Candidate),
		zap.String("company", o.session.Company),
		zap.String("persona", string(o.session.Persona)),
	)

	if warn := o.persistSession(ctx); warn != "" {
		o.logger.Warn("session persistence degraded", zap.String("warning", warn))
	}
	if warn := o.persistProfile(ctx); warn != "" {
		o.logger.Warn("profile persistence degraded", zap.String("warning", warn))
	}

	o.stage = StageIntro
	o.question = o.askQuestion(ctx, false)
	o.topic = o.question
	o.phase = phaseAwaitingAnswer

	return o.question, nil
}

// SubmitAnswer consumes one answer for the outstanding question, scores it,
// records the turn and decides the next action. signal is an optional
// non-verbal observation forwarded to the critic.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, answer, signal string) (*TurnResult, error) {
	if o.phase != phaseAwaitingAnswer {
		return nil, ErrNoQuestionPending
	}

	answer = strings.TrimSpace(answer)
	judgment := o.scoreAnswer(ctx, answer, signal)

	turn := &Turn{
		Number:    len(o.session.Turns) + 1,
		Stage:     o.stage,
		Question:  o.question,
		Answer:    answer,
		Judgment:  judgment,
		Pushback:  o.pushbacks > 0,
		Timestamp: o.now(),
	}
	o.session.Turns = append(o.session.Turns, turn)

	result := &TurnResult{Feedback: judgment}
	if warn := o.persistTurn(ctx, turn); warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}

	questionCount := len(o.session.Turns)
	nextStage := StageForQuestion(questionCount + 1)
	outcome := Decide(judgment.Score, o.pushbacks, o.session.Scores(), questionCount, nextStage)
	result.Decision = outcome.Decision

	o.logger.Info("turn decided",
		zap.Int("question_number", turn.Number),
		zap.String("stage", string(turn.Stage)),
		zap.Float64("score", judgment.Score),
		zap.Bool("degraded", judgment.Degraded),
		zap.String("decision", outcome.Decision.String()),
	)

	switch outcome.Decision {
	case DecisionPushback:
		o.pushbacks++
		o.question = o.askQuestion(ctx, true)
		result.State = StatePushback
		result.NextQuestion = o.question
		result.QuestionNumber = len(o.session.Turns) + 1

	case DecisionAdvance:
		if outcome.TopicFailed {
			o.session.FailedTopics = append(o.session.FailedTopics, util.TruncateForLog(o.topic, failedTopicMaxLen))
			o.logger.Info("topic failed after exhausted pushback budget",
				zap.String("topic", util.TruncateForLog(o.topic, failedTopicMaxLen)),
			)
		}
		o.pushbacks = 0
		o.stage = nextStage
		o.session.Stage = nextStage
		o.session.Persona = NextPersona(o.session.Scores())

		if nextStage == StageComplete {
			o.finish(ctx, result)
			result.State = StateReporting
			break
		}

		o.question = o.askQuestion(ctx, false)
		o.topic = o.question
		result.State = StateContinuing
		result.NextQuestion = o.question
		result.QuestionNumber = len(o.session.Turns) + 1

	case DecisionEarlyTerminate:
		o.session.EarlyTermination = outcome.Reason
		o.logger.Info("early termination", zap.String("reason", outcome.Reason))
		o.finish(ctx, result)
		result.State = StateTerminated

	case DecisionReport:
		o.finish(ctx, result)
		result.State = StateReporting
	}

	return result, nil
}

// Report returns the final verdict and roadmap once the session is done.
func (o *Orchestrator) Report() (*ai.Report, error) {
	if o.phase != phaseDone {
		return nil, ErrNotFinished
	}
	return &ai.Report{Verdict: o.session.Verdict, Roadmap: o.session.Roadmap}, nil
}

// scoreAnswer obtains a judgment for the answer. An empty answer scores 0
// without a scoring call; a failed scoring call degrades to a flagged
// neutral default. The session is never interrupted here.
func (o *Orchestrator) scoreAnswer(ctx context.Context, answer, signal string) *ai.Judgment {
	if answer == "" {
		o.logger.Warn("answer skipped", zap.Error(ErrSkippedAnswer))
		return &ai.Judgment{
			Score:      0,
			Weaknesses: "No answer was provided.",
			Tip:        "Attempt every question, even partially. Silence scores zero.",
			Sentiment:  "silent",
		}
	}

	judgment, err := o.collab.Critic.Evaluate(ctx, &ai.EvaluationRequest{
		Stage:    string(o.stage),
		Question: o.question,
		Answer:   answer,
		Signal:   signal,
	})
	if err != nil {
		collabErr := &CollaboratorError{Collaborator: "critic", Err: err}
		o.logger.Warn("evaluation degraded, substituting neutral score", zap.Error(collabErr))
		return &ai.Judgment{
			Score:     5,
			Tip:       "This answer could not be evaluated; treat the score as low-confidence.",
			Sentiment: "unknown",
			Degraded:  true,
		}
	}

	return judgment
}

// askQuestion requests the next question from the interviewer collaborator,
// falling back to a generic stage question when the call fails or returns
// blank text.
func (o *Orchestrator) askQuestion(ctx context.Context, intensify bool) string {
	req := &ai.QuestionRequest{
		Company:      o.session.Company,
		Role:         o.session.Role,
		Stage:        string(o.stage),
		Persona:      string(o.session.Persona),
		Strategy:     o.session.Strategy,
		CompanyIntel: o.session.CompanyIntel,
		Profile:      o.session.Profile,
		Transcript:   o.session.Transcript(transcriptWindow),
	}
	if intensify {
		req.Topic = o.topic
		req.Intensify = true
	}

	question, err := o.collab.Interviewer.NextQuestion(ctx, req)
	if err != nil {
		collabErr := &CollaboratorError{Collaborator: "interviewer", Err: err}
		o.logger.Warn("question generation degraded, using fallback", zap.Error(collabErr))
		question = ""
	}

	question = strings.TrimSpace(question)
	if question == "" {
		question = fallbackQuestion(o.stage)
	}

	return question
}

// finish generates the report, finalizes the session and persists it.
func (o *Orchestrator) finish(ctx context.Context, result *TurnResult) {
	o.session.OverallScore = o.session.AverageScore()

	report, err := o.collab.Reporter.Report(ctx, &ai.ReportRequest{
		Candidate:        o.session.Candidate,
		Company:          o.session.Company,
		Role:             o.session.Role,
		OverallScore:     o.session.OverallScore,
		Profile:          o.session.Profile,
		Transcript:       o.session.Transcript(0),
		FailedTopics:     o.session.FailedTopics,
		EarlyTermination: o.session.EarlyTermination,
	})
	if err != nil {
		collabErr := &CollaboratorError{Collaborator: "reporter", Err: err}
		o.logger.Warn("report generation degraded, using summary verdict", zap.Error(collabErr))
		report = &ai.Report{
			Verdict: fmt.Sprintf("Interview completed with an average score of %.1f/10 over %d questions.",
				o.session.OverallScore, len(o.session.Turns)),
		}
	}

	o.session.Verdict = report.Verdict
	o.session.Roadmap = report.Roadmap
	o.session.EndedAt = o.now()
	o.phase = phaseDone

	if warn := o.finishPersisted(ctx); warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}

	o.logger.Info("session finished",
		zap.Float64("overall_score", o.session.OverallScore),
		zap.Int("total_questions", len(o.session.Turns)),
		zap.String("early_termination", o.session.EarlyTermination),
	)
}

func (o *Orchestrator) persistSession(ctx context.Context) string {
	if o.store == nil {
		return ""
	}
	record := &store.Session{
		ID:            o.session.ID,
		CandidateName: o.session.Candidate,
		Company:       o.session.Company,
		Role:          o.session.Role,
		StartTime:     o.session.StartedAt,
		ResumeLength:  o.session.ResumeLength,
	}
	if err := o.store.CreateSession(ctx, record); err != nil {
		return (&PersistenceError{Op: "session", Err: err}).Error()
	}
	return ""
}

func (o *Orchestrator) persistProfile(ctx context.Context) string {
	if o.store == nil || o.session.Profile == nil {
		return ""
	}
	profile := o.session.Profile
	record := &store.Profile{
		SessionID:       o.session.ID,
		MatchedSkills:   profile.MatchedSkills,
		MissingSkills:   profile.MissingSkills,
		Strengths:       profile.Strengths,
		Weaknesses:      profile.Weaknesses,
		ExperienceLevel: profile.ExperienceLevel,
		RedFlags:        profile.RedFlags,
	}
	if err := o.store.SaveProfile(ctx, record); err != nil {
		return (&PersistenceError{Op: "profile", Err: err}).Error()
	}
	return ""
}

func (o *Orchestrator) persistTurn(ctx context.Context, turn *Turn) string {
	if o.store == nil {
		return ""
	}
	record := &store.Turn{
		SessionID:        o.session.ID,
		QuestionNumber:   turn.Number,
		Stage:            string(turn.Stage),
		Question:         turn.Question,
		Answer:           turn.Answer,
		AnswerLength:     len(turn.Answer),
		CriticScore:      turn.Judgment.Score,
		CriticStrengths:  turn.Judgment.Strengths,
		CriticWeaknesses: turn.Judgment.Weaknesses,
		CriticTip:        turn.Judgment.Tip,
		Sentiment:        turn.Judgment.Sentiment,
		Timestamp:        turn.Timestamp,
	}
	if err := o.store.AppendTurn(ctx, record); err != nil {
		warn := &PersistenceError{Op: "turn", Err: err}
		o.logger.Warn("turn persistence degraded", zap.Error(warn))
		return warn.Error()
	}
	return ""
}

func (o *Orchestrator) finishPersisted(ctx context.Context) string {
	if o.store == nil {
		return ""
	}
	overall := o.session.OverallScore
	record := &store.Session{
		ID:               o.session.ID,
		CandidateName:    o.session.Candidate,
		Company:          o.session.Company,
		Role:             o.session.Role,
		StartTime:        o.session.StartedAt,
		EndTime:          o.session.EndedAt,
		OverallScore:     &overall,
		FinalVerdict:     o.session.Verdict,
		ResumeLength:     o.session.ResumeLength,
		TotalQuestions:   len(o.session.Turns),
		EarlyTermination: o.session.EarlyTermination,
	}
	if err := o.store.FinishSession(ctx, record); err != nil {
		warn := &PersistenceError{Op: "session", Err: err}
		o.logger.Warn("final session persistence degraded", zap.Error(warn))
		return warn.Error()
	}
	return ""
}

// fallbackQuestion returns a generic question for the stage. It is used
// whenever the question generator fails or returns empty text.
func fallbackQuestion(stage Stage) string {
	switch stage {
	case StageIntro:
		return "Walk me through the experience on your resume most relevant to this role."
	case StageTechnical:
		return "Describe the most technically challenging problem you have solved recently. What made it hard, and what was your approach?"
	case StageBehavioral:
		return "Tell me about a time a project you owned went wrong. What happened, and what did you do?"
	case StageClosing:
		return "Which skill required for this role are you weakest in, and how do you plan to close the gap?"
	default:
		return "Could you elaborate on that with a concrete example?"
	}
}
