// Package ai defines the contracts for the generation collaborators used by
// the interview orchestrator. Implementations live in provider subpackages.
package ai

import "context"

// Judgment is the structured evaluation of a single answer.
type Judgment struct {
	// Score is on a 0-10 scale, fractional values allowed.
	Score      float64
	Strengths  string
	Weaknesses string
	Tip        string
	Sentiment  string
	// Degraded marks judgments that were substituted with a neutral default
	// because the provider returned malformed or no data. Consumers must not
	// present degraded scores as full-confidence evaluations.
	Degraded bool
}

// Profile is the structured comparison of a resume against a job description.
type Profile struct {
	MatchedSkills   []string
	MissingSkills   []string
	Strengths       []string
	Weaknesses      []string
	ExperienceLevel string
	RedFlags        []string
}

// Report is the final interview assessment.
type Report struct {
	Verdict string
	Roadmap string
}

// TurnSummary is one question/answer exchange with its evaluation, used to
// build transcripts for question generation and reporting.
type TurnSummary struct {
	Number     int
	Stage      string
	Question   string
	Answer     string
	Score      float64
	Strengths  string
	Weaknesses string
	Tip        string
	Sentiment  string
}

// QuestionRequest carries everything a question generator may use.
type QuestionRequest struct {
	Company      string
	Role         string
	Stage        string
	Persona      string
	Strategy     string
	CompanyIntel string
	Profile      *Profile
	Transcript   []TurnSummary

	// Topic is set on pushback: the question being retried. Intensify asks
	// for a rephrased, more demanding variant of the same topic.
	Topic     string
	Intensify bool
}

// EvaluationRequest carries one answer to be scored.
type EvaluationRequest struct {
	Stage    string
	Question string
	Answer   string
	// Signal is an optional non-verbal observation supplied by the caller.
	Signal string
}

// ReportRequest carries the full session view for final report generation.
type ReportRequest struct {
	Candidate        string
	Company          string
	Role             string
	OverallScore     float64
	Profile          *Profile
	Transcript       []TurnSummary
	FailedTopics     []string
	EarlyTermination string
}

// Interviewer produces the next question for a session.
type Interviewer interface {
	NextQuestion(ctx context.Context, req *QuestionRequest) (string, error)
}

// Critic scores a single answer.
type Critic interface {
	Evaluate(ctx context.Context, req *EvaluationRequest) (*Judgment, error)
}

// Profiler analyzes a resume against a job description.
type Profiler interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (*Profile, error)
}

// Researcher gathers background on the target company.
type Researcher interface {
	Research(ctx context.Context, company string) (string, error)
}

// Strategist plans the interview arc from the profile and company intel.
type Strategist interface {
	Plan(ctx context.Context, profile *Profile, companyIntel string) (string, error)
}

// Reporter writes the final verdict and improvement roadmap.
type Reporter interface {
	Report(ctx context.Context, req *ReportRequest) (*Report, error)
}
