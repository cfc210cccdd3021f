// Package interview implements the interview orchestration state machine:
// the session model, the scoring policy, the stage planner and the
// orchestrator that drives the question/answer loop.
package interview

import (
	"time"

	"github.com/mockmate/mockmate/internal/ai"
)

// Stage is the coarse phase of the interview.
type Stage string

const (
	StageIntro      Stage = "intro"
	StageTechnical  Stage = "technical"
	StageBehavioral Stage = "behavioral"
	StageClosing    Stage = "closing"
	StageComplete   Stage = "complete"
)

// Persona is the advisory tone passed to the question generator. It is never
// enforced by the core.
type Persona string

const (
	PersonaSupportive  Persona = "supportive"
	PersonaNeutral     Persona = "neutral"
	PersonaChallenging Persona = "challenging"
)

// Turn is one question/answer/score exchange. Turns are append-only: a
// pushback retry produces a new Turn with an incremented number, never a
// mutation of the prior one.
type Turn struct {
	Number    int
	Stage     Stage
	Question  string
	Answer    string
	Judgment  *ai.Judgment
	Pushback  bool
	Timestamp time.Time
}

// Session is the mutable record of one interview's progress. It is owned
// exclusively by a single Orchestrator for its lifetime.
type Session struct {
	ID               string
	Candidate        string
	Company          string
	Role             string
	ResumeLength     int
	StartedAt        time.Time
	EndedAt          time.Time
	Stage            Stage
	Persona          Persona
	Strategy         string
	CompanyIntel     string
	Profile          *ai.Profile
	Turns            []*Turn
	FailedTopics     []string
	OverallScore     float64
	Verdict          string
	Roadmap          string
	EarlyTermination string
}

// Scores returns all turn scores in order.
func (s *Session) Scores() []float64 {
	scores := make([]float64, 0, len(s.Turns))
	for _, turn := range s.Turns {
		scores = append(scores, turn.Judgment.Score)
	}
	return scores
}

// AverageScore returns the arithmetic mean of all turn scores, 0 when no
// turns exist yet.
func (s *Session) AverageScore() float64 {
	if len(s.Turns) == 0 {
		return 0
	}
	var sum float64
	for _, turn := range s.Turns {
		sum += turn.Judgment.Score
	}
	return sum / float64(len(s.Turns))
}

// Transcript converts the last limit turns into collaborator payloads.
// A non-positive limit returns the whole transcript.
func (s *Session) Transcript(limit int) []ai.TurnSummary {
	turns := s.Turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	summaries := make([]ai.TurnSummary, 0, len(turns))
	for _, turn := range turns {
		summaries = append(summaries, ai.TurnSummary{
			Number:     turn.Number,
			Stage:      string(turn.Stage),
			Question:   turn.Question,
			Answer:     turn.Answer,
			Score:      turn.Judgment.Score,
			Strengths:  turn.Judgment.Strengths,
			Weaknesses: turn.Judgment.Weaknesses,
			Tip:        turn.Judgment.Tip,
			Sentiment:  turn.Judgment.Sentiment,
		})
	}
	return summaries
}
