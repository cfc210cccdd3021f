// Package store persists interview sessions, their question/answer log and
// the candidate profile analysis for later review.
package store

import (
	"context"
	"time"
)

// Session is the durable summary of one interview attempt.
type Session struct {
	ID               string
	CandidateName    string
	Company          string
	Role             string
	StartTime        time.Time
	EndTime          time.Time
	// OverallScore stays nil until the final report is generated.
	OverallScore     *float64
	FinalVerdict     string
	ResumeLength     int
	TotalQuestions   int
	EarlyTermination string
}

// Turn is one recorded question/answer exchange. The qa_logs table is
// append-only: every pushback retry is its own row.
type Turn struct {
	ID               int64
	SessionID        string
	QuestionNumber   int
	Stage            string
	Question         string
	Answer           string
	AnswerLength     int
	CriticScore      float64
	CriticStrengths  string
	CriticWeaknesses string
	CriticTip        string
	Sentiment        string
	Timestamp        time.Time
}

// Profile is the candidate profile analysis, one per session.
type Profile struct {
	SessionID       string
	MatchedSkills   []string
	MissingSkills   []string
	Strengths       []string
	Weaknesses      []string
	ExperienceLevel string
	RedFlags        []string
}

// SessionSummary is a lightweight session overview for listings.
type SessionSummary struct {
	ID             string
	CandidateName  string
	Company        string
	Role           string
	StartTime      time.Time
	OverallScore   *float64
	TotalQuestions int
}

// Store durably records interview data. It is a passive sink: it never
// mutates data on its own, only records what the orchestrator hands to it.
type Store interface {
	CreateSession(ctx context.Context, session *Session) error
	FinishSession(ctx context.Context, session *Session) error
	AppendTurn(ctx context.Context, turn *Turn) error
	SaveProfile(ctx context.Context, profile *Profile) error
	GetSession(ctx context.Context, id string) (*Session, error)
	GetTurns(ctx context.Context, sessionID string) ([]*Turn, error)
	GetProfile(ctx context.Context, sessionID string) (*Profile, error)
	ListSessions(ctx context.Context, limit int) ([]*SessionSummary, error)
	Close() error
}
