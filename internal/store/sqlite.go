package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite via modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed store.
// dbPath is the path to the SQLite database file; use ":memory:" for testing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id                TEXT PRIMARY KEY,
			candidate_name    TEXT NOT NULL,
			company           TEXT NOT NULL,
			role              TEXT NOT NULL,
			start_time        TEXT NOT NULL,
			end_time          TEXT,
			overall_score     REAL,
			final_verdict     TEXT,
			resume_length     INTEGER DEFAULT 0,
			total_questions   INTEGER DEFAULT 0,
			early_termination TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS qa_logs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id        TEXT NOT NULL,
			question_number   INTEGER NOT NULL,
			stage             TEXT NOT NULL,
			question          TEXT NOT NULL,
			answer            TEXT,
			answer_length     INTEGER DEFAULT 0,
			critic_score      REAL,
			critic_strengths  TEXT,
			critic_weaknesses TEXT,
			critic_tip        TEXT,
			sentiment         TEXT,
			timestamp         TEXT NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(id)
		);`,
		`CREATE TABLE IF NOT EXISTS profile_analysis (
			session_id       TEXT PRIMARY KEY,
			matched_skills   TEXT,
			missing_skills   TEXT,
			strengths        TEXT,
			weaknesses       TEXT,
			experience_level TEXT,
			red_flags        TEXT,
			FOREIGN KEY(session_id) REFERENCES sessions(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_qa_logs_session_id ON qa_logs(session_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// CreateSession inserts or updates the session summary row.
// If the session's ID is empty, a new UUID is generated and assigned.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.StartTime.IsZero() {
		session.StartTime = time.Now().UTC()
	}

	query := `
		INSERT INTO sessions (id, candidate_name, company, role, start_time, resume_length, total_questions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			candidate_name = excluded.candidate_name,
			company        = excluded.company,
			role           = excluded.role,
			resume_length  = excluded.resume_length
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.CandidateName,
		session.Company,
		session.Role,
		session.StartTime.Format(time.RFC3339),
		session.ResumeLength,
		session.TotalQuestions,
	)
	if err != nil {
		return fmt.Errorf("store: create session: %w", err)
	}

	return nil
}

// FinishSession records the final state of a completed session.
func (s *SQLiteStore) FinishSession(ctx context.Context, session *Session) error {
	if session.EndTime.IsZero() {
		session.EndTime = time.Now().UTC()
	}

	var earlyTermination any
	if session.EarlyTermination != "" {
		earlyTermination = session.EarlyTermination
	}

	var overall any
	if session.OverallScore != nil {
		overall = *session.OverallScore
	}

	query := `
		UPDATE sessions
		SET end_time = ?, overall_score = ?, final_verdict = ?, early_termination = ?, total_questions = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		session.EndTime.Format(time.RFC3339),
		overall,
		session.FinalVerdict,
		earlyTermination,
		session.TotalQuestions,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("store: finish session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("store: finish session: session %q not found", session.ID)
	}

	return nil
}

// AppendTurn records one question/answer exchange and bumps the session's
// question counter in the same transaction.
func (s *SQLiteStore) AppendTurn(ctx context.Context, turn *Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO qa_logs
			(session_id, question_number, stage, question, answer, answer_length,
			 critic_score, critic_strengths, critic_weaknesses, critic_tip, sentiment, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		turn.SessionID,
		turn.QuestionNumber,
		turn.Stage,
		turn.Question,
		turn.Answer,
		turn.AnswerLength,
		turn.CriticScore,
		turn.CriticStrengths,
		turn.CriticWeaknesses,
		turn.CriticTip,
		turn.Sentiment,
		turn.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: append turn: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		turn.ID = id
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET total_questions = ? WHERE id = ?`,
		turn.QuestionNumber, turn.SessionID,
	)
	if err != nil {
		return fmt.Errorf("store: update question count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit turn: %w", err)
	}

	return nil
}

// SaveProfile stores the candidate profile analysis, replacing any prior row
// for the session. Skill lists are stored as JSON arrays.
func (s *SQLiteStore) SaveProfile(ctx context.Context, profile *Profile) error {
	encoded := make([]any, 0, 4)
	for _, list := range [][]string{profile.MatchedSkills, profile.MissingSkills, profile.Strengths, profile.Weaknesses} {
		data, err := json.Marshal(emptyIfNil(list))
		if err != nil {
			return fmt.Errorf("store: marshal profile: %w", err)
		}
		encoded = append(encoded, string(data))
	}

	redFlags, err := json.Marshal(emptyIfNil(profile.RedFlags))
	if err != nil {
		return fmt.Errorf("store: marshal profile: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO profile_analysis
			(session_id, matched_skills, missing_skills, strengths, weaknesses, experience_level, red_flags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		profile.SessionID,
		encoded[0],
		encoded[1],
		encoded[2],
		encoded[3],
		profile.ExperienceLevel,
		string(redFlags),
	)
	if err != nil {
		return fmt.Errorf("store: save profile: %w", err)
	}

	return nil
}

// GetSession retrieves a session summary by id.
// Returns (nil, nil) if no session is found.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, candidate_name, company, role, start_time, end_time,
		       overall_score, final_verdict, resume_length, total_questions, early_termination
		FROM sessions WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)

	var (
		session          Session
		startTime        string
		endTime          sql.NullString
		overall          sql.NullFloat64
		verdict          sql.NullString
		earlyTermination sql.NullString
	)
	err := row.Scan(&session.ID, &session.CandidateName, &session.Company, &session.Role,
		&startTime, &endTime, &overall, &verdict, &session.ResumeLength,
		&session.TotalQuestions, &earlyTermination)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: scan session: %w", err)
	}

	if session.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if endTime.Valid && endTime.String != "" {
		if session.EndTime, err = parseTime(endTime.String); err != nil {
			return nil, err
		}
	}
	if overall.Valid {
		value := overall.Float64
		session.OverallScore = &value
	}
	session.FinalVerdict = verdict.String
	session.EarlyTermination = earlyTermination.String

	return &session, nil
}

// GetTurns returns the full question/answer log for a session in question order.
func (s *SQLiteStore) GetTurns(ctx context.Context, sessionID string) ([]*Turn, error) {
	query := `
		SELECT id, session_id, question_number, stage, question, answer, answer_length,
		       critic_score, critic_strengths, critic_weaknesses, critic_tip, sentiment, timestamp
		FROM qa_logs WHERE session_id = ? ORDER BY question_number
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list turns: %w", err)
	}
	defer rows.Close()

	var turns []*Turn
	for rows.Next() {
		var (
			turn      Turn
			timestamp string
		)
		err := rows.Scan(&turn.ID, &turn.SessionID, &turn.QuestionNumber, &turn.Stage,
			&turn.Question, &turn.Answer, &turn.AnswerLength, &turn.CriticScore,
			&turn.CriticStrengths, &turn.CriticWeaknesses, &turn.CriticTip,
			&turn.Sentiment, &timestamp)
		if err != nil {
			return nil, fmt.Errorf("store: scan turn: %w", err)
		}
		if turn.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, err
		}
		turns = append(turns, &turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate turns: %w", err)
	}

	return turns, nil
}

// GetProfile retrieves the profile analysis for a session.
// Returns (nil, nil) if no profile is found.
func (s *SQLiteStore) GetProfile(ctx context.Context, sessionID string) (*Profile, error) {
	query := `
		SELECT session_id, matched_skills, missing_skills, strengths, weaknesses, experience_level, red_flags
		FROM profile_analysis WHERE session_id = ?
	`
	row := s.db.QueryRowContext(ctx, query, sessionID)

	var (
		profile Profile
		raw     [5]sql.NullString
	)
	err := row.Scan(&profile.SessionID, &raw[0], &raw[1], &raw[2], &raw[3],
		&profile.ExperienceLevel, &raw[4])
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: scan profile: %w", err)
	}

	targets := []*[]string{
		&profile.MatchedSkills, &profile.MissingSkills,
		&profile.Strengths, &profile.Weaknesses, &profile.RedFlags,
	}
	for i, target := range targets {
		if !raw[i].Valid || raw[i].String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw[i].String), target); err != nil {
			return nil, fmt.Errorf("store: unmarshal profile field: %w", err)
		}
	}

	return &profile, nil
}

// ListSessions returns the most recently started sessions, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]*SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, candidate_name, company, role, start_time, overall_score, total_questions
		FROM sessions ORDER BY start_time DESC LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []*SessionSummary
	for rows.Next() {
		var (
			summary   SessionSummary
			startTime string
			overall   sql.NullFloat64
		)
		err := rows.Scan(&summary.ID, &summary.CandidateName, &summary.Company,
			&summary.Role, &startTime, &overall, &summary.TotalQuestions)
		if err != nil {
			return nil, fmt.Errorf("store: scan summary: %w", err)
		}
		if summary.StartTime, err = parseTime(startTime); err != nil {
			return nil, err
		}
		if overall.Valid {
			value := overall.Float64
			summary.OverallScore = &value
		}
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate sessions: %w", err)
	}

	return summaries, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Fall back to the SQLite default format.
		t, err = time.Parse("2006-01-02 15:04:05", value)
		if err != nil {
			return time.Time{}, fmt.Errorf("store: parse time %q: %w", value, err)
		}
	}
	return t, nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
