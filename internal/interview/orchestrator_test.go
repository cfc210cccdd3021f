package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/store"
)

type stubInterviewer struct {
	calls   int
	err     error
	lastReq *ai.QuestionRequest
}

func (s *stubInterviewer) NextQuestion(_ context.Context, req *ai.QuestionRequest) (string, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("generated question %d", s.calls), nil
}

// scriptedCritic scores answers from a fixed script, repeating the last
// score once the script runs out.
type scriptedCritic struct {
	scores  []float64
	calls   int
	err     error
	lastReq *ai.EvaluationRequest
}

func (c *scriptedCritic) Evaluate(_ context.Context, req *ai.EvaluationRequest) (*ai.Judgment, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}

	idx := c.calls - 1
	if idx >= len(c.scores) {
		idx = len(c.scores) - 1
	}

	return &ai.Judgment{
		Score:      c.scores[idx],
		Strengths:  "clear structure",
		Weaknesses: "light on detail",
		Tip:        "quantify the impact",
		Sentiment:  "neutral",
	}, nil
}

type stubProfiler struct {
	err error
}

func (p *stubProfiler) Analyze(_ context.Context, _, _ string) (*ai.Profile, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &ai.Profile{
		MatchedSkills:   []string{"Go", "SQL"},
		MissingSkills:   []string{"Kubernetes"},
		ExperienceLevel: "senior",
	}, nil
}

type stubResearcher struct {
	err error
}

func (r *stubResearcher) Research(_ context.Context, company string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return company + " ships developer tools.", nil
}

type stubStrategist struct {
	err      error
	strategy string
}

func (s *stubStrategist) Plan(_ context.Context, _ *ai.Profile, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.strategy != "" {
		return s.strategy, nil
	}
	return "Probe the Kubernetes gap after warming up on Go.", nil
}

type stubReporter struct {
	err     error
	lastReq *ai.ReportRequest
}

func (r *stubReporter) Report(_ context.Context, req *ai.ReportRequest) (*ai.Report, error) {
	r.lastReq = req
	if r.err != nil {
		return nil, r.err
	}
	return &ai.Report{Verdict: "Solid senior candidate.", Roadmap: "Close the Kubernetes gap."}, nil
}

type fixture struct {
	interviewer *stubInterviewer
	critic      *scriptedCritic
	profiler    *stubProfiler
	researcher  *stubResearcher
	strategist  *stubStrategist
	reporter    *stubReporter
}

func newFixture(scores ...float64) *fixture {
	if len(scores) == 0 {
		scores = []float64{7}
	}
	return &fixture{
		interviewer: &stubInterviewer{},
		critic:      &scriptedCritic{scores: scores},
		profiler:    &stubProfiler{},
		researcher:  &stubResearcher{},
		strategist:  &stubStrategist{},
		reporter:    &stubReporter{},
	}
}

func (f *fixture) collaborators() Collaborators {
	return Collaborators{
		Interviewer: f.interviewer,
		Critic:      f.critic,
		Profiler:    f.profiler,
		Researcher:  f.researcher,
		Strategist:  f.strategist,
		Reporter:    f.reporter,
	}
}

func testSetup() Setup {
	return Setup{
		Candidate:      "Alex",
		ResumeText:     "Senior Go developer with eight years of backend experience.",
		JobDescription: "Backend engineer building distributed storage in Go.",
		Company:        "Acme",
		Role:           "Backend Engineer",
	}
}

// fakeStore records calls in memory and can be switched to fail everything.
type fakeStore struct {
	sessions    map[string]*store.Session
	turns       []*store.Turn
	profiles    map[string]*store.Profile
	finishCalls int
	failAll     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]*store.Session),
		profiles: make(map[string]*store.Profile),
	}
}

func (f *fakeStore) CreateSession(_ context.Context, session *store.Session) error {
	if f.failAll {
		return errors.New("disk full")
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) FinishSession(_ context.Context, session *store.Session) error {
	if f.failAll {
		return errors.New("disk full")
	}
	f.finishCalls++
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) AppendTurn(_ context.Context, turn *store.Turn) error {
	if f.failAll {
		return errors.New("disk full")
	}
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeStore) SaveProfile(_ context.Context, profile *store.Profile) error {
	if f.failAll {
		return errors.New("disk full")
	}
	f.profiles[profile.SessionID] = profile
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, id string) (*store.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return session, nil
}

func (f *fakeStore) GetTurns(_ context.Context, _ string) ([]*store.Turn, error) {
	return f.turns, nil
}

func (f *fakeStore) GetProfile(_ context.Context, id string) (*store.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return profile, nil
}

func (f *fakeStore) ListSessions(_ context.Context, _ int) ([]*store.SessionSummary, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

var _ store.Store = (*fakeStore)(nil)

func TestOrchestratorHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(7)
	st := newFakeStore()
	orchestrator := New(f.collaborators(), st, nil)

	question, err := orchestrator.Start(ctx, testSetup())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if question == "" {
		t.Fatal("expected a first question")
	}

	for turn := 1; turn <= 8; turn++ {
		result, err := orchestrator.SubmitAnswer(ctx, "I led the migration to a sharded store.", "")
		if err != nil {
			t.Fatalf("SubmitAnswer %d returned error: %v", turn, err)
		}

		if turn < 8 {
			if result.State != StateContinuing {
				t.Fatalf("turn %d: state = %s, want continuing", turn, result.State)
			}
			if result.NextQuestion == "" {
				t.Fatalf("turn %d: expected a next question", turn)
			}
			if result.QuestionNumber != turn+1 {
				t.Fatalf("turn %d: question number = %d, want %d", turn, result.QuestionNumber, turn+1)
			}
			continue
		}

		if result.Decision != DecisionReport {
			t.Fatalf("final decision = %s, want report", result.Decision)
		}
		if result.State != StateReporting {
			t.Fatalf("final state = %s, want reporting", result.State)
		}
		if result.NextQuestion != "" {
			t.Fatalf("expected no question after the quota, got %q", result.NextQuestion)
		}
	}

	report, err := orchestrator.Report()
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if report.Verdict != "Solid senior candidate." {
		t.Fatalf("unexpected verdict: %q", report.Verdict)
	}

	session := orchestrator.Session()
	if session.OverallScore != 7 {
		t.Fatalf("overall score = %v, want 7", session.OverallScore)
	}
	if len(session.Turns) != 8 {
		t.Fatalf("recorded %d turns, want 8", len(session.Turns))
	}

	if len(st.turns) != 8 {
		t.Fatalf("store recorded %d turns, want 8", len(st.turns))
	}
	if st.finishCalls != 1 {
		t.Fatalf("store finish calls = %d, want 1", st.finishCalls)
	}
	if len(st.profiles) != 1 {
		t.Fatalf("store recorded %d profiles, want 1", len(st.profiles))
	}
}

func TestOrchestratorStageProgression(t *testing.T) {
	ctx := context.Background()
	f := newFixture(7)
	orchestrator := New(f.collaborators(), nil, nil)

	if _, err := orchestrator.Start(ctx, testSetup()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if f.interviewer.lastReq.Stage != string(StageIntro) {
		t.Fatalf("first question stage = %s, want intro", f.interviewer.lastReq.Stage)
	}

	wantStages := []Stage{
		StageTechnical, StageTechnical, StageTechnical, StageTechnical,
		StageBehavioral, StageBehavioral,
		StageClosing,
	}
	for turn, want := range wantStages {
		if _, err := orchestrator.SubmitAnswer(ctx, "answer", ""); err != nil {
			t.Fatalf("SubmitAnswer %d returned error: %v", turn+1, err)
		}
		if got := f.interviewer.lastReq.Stage; got != string(want) {
			t.Fatalf("question %d generated for stage %s, want %s", turn+2, got, want)
		}
	}
}

func TestOrchestratorPushbackFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(2)
	orchestrator := New(f.collaborators(), nil, nil)

	firstQuestion, err := orchestrator.Start(ctx, testSetup())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	for attempt := 1; attempt <= 2; attempt++ {
		result, err := orchestrator.SubmitAnswer(ctx, "it depends", "")
		if err != nil {
			t.Fatalf("SubmitAnswer returned error: %v", err)
		}
		if result.State != StatePushback {
			t.Fatalf("attempt %d: state = %s, want pushback", attempt, result.State)
		}
		if !f.interviewer.lastReq.Intensify {
			t.Fatalf("attempt %d: expected an intensified question request", attempt)
		}
		if f.interviewer.lastReq.Topic != firstQuestion {
			t.Fatalf("attempt %d: pushback topic = %q, want the original question", attempt, f.interviewer.lastReq.Topic)
		}
	}

	result, err := orchestrator.SubmitAnswer(ctx, "it depends", "")
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if result.Decision != DecisionAdvance {
		t.Fatalf("after exhausted retries decision = %s, want advance", result.Decision)
	}
	if result.State != StateContinuing {
		t.Fatalf("state = %s, want continuing", result.State)
	}
	if f.interviewer.lastReq.Intensify {
		t.Fatal("the next topic must not be intensified")
	}

	session := orchestrator.Session()
	if len(session.FailedTopics) != 1 {
		t.Fatalf("failed topics = %v, want exactly one", session.FailedTopics)
	}
}

func TestOrchestratorEarlyTermination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(3)
	orchestrator := New(f.collaborators(), nil, nil)

	if _, err := orchestrator.Start(ctx, testSetup()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	var result *TurnResult
	for turn := 1; turn <= 3; turn++ {
		var err error
		result, err = orchestrator.SubmitAnswer(ctx, "a mediocre answer", "")
		if err != nil {
			t.Fatalf("SubmitAnswer %d returned error: %v", turn, err)
		}
	}

	if result.Decision != DecisionEarlyTerminate {
		t.Fatalf("decision = %s, want early_terminate", result.Decision)
	}
	if result.State != StateTerminated {
		t.Fatalf("state = %s, want terminated", result.State)
	}
	if result.NextQuestion != "" {
		t.Fatalf("expected no question after termination, got %q", result.NextQuestion)
	}

	session := orchestrator.Session()
	if !strings.Contains(session.EarlyTermination, "avg 3.0/10") {
		t.Fatalf("termination reason should cite the average: %q", session.EarlyTermination)
	}

	if f.reporter.lastReq == nil {
		t.Fatal("expected a report request on termination")
	}
	if f.reporter.lastReq.EarlyTermination == "" {
		t.Fatal("report request should carry the termination reason")
	}

	if _, err := orchestrator.Report(); err != nil {
		t.Fatalf("Report after termination returned error: %v", err)
	}
}

func TestOrchestratorSkippedAnswer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(7)
	orchestrator := New(f.collaborators(), nil, nil)

	if _, err := orchestrator.Start(ctx, testSetup()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	result, err := orchestrator.SubmitAnswer(ctx, "   \t ", "")
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if f.critic.calls != 0 {
		t.Fatalf("critic called %d times for a skipped answer, want 0", f.critic.calls)
	}
	if result.Feedback.Score != 0 {
		t.Fatalf("skipped answer score = %v, want 0", result.Feedback.Score)
	}
	if result.State != StatePushback {
		t.Fatalf("state = %s, want pushback", result.State)
	}
}

func TestOrchestratorCriticFailureDegrades(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.critic.err = errors.New("model overloaded")
	orchestrator := New(f.collaborators(), nil, nil)

	if _, err := orchestrator.Start(ctx, testSetup()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	result, err := orchestrator.SubmitAnswer(ctx, "a reasonable answer", "")
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if !result.Feedback.Degraded {
		t.Fatal("expected a degraded judgment")
	}
	if result.Feedback.Score != 5 {
		t.Fatalf("degraded score = %v, want the neutral 5", result.Feedback.Score)
	}
	if result.State != StateContinuing {
		t.Fatalf("state = %s, want continuing", result.State)
	}
}

func TestOrchestratorStartValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Setup)
	}{
		{"missing candidate", func(s *Setup) { s.Candidate = " " }},
		{"missing resume", func(s *Setup) { s.ResumeText = "" }},
		{"missing job description", func(s *Setup) { s.JobDescription = "" }},
		{"missing company", func(s *Setup) { s.Company = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			orchestrator := New(f.collaborators(), nil, nil)

			setup := testSetup()
			tc.mutate(&setup)

			_, err := orchestrator.Start(ctx, setup)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected a ValidationError, got %v", err)
			}
		})
	}
}

func TestOrchestratorProfilerFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.profiler.err = errors.New("malformed analysis")
	orchestrator := New(f.collaborators(), nil, nil)

	_, err := orchestrator.Start(ctx, testSetup())

	var collabErr *CollaboratorError
	if !errors.As(err, &collabErr) {
		t.Fatalf("expected a CollaboratorError, got %v", err)
	}
	if collabErr.Collaborator != "profiler" {
		t.Fatalf("collaborator = %q, want profiler", collabErr.Collaborator)
	}
}

func TestOrchestratorResearchAndStrategyDegrade(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.researcher.err = errors.New("search unavailable")
	f.strategist.err = errors.New("model overloaded")
	orchestrator := New(f.collaborators(), nil, nil)

	question, err := orchestrator.Start(ctx, testSetup())
	if err != nil {
		t.Fatalf("Start must degrade, not fail: %v", err)
	}
	if question == "" {
		t.Fatal("expected a first question")
	}

	session := orchestrator.Session()
	if !strings.Contains(session.CompanyIntel, "Acme") {
		t.Fatalf("fallback intel should name the company: %q", session.CompanyIntel)
	}
	if session.Strategy == "" {
		t.Fatal("expected a fallback strategy")
	}
}

func TestOrchestratorInterviewerFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.interviewer.err = errors.New("model overloaded")
	orchestrator := New(f.collaborators(), nil, nil)

	question, err := orchestrator.Start(ctx, testSetup())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if question == "" {
		t.Fatal("expected the fallback question")
	}
}

func TestOrchestratorPersistenceFailuresAreWarnings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(7)
	st := newFakeStore()
	st.failAll = true
	orchestrator := New(f.collaborators(), st, nil)

	if _, err := orchestrator.Start(ctx, testSetup()); err != nil {
		t.Fatalf("Start must tolerate a broken store: %v", err)
	}

	result, err := orchestrator.SubmitAnswer(ctx, "an answer", "")
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if len(result.Warnings) == 0 {
		t.Fatal("expected persistence warnings")
	}
	if result.State != StateContinuing {
		t.Fatalf("state = %s, want continuing", result.State)
	}
	if len(orchestrator.Session().Turns) != 1 {
		t.Fatal("in-memory state must not roll back on persistence failure")
	}
}

func TestOrchestratorPersonaEscalation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(4, 4)
	orchestrator := New(f.collaborators(), nil, nil)

	if _, err := orchestrator.Start(ctx, testSetup()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	for turn := 1; turn <= 2; turn++ {
		if _, err := orchestrator.SubmitAnswer(ctx, "a weak answer", ""); err != nil {
			t.Fatalf("SubmitAnswer %d returned error: %v", turn, err)
		}
	}

	if got := orchestrator.Session().Persona; got != PersonaChallenging {
		t.Fatalf("persona = %s, want challenging", got)
	}
	if f.interviewer.lastReq.Persona != string(PersonaChallenging) {
		t.Fatalf("question request persona = %q, want challenging", f.interviewer.lastReq.Persona)
	}
}

func TestOrchestratorGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	orchestrator := New(f.collaborators(), nil, nil)

	if _, err := orchestrator.SubmitAnswer(ctx, "answer", ""); !errors.Is(err, ErrNoQuestionPending) {
		t.Fatalf("SubmitAnswer before Start = %v, want ErrNoQuestionPending", err)
	}

	if _, err := orchestrator.Report(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("Report before finish = %v, want ErrNotFinished", err)
	}

	if _, err := orchestrator.Start(ctx, testSetup()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := orchestrator.Start(ctx, testSetup()); err == nil {
		t.Fatal("expected an error on a second Start")
	}
}
