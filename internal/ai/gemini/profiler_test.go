package gemini

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const profilerResponse = `{
	"matched_skills": ["Go", "PostgreSQL"],
	"missing_skills": ["Kubernetes"],
	"strengths": ["distributed systems"],
	"weaknesses": ["frontend"],
	"experience_level": "senior",
	"red_flags": []
}`

func TestProfilerAnalyze(t *testing.T) {
	stub := &stubGenerator{response: profilerResponse}
	profiler := NewProfiler(stub, zap.NewNop(), 0)

	profile, err := profiler.Analyze(context.Background(),
		"Eight years of Go backend work.",
		"Backend engineer for a storage product.",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profile.MatchedSkills) != 2 || profile.MatchedSkills[0] != "Go" {
		t.Fatalf("matched skills = %v", profile.MatchedSkills)
	}
	if profile.ExperienceLevel != "senior" {
		t.Fatalf("experience level = %q", profile.ExperienceLevel)
	}
	if len(profile.RedFlags) != 0 {
		t.Fatalf("red flags = %v, want none", profile.RedFlags)
	}

	if !strings.Contains(stub.lastPrompt, "Eight years of Go backend work.") {
		t.Fatal("prompt should contain the resume")
	}
	if !strings.Contains(stub.lastPrompt, "Backend engineer for a storage product.") {
		t.Fatal("prompt should contain the job description")
	}
}

func TestProfilerRejectsEmptyInputs(t *testing.T) {
	profiler := NewProfiler(&stubGenerator{response: profilerResponse}, zap.NewNop(), 0)

	if _, err := profiler.Analyze(context.Background(), "  ", "jd"); err == nil {
		t.Fatal("expected an error for an empty resume")
	}
	if _, err := profiler.Analyze(context.Background(), "resume", ""); err == nil {
		t.Fatal("expected an error for an empty job description")
	}
}

func TestProfilerMalformedResponseIsError(t *testing.T) {
	stub := &stubGenerator{response: "I could not analyze this resume."}
	profiler := NewProfiler(stub, zap.NewNop(), 0)

	if _, err := profiler.Analyze(context.Background(), "resume", "jd"); err == nil {
		t.Fatal("expected an error for a malformed analysis")
	}
}
