package interview

import "strings"

// Stage boundaries by question number. The ranges are defaults, not sacred
// thresholds: intro gets one question, technical four, behavioral two and
// closing one, which lines up with the eight-question quota.
const (
	introEnd      = 1
	technicalEnd  = 5
	behavioralEnd = 7
	closingEnd    = 8
)

// StageForQuestion maps a 1-based question number to its interview stage.
func StageForQuestion(n int) Stage {
	switch {
	case n <= introEnd:
		return StageIntro
	case n <= technicalEnd:
		return StageTechnical
	case n <= behavioralEnd:
		return StageBehavioral
	case n <= closingEnd:
		return StageClosing
	default:
		return StageComplete
	}
}

// Persona thresholds. Two consecutive scores below the low bar escalate to
// challenging; two consecutive at or above the high bar relax to supportive.
const (
	personaLowScore  = 5.0
	personaHighScore = 8.0
)

// NextPersona derives the interviewer persona from the two most recent
// scores. With fewer than two scored turns the persona stays neutral.
func NextPersona(scores []float64) Persona {
	if len(scores) < 2 {
		return PersonaNeutral
	}

	last := scores[len(scores)-1]
	prev := scores[len(scores)-2]

	if last < personaLowScore && prev < personaLowScore {
		return PersonaChallenging
	}
	if last >= personaHighScore && prev >= personaHighScore {
		return PersonaSupportive
	}
	return PersonaNeutral
}

// initialPersona derives the opening persona from the strategy text, the
// same way the strategy is otherwise advisory-only.
func initialPersona(strategy string) Persona {
	switch {
	case containsFold(strategy, string(PersonaSupportive)):
		return PersonaSupportive
	case containsFold(strategy, string(PersonaChallenging)):
		return PersonaChallenging
	default:
		return PersonaNeutral
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
