package interview

import "fmt"

// Decision is the scoring policy's verdict on what happens after a turn.
type Decision int

const (
	// DecisionAdvance moves to the next question and topic.
	DecisionAdvance Decision = iota
	// DecisionPushback re-asks the current topic with heightened demand.
	DecisionPushback
	// DecisionEarlyTerminate ends the session for sustained poor performance.
	DecisionEarlyTerminate
	// DecisionReport ends the session normally and generates the report.
	DecisionReport
)

func (d Decision) String() string {
	switch d {
	case DecisionAdvance:
		return "advance"
	case DecisionPushback:
		return "pushback"
	case DecisionEarlyTerminate:
		return "early_terminate"
	case DecisionReport:
		return "report"
	}
	return "unknown"
}

const (
	// pushbackScore is the score at or below which an answer is considered
	// critically weak.
	pushbackScore = 2.0
	// maxPushbacks is the retry budget per topic.
	maxPushbacks = 2
	// terminationWindow is how many recent scores the rolling average covers.
	terminationWindow = 3
	// terminationAverage is the rolling-average bar below which the session
	// is terminated early.
	terminationAverage = 3.5
	// questionQuota is the number of answered questions that completes a
	// normal interview.
	questionQuota = 8
)

// Outcome is the result of one policy evaluation.
type Outcome struct {
	Decision Decision
	// Reason is set on early termination and cites the computed average.
	Reason string
	// TopicFailed marks a forced advance after the pushback budget ran out.
	TopicFailed bool
}

// Decide applies the scoring policy to the latest score and session history.
// score is the latest turn's score, pushbacks the retries already used on the
// current topic, scores every turn score so far including the latest,
// questionCount the number of answered questions, and stage the stage the
// next question would belong to.
//
// Rules are evaluated in strict precedence order: pushback, forced advance,
// early termination, normal completion, advance.
func Decide(score float64, pushbacks int, scores []float64, questionCount int, stage Stage) Outcome {
	if score <= pushbackScore && pushbacks < maxPushbacks {
		return Outcome{Decision: DecisionPushback}
	}

	if score <= pushbackScore {
		return Outcome{Decision: DecisionAdvance, TopicFailed: true}
	}

	if len(scores) >= terminationWindow {
		recent := scores[len(scores)-terminationWindow:]
		var sum float64
		for _, s := range recent {
			sum += s
		}
		avg := sum / float64(len(recent))
		if avg < terminationAverage {
			return Outcome{
				Decision: DecisionEarlyTerminate,
				Reason:   fmt.Sprintf("Performance below bar (avg %.1f/10)", avg),
			}
		}
	}

	if questionCount >= questionQuota || stage == StageComplete {
		return Outcome{Decision: DecisionReport}
	}

	return Outcome{Decision: DecisionAdvance}
}
