// Package result turns a finished session's counters into the final score card.
package result

import "math"

// Result is the final score card of a session.
type Result struct {
	Score          int    `json:"score"`
	TotalPoints    int    `json:"totalPoints"`
	CorrectCount   int    `json:"correctCount"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
	Stars          int    `json:"stars"`
	Advice         string `json:"advice,omitempty"`
}

// Evaluate computes percentage and star rating. Rounding is half-up.
func Evaluate(score, totalPoints, correctCount, totalQuestions int) Result {
	return Result{
		Score:          score,
		TotalPoints:    totalPoints,
		CorrectCount:   correctCount,
		TotalQuestions: totalQuestions,
		Percentage:     Percentage(score, totalPoints),
		Stars:          Stars(Percentage(score, totalPoints)),
	}
}

// Percentage returns round(100*score/totalPoints), or 0 without points.
func Percentage(score, totalPoints int) int {
	if totalPoints <= 0 {
		return 0
	}
	return int(math.Floor(100*float64(score)/float64(totalPoints) + 0.5))
}

// Stars maps a percentage to a 1..3 rating.
func Stars(percentage int) int {
	switch {
	case percentage >= 80:
		return 3
	case percentage >= 50:
		return 2
	default:
		return 1
	}
}
