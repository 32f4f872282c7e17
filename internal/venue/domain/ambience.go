package domain

import "math"

// AmbienceWindow is the default number of ratings kept per venue.
const AmbienceWindow = 5

// ScoreOf returns the mean of history rounded to one decimal, or nil when
// history is empty.
func ScoreOf(history []float64) *float64 {
	if len(history) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range history {
		sum += v
	}
	score := Round1(sum / float64(len(history)))
	return &score
}

// Round1 rounds half away from zero to one decimal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
