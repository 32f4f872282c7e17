package domain

import (
	"context"
	"errors"

	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"github.com/smallbiznis/streetsignal/pkg/window"
)

var ErrRatingOutOfRange = errors.New("rating_out_of_range")

const (
	MinRating = 0
	MaxRating = 10
)

type Ratings = venuedomain.VibeRatings

func Validate(r Ratings) error {
	for _, v := range []float64{r.Competition, r.Skill, r.Friendly, r.Intensity} {
		if v < MinRating || v > MaxRating {
			return ErrRatingOutOfRange
		}
	}
	return nil
}

// SessionScore is the mean of the four axes.
func SessionScore(r Ratings) float64 {
	return (r.Competition + r.Skill + r.Friendly + r.Intensity) / 4
}

// Push appends score to history keeping at most size entries and returns the
// new history with its rounded mean.
func Push(history []float64, score float64, size int) ([]float64, *float64) {
	w := window.From(size, history)
	w.Push(score)
	items := w.Items()
	return items, venuedomain.ScoreOf(items)
}

type Service interface {
	Record(ctx context.Context, venueID string, ratings Ratings) (venuedomain.Venue, error)
}
