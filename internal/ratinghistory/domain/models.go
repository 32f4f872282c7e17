package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/streetsignal/pkg/window"
)

// DefaultUserID identifies the single local player.
const DefaultUserID = "u1"

var (
	ErrInvalidRating = errors.New("invalid_rating")
	ErrInvalidScore  = errors.New("invalid_score")
)

type Snapshot struct {
	Rating     int       `json:"rating"`
	Label      string    `json:"label"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Tracker holds the newest snapshots of a rating series.
type Tracker struct {
	w *window.Window[Snapshot]
}

func NewTracker(size int, snapshots ...Snapshot) *Tracker {
	return &Tracker{w: window.From(size, snapshots)}
}

func (t *Tracker) Append(s Snapshot) error {
	if s.Rating <= 0 {
		return ErrInvalidRating
	}
	t.w.Push(s)
	return nil
}

func (t *Tracker) Snapshots() []Snapshot { return t.w.Items() }

func (t *Tracker) Len() int { return t.w.Len() }

func (t *Tracker) Cap() int { return t.w.Cap() }

// Resize changes how many snapshots are kept, dropping the oldest first.
func (t *Tracker) Resize(size int) { t.w.Resize(size) }

// Current returns the newest rating.
func (t *Tracker) Current() (int, bool) {
	last, ok := t.w.Last()
	return last.Rating, ok
}

// Delta is the rating gained across the retained window, zero with fewer
// than two snapshots.
func (t *Tracker) Delta() int {
	if t.w.Len() < 2 {
		return 0
	}
	first, _ := t.w.First()
	last, _ := t.w.Last()
	return last.Rating - first.Rating
}

var monthLabels = [...]string{"jan", "fév", "mar", "avr", "mai", "juin", "juil", "août", "sep", "oct", "nov", "déc"}

// Label renders a short French day label such as "5 fév".
func Label(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), monthLabels[t.Month()-1])
}

// MockHistory is the sample series shown before any match is played.
func MockHistory(year int) []Snapshot {
	points := []struct {
		rating     int
		month, day int
	}{
		{1180, 1, 1}, {1195, 1, 5}, {1200, 1, 10}, {1210, 1, 15}, {1220, 1, 20}, {1230, 1, 25},
		{1225, 1, 28}, {1240, 2, 1}, {1235, 2, 5}, {1245, 2, 10}, {1250, 2, 15},
	}
	out := make([]Snapshot, 0, len(points))
	for _, p := range points {
		at := time.Date(year, time.Month(p.month), p.day, 0, 0, 0, 0, time.UTC)
		out = append(out, Snapshot{Rating: p.rating, Label: Label(at), RecordedAt: at})
	}
	return out
}

type MatchOutcome string

const (
	MatchVictory MatchOutcome = "victory"
	MatchPending MatchOutcome = "pending_validation"
)

type MatchResult struct {
	Outcome MatchOutcome `json:"outcome"`
	Gain    int          `json:"gain"`
	Rating  int          `json:"rating"`
}

type History struct {
	Snapshots []Snapshot `json:"snapshots"`
	Current   int        `json:"current"`
	Delta     int        `json:"delta"`
}

// Repository stores rating rows per user.
type Repository interface {
	Recent(ctx context.Context, userID string, limit int) ([]Snapshot, error)
	Append(ctx context.Context, userID string, s Snapshot) error
}

type Service interface {
	History(ctx context.Context) History
	Append(ctx context.Context, rating int) (History, error)
	RecordMatch(ctx context.Context, myScore, opponentScore int) (MatchResult, error)
	Reset(ctx context.Context) error
}
