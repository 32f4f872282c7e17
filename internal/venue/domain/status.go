package domain

import "time"

type Status string

const (
	StatusEmpty  Status = "empty"
	StatusActive Status = "active"
	StatusHot    Status = "hot"
)

func (s Status) Valid() bool {
	switch s {
	case StatusEmpty, StatusActive, StatusHot:
		return true
	default:
		return false
	}
}

type Transition string

const (
	TransitionCheckIn       Transition = "check_in"
	TransitionOccupancyDrop Transition = "occupancy_drop"
	TransitionIdleTimeout   Transition = "idle_timeout"
)

// Next applies a transition. occupancy is the player count after the event
// that triggered it.
//
//	check_in        any    -> hot
//	occupancy_drop  *      -> empty when occupancy is 0, hot -> active otherwise
//	idle_timeout    hot    -> active, active -> empty when occupancy is 0
func (s Status) Next(t Transition, occupancy int) Status {
	switch t {
	case TransitionCheckIn:
		return StatusHot
	case TransitionOccupancyDrop:
		if occupancy <= 0 {
			return StatusEmpty
		}
		if s == StatusHot {
			return StatusActive
		}
		return s
	case TransitionIdleTimeout:
		switch {
		case s == StatusHot:
			return StatusActive
		case s == StatusActive && occupancy <= 0:
			return StatusEmpty
		}
		return s
	default:
		return s
	}
}

// StatusFromOccupancy is the status given to a venue that has no signal yet.
func StatusFromOccupancy(current int) Status {
	if current > 0 {
		return StatusActive
	}
	return StatusEmpty
}

// DecayPolicy controls idle timeouts measured from the last signal.
type DecayPolicy struct {
	HotIdle    time.Duration
	ActiveIdle time.Duration
}

// Decay applies an idle timeout to v when it is due. Venues that never
// received a signal do not decay. Reaching empty clears the session.
func (p DecayPolicy) Decay(v *Venue, now time.Time) (StatusChange, bool) {
	if v.LastSignalAt == nil {
		return StatusChange{}, false
	}
	idle := now.Sub(*v.LastSignalAt)

	due := false
	switch v.Status {
	case StatusHot:
		due = p.HotIdle > 0 && idle >= p.HotIdle
	case StatusActive:
		due = p.ActiveIdle > 0 && idle >= p.ActiveIdle && v.Occupancy.Current <= 0
	}
	if !due {
		return StatusChange{}, false
	}

	from := v.Status
	v.Status = from.Next(TransitionIdleTimeout, v.Occupancy.Current)
	if v.Status == StatusEmpty {
		v.ActiveSession = nil
	}
	return StatusChange{VenueID: v.ID, From: from, To: v.Status}, from != v.Status
}
