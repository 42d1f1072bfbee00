package schedule

import "time"

// ResolveDisplayStatus computes the status shown for a schedule at the
// reference instant `now`. The item's date and times are interpreted in
// now's location; callers must sample `now` in the institution timezone.
//
// A cancelled persisted status is sticky and wins over any time-based
// interpretation. Only an active item is reinterpreted against the clock:
// it is live from its first through its last minute, boundaries inclusive.
// The result is never written back; persisted status stays untouched.
func ResolveDisplayStatus(s Schedule, now time.Time) DisplayStatus {
	switch s.Status {
	case StatusCancelled:
		return DisplayCancelled
	case StatusCompleted:
		return DisplayCompleted
	}

	loc := now.Location()
	start := s.Date.At(s.StartTime, loc)
	end := s.Date.At(s.EndTime, loc)

	switch {
	case now.Before(start):
		return DisplayUpcoming
	case now.After(end):
		return DisplayCompleted
	default:
		return DisplayLiveNow
	}
}
