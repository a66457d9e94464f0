package conflict

import "time"

type SlotLimits struct {
	MaxIterations int
	// Horizon is how far past the desired start the search may look.
	Horizon time.Duration
}

var DefaultSlotLimits = SlotLimits{
	MaxIterations: 200,
	Horizon:       14 * 24 * time.Hour,
}

// NextFreeSlot keeps the desired duration and moves the start to the latest
// end among the intervals it collides with, until nothing collides. It gives
// up after MaxIterations moves or once the start passes the horizon.
func NextFreeSlot(desired Interval, existing []Interval, limits SlotLimits) (Interval, bool) {
	if limits.MaxIterations <= 0 {
		limits.MaxIterations = DefaultSlotLimits.MaxIterations
	}
	if limits.Horizon <= 0 {
		limits.Horizon = DefaultSlotLimits.Horizon
	}
	duration := desired.Duration()
	if duration <= 0 {
		return Interval{}, false
	}
	deadline := desired.Start.Add(limits.Horizon)

	candidate := desired
	for range limits.MaxIterations {
		if candidate.Start.After(deadline) {
			return Interval{}, false
		}
		latest, hit := time.Time{}, false
		for _, e := range existing {
			if Overlaps(candidate, e) && e.End.After(latest) {
				latest, hit = e.End, true
			}
		}
		if !hit {
			return candidate, true
		}
		candidate.Start = latest
		candidate.End = latest.Add(duration)
	}
	return Interval{}, false
}
