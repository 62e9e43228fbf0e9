package interval

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func New(start time.Time, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Extend returns the interval with d added to its end.
func (i Interval) Extend(d time.Duration) Interval {
	return Interval{Start: i.Start, End: i.End.Add(d)}
}

// Overlaps reports whether a and b share any instant.
// Touching endpoints do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Contains reports whether inner lies entirely within outer.
func Contains(outer, inner Interval) bool {
	return !inner.Start.Before(outer.Start) && !outer.End.Before(inner.End)
}

func OverlapsAny(x Interval, set []Interval) bool {
	for _, b := range set {
		if Overlaps(x, b) {
			return true
		}
	}
	return false
}
