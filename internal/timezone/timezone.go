package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves tz, falling back to the salon default.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clock returns wall-clock time in a fixed salon location.
type Clock struct {
	Loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location) Clock {
	return Clock{Loc: loc, now: time.Now}
}

// FixedClock always reports t; tests use it to pin "now".
func FixedClock(t time.Time) Clock {
	return Clock{Loc: t.Location(), now: func() time.Time { return t }}
}

func (c Clock) Now() time.Time {
	return c.now().In(c.Loc)
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseLocal accepts RFC3339 or a bare "2006-01-02T15:04" read in loc.
func ParseLocal(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, loc)
}
