package availability

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/interval"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const DateLayout = "2006-01-02"

// ISOWeekday maps time.Weekday onto 1 = Monday ... 7 = Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ParseClock turns "HH:MM" into an offset from midnight.
func ParseClock(hm string) (time.Duration, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", hm, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func at(day time.Time, offset time.Duration) time.Time {
	return midnight(day).Add(offset)
}

// ======================================================
// WORKING HOURS
// ======================================================

type clockRange struct {
	start time.Duration
	end   time.Duration
}

// WorkingHoursSource answers whether a slot lies inside the barber's
// recurring weekly schedule.
type WorkingHoursSource struct {
	days map[int]clockRange
}

func NewWorkingHoursSource(rows []models.WorkingHours) (WorkingHoursSource, error) {
	s := WorkingHoursSource{days: make(map[int]clockRange, len(rows))}
	for _, wh := range rows {
		if wh.Weekday < 1 || wh.Weekday > 7 {
			return WorkingHoursSource{}, fmt.Errorf("working hours %d: weekday %d out of range", wh.ID, wh.Weekday)
		}
		start, err := ParseClock(wh.StartTime)
		if err != nil {
			return WorkingHoursSource{}, err
		}
		end, err := ParseClock(wh.EndTime)
		if err != nil {
			return WorkingHoursSource{}, err
		}
		if start >= end {
			return WorkingHoursSource{}, fmt.Errorf("working hours %d: start %s not before end %s", wh.ID, wh.StartTime, wh.EndTime)
		}
		s.days[wh.Weekday] = clockRange{start: start, end: end}
	}
	return s, nil
}

// RangeOn resolves the working range for the calendar day of date.
func (s WorkingHoursSource) RangeOn(date time.Time) (interval.Interval, bool) {
	r, ok := s.days[ISOWeekday(date)]
	if !ok {
		return interval.Interval{}, false
	}
	return interval.Interval{Start: at(date, r.start), End: at(date, r.end)}, true
}

func (s WorkingHoursSource) Admits(slot interval.Interval) bool {
	r, ok := s.RangeOn(slot.Start)
	if !ok {
		return false
	}
	return interval.Contains(r, slot)
}

// ======================================================
// UNAVAILABILITY
// ======================================================

// ResolveUnavailability converts a stored entry into an absolute range:
// no times blocks the whole day, a lone start blocks until midnight and
// a lone end blocks from midnight.
func ResolveUnavailability(u models.Unavailability, loc *time.Location) (interval.Interval, error) {
	day, err := time.ParseInLocation(DateLayout, u.Date, loc)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("invalid date %q: %w", u.Date, err)
	}

	start := time.Duration(0)
	end := 24 * time.Hour

	if u.StartTime != nil && *u.StartTime != "" {
		if start, err = ParseClock(*u.StartTime); err != nil {
			return interval.Interval{}, err
		}
	}
	if u.EndTime != nil && *u.EndTime != "" {
		if end, err = ParseClock(*u.EndTime); err != nil {
			return interval.Interval{}, err
		}
	}

	r := interval.Interval{Start: at(day, start), End: at(day, end)}
	if !r.Valid() {
		return interval.Interval{}, fmt.Errorf("unavailability on %s: start must be before end", u.Date)
	}
	return r, nil
}

// UnavailabilitySource maps a date to the ranges blocked on it.
type UnavailabilitySource struct {
	loc    *time.Location
	byDate map[string][]interval.Interval
}

// NewUnavailabilitySource resolves every row; rows that cannot be
// resolved are returned in skipped so callers can log them.
func NewUnavailabilitySource(rows []models.Unavailability, loc *time.Location) (src UnavailabilitySource, skipped []error) {
	src = UnavailabilitySource{loc: loc, byDate: make(map[string][]interval.Interval)}
	for _, u := range rows {
		r, err := ResolveUnavailability(u, loc)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		src.byDate[u.Date] = append(src.byDate[u.Date], r)
	}
	return src, skipped
}

func (s UnavailabilitySource) On(date time.Time) []interval.Interval {
	return s.byDate[date.In(s.loc).Format(DateLayout)]
}

func (s UnavailabilitySource) Blocks(slot interval.Interval) bool {
	if interval.OverlapsAny(slot, s.On(slot.Start)) {
		return true
	}
	last := slot.End.Add(-time.Nanosecond)
	if last.In(s.loc).Format(DateLayout) != slot.Start.In(s.loc).Format(DateLayout) {
		return interval.OverlapsAny(slot, s.On(last))
	}
	return false
}

// ======================================================
// BOOKED
// ======================================================

// BookedSource holds a barber's live appointments, each widened by the
// post-appointment buffer. Dates are keyed in the salon location.
type BookedSource struct {
	loc    *time.Location
	byDate map[string][]interval.Interval
}

func NewBookedSource(apps []models.Appointment, buffer time.Duration, loc *time.Location) BookedSource {
	s := BookedSource{loc: loc, byDate: make(map[string][]interval.Interval)}
	for _, ap := range apps {
		if !Occupies(ap.Status) {
			continue
		}
		s.Add(OccupiedRange(ap, buffer))
	}
	return s
}

// OccupiedRange is [start, start+duration+buffer) for an appointment.
func OccupiedRange(ap models.Appointment, buffer time.Duration) interval.Interval {
	return interval.New(ap.StartTime, time.Duration(ap.DurationMin)*time.Minute+buffer)
}

func (s BookedSource) Add(r interval.Interval) {
	key := r.Start.In(s.loc).Format(DateLayout)
	s.byDate[key] = append(s.byDate[key], r)
}

func (s BookedSource) On(date time.Time) []interval.Interval {
	return s.byDate[date.In(s.loc).Format(DateLayout)]
}

// Blocks checks the slot's own date and the previous one, since a late
// appointment plus buffer can run past midnight.
func (s BookedSource) Blocks(slot interval.Interval) bool {
	if interval.OverlapsAny(slot, s.On(slot.Start)) {
		return true
	}
	return interval.OverlapsAny(slot, s.On(slot.Start.AddDate(0, 0, -1)))
}

// Occupies reports whether an appointment in this status holds its
// time range.
func Occupies(status string) bool {
	return appointment.Status(status).Occupies()
}
