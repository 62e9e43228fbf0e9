package availability

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/domain/interval"
)

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotUnavailable SlotStatus = "unavailable"
	SlotPast        SlotStatus = "past"
)

type Slot struct {
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Status SlotStatus `json:"status"`
}

type Day struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

type Grid struct {
	WeekStart time.Time `json:"week_start"`
	StepMin   int       `json:"step_min"`
	Days      []Day     `json:"days"`
}

// GridConfig fixes the daily span scanned for candidate starts and the
// step between them. The step does not depend on service duration.
type GridConfig struct {
	DayStart time.Duration
	DayEnd   time.Duration
	Step     time.Duration
}

func DefaultGridConfig() GridConfig {
	return GridConfig{
		DayStart: 8 * time.Hour,
		DayEnd:   20 * time.Hour,
		Step:     15 * time.Minute,
	}
}

// Sources bundles the three providers consulted for every slot.
type Sources struct {
	WorkingHours   WorkingHoursSource
	Unavailability UnavailabilitySource
	Booked         BookedSource
}

// WeekStart returns Monday 00:00 of the week containing now, shifted by
// weekOffset weeks, in now's location.
func WeekStart(now time.Time, weekOffset int) time.Time {
	today := midnight(now)
	monday := today.AddDate(0, 0, -(ISOWeekday(today) - 1))
	return monday.AddDate(0, 0, 7*weekOffset)
}

// Classify applies the precedence past > outside working hours >
// unavailability > booked > available. Booking commit runs the same
// function so grid and commit never disagree.
func Classify(slot interval.Interval, now time.Time, src Sources) SlotStatus {
	switch {
	case slot.Start.Before(now):
		return SlotPast
	case !src.WorkingHours.Admits(slot):
		return SlotUnavailable
	case src.Unavailability.Blocks(slot):
		return SlotUnavailable
	case src.Booked.Blocks(slot):
		return SlotBooked
	default:
		return SlotAvailable
	}
}

// Generate builds the 7 x offsets grid for a service of the given
// duration. It never mutates its sources.
func Generate(cfg GridConfig, weekStart time.Time, duration time.Duration, now time.Time, src Sources) Grid {
	g := Grid{
		WeekStart: weekStart,
		StepMin:   int(cfg.Step / time.Minute),
		Days:      make([]Day, 0, 7),
	}
	if cfg.Step <= 0 || duration <= 0 {
		return g
	}

	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		day := Day{Date: date.Format(DateLayout)}

		for off := cfg.DayStart; off < cfg.DayEnd; off += cfg.Step {
			slot := interval.New(at(date, off), duration)
			day.Slots = append(day.Slots, Slot{
				Start:  slot.Start,
				End:    slot.End,
				Status: Classify(slot, now, src),
			})
		}
		g.Days = append(g.Days, day)
	}
	return g
}

// Find returns the grid cell starting at start, if any.
func (g Grid) Find(start time.Time) (Slot, bool) {
	key := start.Format(DateLayout)
	for _, d := range g.Days {
		if d.Date != key {
			continue
		}
		for _, s := range d.Slots {
			if s.Start.Equal(start) {
				return s, true
			}
		}
	}
	return Slot{}, false
}

// GridKey identifies a cacheable grid. Version is the barber's cache
// version at the time the grid's sources were read.
type GridKey struct {
	BarberID  uint
	ServiceID uint
	WeekStart string
	Version   int64
}

// MarkPast flips every slot starting before now to past. Past has the
// highest precedence, so this keeps a cached grid correct as time moves.
func (g *Grid) MarkPast(now time.Time) {
	for d := range g.Days {
		for i := range g.Days[d].Slots {
			if g.Days[d].Slots[i].Start.Before(now) {
				g.Days[d].Slots[i].Status = SlotPast
			}
		}
	}
}
