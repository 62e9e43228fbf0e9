package availability

import (
	"testing"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/domain/interval"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func strp(s string) *string { return &s }

func TestResolveUnavailability(t *testing.T) {
	cases := []struct {
		name       string
		start, end *string
		want       interval.Interval
	}{
		{"whole day", nil, nil, interval.Interval{Start: monday(0, 0), End: monday(0, 0).AddDate(0, 0, 1)}},
		{"start only", strp("14:00"), nil, interval.Interval{Start: monday(14, 0), End: monday(0, 0).AddDate(0, 0, 1)}},
		{"end only", nil, strp("11:00"), interval.Interval{Start: monday(0, 0), End: monday(11, 0)}},
		{"both", strp("12:00"), strp("13:00"), interval.Interval{Start: monday(12, 0), End: monday(13, 0)}},
		{"empty strings", strp(""), strp(""), interval.Interval{Start: monday(0, 0), End: monday(0, 0).AddDate(0, 0, 1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveUnavailability(models.Unavailability{Date: "2026-03-02", StartTime: tc.start, EndTime: tc.end}, loc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Start.Equal(tc.want.Start) || !got.End.Equal(tc.want.End) {
				t.Fatalf("got [%s, %s), want [%s, %s)", got.Start, got.End, tc.want.Start, tc.want.End)
			}
		})
	}
}

func TestResolveUnavailabilityRejectsInverted(t *testing.T) {
	_, err := ResolveUnavailability(models.Unavailability{Date: "2026-03-02", StartTime: strp("15:00"), EndTime: strp("14:00")}, loc)
	if err == nil {
		t.Fatal("expected error for start after end")
	}
	if _, err := ResolveUnavailability(models.Unavailability{Date: "02/03/2026"}, loc); err == nil {
		t.Fatal("expected error for bad date")
	}
}

func TestUnavailabilitySourceSkipsBadRows(t *testing.T) {
	src, skipped := NewUnavailabilitySource([]models.Unavailability{
		{Date: "2026-03-02", StartTime: strp("12:00"), EndTime: strp("13:00")},
		{Date: "2026-03-02", StartTime: strp("18:00"), EndTime: strp("17:00")},
	}, loc)
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped row, got %d", len(skipped))
	}
	if !src.Blocks(interval.New(monday(12, 30), 15*time.Minute)) {
		t.Fatal("valid block should apply")
	}
	if src.Blocks(interval.New(monday(17, 0), 30*time.Minute)) {
		t.Fatal("skipped row must not block")
	}
}

func TestWorkingHoursSourceValidation(t *testing.T) {
	bad := [][]models.WorkingHours{
		{{Weekday: 0, StartTime: "09:00", EndTime: "17:00"}},
		{{Weekday: 8, StartTime: "09:00", EndTime: "17:00"}},
		{{Weekday: 1, StartTime: "17:00", EndTime: "09:00"}},
		{{Weekday: 1, StartTime: "9h", EndTime: "17:00"}},
	}
	for i, rows := range bad {
		if _, err := NewWorkingHoursSource(rows); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestWorkingHoursAdmits(t *testing.T) {
	wh := mondayHours(t)

	if !wh.Admits(interval.New(monday(9, 0), 30*time.Minute)) {
		t.Fatal("opening slot should be admitted")
	}
	if !wh.Admits(interval.New(monday(16, 30), 30*time.Minute)) {
		t.Fatal("slot ending at closing should be admitted")
	}
	if wh.Admits(interval.New(monday(16, 45), 30*time.Minute)) {
		t.Fatal("slot past closing should not be admitted")
	}
	if wh.Admits(interval.New(monday(10, 0).AddDate(0, 0, 1), 30*time.Minute)) {
		t.Fatal("tuesday is a day off")
	}
}

func TestBookedSourceSpillsPastMidnight(t *testing.T) {
	late := []models.Appointment{{StartTime: monday(23, 30), DurationMin: 30, Status: "confirmed"}}
	b := NewBookedSource(late, 15*time.Minute, loc)

	tuesday := monday(0, 0).AddDate(0, 0, 1)
	if !b.Blocks(interval.New(tuesday, 10*time.Minute)) {
		t.Fatal("buffer running past midnight should block the next day")
	}
	if b.Blocks(interval.New(tuesday.Add(15*time.Minute), 10*time.Minute)) {
		t.Fatal("slot after the buffer should be free")
	}
}

func TestBookedSourceNormalizesLocation(t *testing.T) {
	utcStart := monday(10, 0).UTC()
	b := NewBookedSource([]models.Appointment{{StartTime: utcStart, DurationMin: 30, Status: "confirmed"}}, 0, loc)

	if len(b.On(monday(0, 0))) != 1 {
		t.Fatal("appointment stored in UTC should be keyed by salon date")
	}
}
