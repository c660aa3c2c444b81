package scheduling

import (
	"iter"
	"slices"
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
)

const DateLayout = "2006-01-02"

var (
	ErrNoWeekdaysSelected = errors.New("at least one weekday must be selected")
	ErrInvalidDate        = errors.New("invalid date")
)

// Timestamp is implemented by store-native timestamp values that can be read as a time.
type Timestamp interface {
	ToDate() time.Time
}

// NormalizeDate reduces an ISO date string, a Timestamp or a time value to a calendar date at
// midnight UTC. The calendar day is read in the value's own location.
func NormalizeDate(v any) (time.Time, error) {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case *time.Time:
		if d == nil {
			return time.Time{}, ErrInvalidDate
		}
		t = *d
	case Timestamp:
		t = d.ToDate()
	case string:
		parsed, err := parseDateString(d)
		if err != nil {
			return time.Time{}, err
		}
		t = parsed
	default:
		return time.Time{}, ErrInvalidDate
	}
	if t.IsZero() {
		return time.Time{}, ErrInvalidDate
	}

	day := now.With(t).BeginningOfDay()
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), nil
}

func parseDateString(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := now.ParseInLocation(time.UTC, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidDate, "%q", s)
	}
	return t, nil
}

// ExpandOccurrences yields, in ascending order, every calendar day between startDate and
// endDate (inclusive) whose weekday (Sunday=0) is in weekDays. The sequence is empty when
// startDate is after endDate and can be ranged over any number of times.
func ExpandOccurrences(startDate, endDate time.Time, weekDays []int) (iter.Seq[string], error) {
	days, err := sortedWeekdays(weekDays)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, ErrNoWeekdaysSelected
	}

	var selected [7]bool
	for _, d := range days {
		selected[d] = true
	}

	start, err := NormalizeDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := NormalizeDate(endDate)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			if !selected[day.Weekday()] {
				continue
			}
			if !yield(day.Format(DateLayout)) {
				return
			}
		}
	}, nil
}

// Occurrences collects ExpandOccurrences into a slice.
func Occurrences(startDate, endDate time.Time, weekDays []int) ([]string, error) {
	seq, err := ExpandOccurrences(startDate, endDate, weekDays)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}
