package scheduling

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidScheduleFormat = errors.New("invalid schedule format, expected HH:MM - HH:MM")
	ErrInvalidClock          = errors.New("invalid time of day, expected HH:MM")
	ErrInvalidWeekday        = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
)

var schedulePattern = regexp.MustCompile(`(\d{1,2})[h:](\d{2})\s*-\s*(\d{1,2})[h:](\d{2})`)

// weekdayNames are the French abbreviations used in rendered schedules, indexed Sunday=0.
var weekdayNames = [7]string{"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}

// ParseSchedule extracts the start and end times from a free-text schedule such as
// "Lun, Mer 14:00 - 16:00" or "9h30-11h00" and returns them as zero-padded HH:MM strings.
func ParseSchedule(schedule string) (startTime, endTime string, err error) {
	m := schedulePattern.FindStringSubmatch(schedule)
	if m == nil {
		return "", "", ErrInvalidScheduleFormat
	}
	if startTime, err = clock(m[1], m[2]); err != nil {
		return "", "", ErrInvalidScheduleFormat
	}
	if endTime, err = clock(m[3], m[4]); err != nil {
		return "", "", ErrInvalidScheduleFormat
	}
	return startTime, endTime, nil
}

// FormatSchedule renders the canonical schedule string, e.g. "Lun, Mer 14:00 - 16:00".
func FormatSchedule(weekDays []int, startTime, endTime string) (string, error) {
	days, err := sortedWeekdays(weekDays)
	if err != nil {
		return "", err
	}
	if len(days) == 0 {
		return "", ErrNoWeekdaysSelected
	}
	if _, err := ClockMinutes(startTime); err != nil {
		return "", err
	}
	if _, err := ClockMinutes(endTime); err != nil {
		return "", err
	}

	names := make([]string, len(days))
	for i, d := range days {
		names[i] = weekdayNames[d]
	}
	return fmt.Sprintf("%s %s - %s", strings.Join(names, ", "), startTime, endTime), nil
}

// ClockMinutes converts an HH:MM time of day into minutes after midnight.
func ClockMinutes(hhmm string) (int, error) {
	hour, minute, ok := strings.Cut(hhmm, ":")
	if !ok || len(hour) != 2 || len(minute) != 2 {
		return 0, ErrInvalidClock
	}
	normalized, err := clock(hour, minute)
	if err != nil || normalized != hhmm {
		return 0, ErrInvalidClock
	}
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	return h*60 + m, nil
}

func clock(hour, minute string) (string, error) {
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return "", ErrInvalidClock
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return "", ErrInvalidClock
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

func sortedWeekdays(weekDays []int) ([]int, error) {
	days := slices.Clone(weekDays)
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, ErrInvalidWeekday
		}
	}
	slices.Sort(days)
	return slices.Compact(days), nil
}
