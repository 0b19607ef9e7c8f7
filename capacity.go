package gts

import (
	"fmt"
	"strings"
	"time"
)

const DefaultApptMinutes = 30
const DefaultDosesPerAppt = 1

// ApptConfig holds the assumptions used to turn open hours into doses
type ApptConfig struct {
	ApptMinutes  int
	DosesPerAppt int
}

func DefaultApptConfig() ApptConfig {
	return ApptConfig{
		ApptMinutes:  DefaultApptMinutes,
		DosesPerAppt: DefaultDosesPerAppt,
	}
}

// TimeOfDay is a wall clock time, in minutes since local midnight
type TimeOfDay int

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

var timeOfDayLayouts = []string{"15:04:05", "15:04"}

// EndOfDay is midnight at the end of the day, written as 24:00
const EndOfDay = TimeOfDay(24 * 60)

func ParseTimeOfDay(str string) (TimeOfDay, error) {
	cleaned := strings.TrimSpace(str)
	if cleaned == "24:00" || cleaned == "24:00:00" {
		return EndOfDay, nil
	}

	for _, layout := range timeOfDayLayouts {
		parsed, err := time.Parse(layout, cleaned)
		if err == nil {
			return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
		}
	}

	return 0, fmt.Errorf("Could not parse time of day: '%s'", str)
}

func ParseWeekday(str string) (time.Weekday, error) {
	cleaned := strings.ToLower(strings.TrimSpace(str))
	if len(cleaned) >= 3 {
		for day := time.Sunday; day <= time.Saturday; day++ {
			name := strings.ToLower(day.String())
			if cleaned == name || cleaned == name[:3] {
				return day, nil
			}
		}
	}

	return time.Sunday, fmt.Errorf("Unknown day of week: '%s'", str)
}

// OpenHourWindow is a recurring block of open hours. LocalEnd is expected to
// be on the same day as LocalStart.
type OpenHourWindow struct {
	Days       []time.Weekday
	LocalStart TimeOfDay
	LocalEnd   TimeOfDay
}

func (w OpenHourWindow) distinctDays() int {
	seen := make(map[time.Weekday]bool)
	for _, day := range w.Days {
		seen[day] = true
	}

	return len(seen)
}

func (w OpenHourWindow) elapsedMinutes() int {
	return int(w.LocalEnd) - int(w.LocalStart)
}

// EstimateDoses returns the estimated number of doses that can be given in
// the windows, assuming every appointment slot is filled. Windows that end
// before they start contribute nothing.
func EstimateDoses(windows []OpenHourWindow, appt ApptConfig) int {
	if appt.ApptMinutes <= 0 || appt.DosesPerAppt <= 0 {
		return 0
	}

	total := 0
	for _, window := range windows {
		elapsed := window.elapsedMinutes()
		if elapsed <= 0 {
			continue
		}

		slotsPerDay := elapsed / appt.ApptMinutes
		dosesPerDay := slotsPerDay * appt.DosesPerAppt
		total += dosesPerDay * window.distinctDays()
	}

	return total
}
