package challenge

import (
	"strings"
	"time"

	"robocoop/schedule"

	"github.com/pkg/errors"
)

var weekdaysByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// InterpretedEndDate resolves a weekday name to a concrete deadline at 11:59
// on the next occurrence of that weekday, in now's location. Naming today's
// weekday (or one already passed this week) means next week: the deadline is
// always strictly in the future
func InterpretedEndDate(dayName string, now time.Time) (endDay time.Time, err error) {
	weekday, ok := weekdaysByName[strings.ToLower(dayName)]
	if !ok {
		return time.Time{}, errors.Errorf("unknown day name [%s]", dayName)
	}

	daysAhead := int(weekday) - int(now.Weekday())
	if daysAhead <= 0 {
		daysAhead = daysAhead + 7
	}

	day := now.AddDate(0, 0, daysAhead)

	return time.Date(day.Year(), day.Month(), day.Day(), 11, 59, 0, 0, now.Location()), nil
}

// InPast returns true if endDay is at or before now. The boundary is
// inclusive: a challenge ending exactly now counts as over
func InPast(endDay time.Time, now time.Time) bool {
	return !endDay.After(now)
}

// ScheduleForFrequency maps a reminder frequency to the schedule the reminder
// timer runs on. Anything that isn't a production frequency (including the
// debug value) maps to a 5 second interval
func ScheduleForFrequency(f Frequency) schedule.Definition {
	switch f {
	case Hourly:
		return schedule.Definition{Interval: 1, Unit: schedule.Hours}
	case HalfHourly:
		return schedule.Definition{Interval: 30, Unit: schedule.Minutes}
	case Daily:
		return schedule.Definition{Interval: 1, Unit: schedule.Days}
	}

	return schedule.Definition{Interval: 5, Unit: schedule.Seconds}
}
