package schedule_test

import (
	"testing"
	"time"

	"robocoop/schedule"

	"github.com/marcsantiago/gocron"
	"github.com/stretchr/testify/assert"
)

func TestDefinitionString(t *testing.T) {
	definitionToString := []struct {
		sd             schedule.Definition
		friendlyString string
	}{
		{schedule.Definition{Interval: 1, Weekday: time.Monday.String(), AtTime: "10:00"}, "Every Monday at 10:00"},
		{schedule.Definition{Interval: 1, Weekday: time.Friday.String(), AtTime: "06:00"}, "Every Friday at 06:00"},
		{schedule.Definition{Interval: 1, Unit: schedule.Seconds}, "Every second"},
		{schedule.Definition{Interval: 5, Unit: schedule.Seconds}, "Every 5 seconds"},
		{schedule.Definition{Interval: 1, Unit: schedule.Minutes}, "Every minute"},
		{schedule.Definition{Interval: 30, Unit: schedule.Minutes}, "Every 30 minutes"},
		{schedule.Definition{Interval: 1, Unit: schedule.Hours}, "Every hour"},
		{schedule.Definition{Interval: 1, Unit: schedule.Days}, "Every day"},
		{schedule.Definition{Interval: 1, Unit: schedule.Days, AtTime: "10:00"}, "Every day at 10:00"},
		{schedule.Definition{Interval: 2, Unit: schedule.Weeks}, "Every 2 weeks"},
	}

	for _, testCase := range definitionToString {
		t.Run(testCase.friendlyString, func(t *testing.T) {
			friendlyStr := testCase.sd.String()
			assert.Equalf(t, testCase.friendlyString, friendlyStr, "Expected different string value for schedule definition: %v", testCase.sd)
		})
	}
}

func TestNewJobFromDefinition(t *testing.T) {
	definitions := []schedule.Definition{
		{Interval: 1, Weekday: time.Monday.String(), AtTime: "10:00"},
		{Interval: 1, Weekday: time.Sunday.String(), AtTime: "04:00"},
		{Interval: 5, Unit: schedule.Seconds},
		{Interval: 30, Unit: schedule.Minutes},
		{Interval: 1, Unit: schedule.Hours},
		{Interval: 1, Unit: schedule.Days},
		{Interval: 1, Unit: schedule.Days, AtTime: "10:00"},
		{Interval: 2, Unit: schedule.Weeks},
		// When we have a weekday, units are ignored so it's still valid
		{Interval: 2, Unit: schedule.Weeks, Weekday: time.Monday.String()},
	}

	scheduler := gocron.NewScheduler()
	for _, sd := range definitions {
		t.Run(sd.String(), func(t *testing.T) {
			_, err := schedule.NewJob(scheduler, sd)

			assert.Nilf(t, err, "Expected valid job to be created for schedule definition: %v", sd)
		})
	}
}
