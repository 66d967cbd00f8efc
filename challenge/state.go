// Package challenge holds the domain state of a team fitness challenge: the
// challenge parameters, the per-user rep ledger and the rules for recording
// and aggregating reps
package challenge

import (
	"strings"
	"time"
)

// Frequency is how often the reminder scheduler nudges the channel
type Frequency string

// Frequency values
const (
	Hourly     Frequency = "hourly"
	HalfHourly Frequency = "half-hourly"
	Daily      Frequency = "daily"
	Never      Frequency = "never"

	// Debug is accepted as input and maps to a 5 second interval. It is a
	// development affordance, not meant for production challenges
	Debug Frequency = "debug"
)

// ParseFrequency parses a reminder frequency case-insensitively, returning
// false if the value isn't a known frequency
func ParseFrequency(value string) (f Frequency, ok bool) {
	switch Frequency(strings.ToLower(value)) {
	case Hourly:
		return Hourly, true
	case HalfHourly:
		return HalfHourly, true
	case Daily:
		return Daily, true
	case Never:
		return Never, true
	case Debug:
		return Debug, true
	}

	return Never, false
}

// UserEntry holds the cumulative reps a user logged for the current challenge
type UserEntry struct {
	ID   string `json:"id"`
	Reps int    `json:"reps"`
}

// State is the full state of a team's challenge. A team has at most one
// active challenge at a time and an empty Exercise means no active challenge
type State struct {
	ID                string      `json:"id"`
	Team              string      `json:"team"`
	Exercise          string      `json:"exercise"`
	Reps              int         `json:"reps"`
	SetSize           int         `json:"setSize"`
	EndDay            time.Time   `json:"endDay"`
	ReminderFrequency Frequency   `json:"reminderFrequency"`
	Channel           string      `json:"channel"`
	Users             []UserEntry `json:"users"`
}

// NewState returns the default state for a team: no exercise, no target, no
// users and reminders off
func NewState(teamID string) State {
	return State{
		ID:                teamID,
		Team:              teamID,
		ReminderFrequency: Never,
		Users:             []UserEntry{},
	}
}

// Active returns true if the team has a challenge set
func (s State) Active() bool {
	return s.Exercise != ""
}
