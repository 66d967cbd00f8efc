// Package plugins provides robocoop's built-in plugins
package plugins

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"robocoop"
	"robocoop/challenge"
	"robocoop/reminder"
	"robocoop/schedule"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// FitnessPluginName holds the name of the fitness plugin
const FitnessPluginName = "fitness"

const (
	leaderboardSizeKey        = "leaderboardSize"
	defaultLeaderboardSize    = 5
	defaultSlackerboardSize   = 3
	repJokeThreshold          = 500
	kickoffTime               = "10:00"
	frequencyChoices          = "*hourly*, *half-hourly* or *daily*"
	repJokeImageURL           = "http://i.imgur.com/seh6p.gif"
	negativeUndoImageURL      = "https://media.giphy.com/media/NbgeJftsErO5q/giphy.gif"
	noActivityAnswer          = "No one has done anything yet... :broken_heart:"
	noChallengeAnswer         = "There's no challenge set at the moment."
	noActiveChallengeAnswer   = "There isn't an active challenge right now."
	remindNoChallengeAnswer   = "I'd like to but, there isn't an active challenge right now..."
	endChallengeAnswer        = "Okay, I've ended the challenge. Stay out of trouble."
	remindersOffAnswer        = "Got it. I'll cool it with the reminders for now. :thumbsup:"
	dontUnderstandAnswer      = "I do not understand..."
	negativeRepsAnswer        = "Did it hurt?"
	badFrequencyAnswerFormat  = "Sorry chum, I don't understand. You can change to %s."
	challengeEndedFormat      = "<@%s> the challenge has ended."
	remindConfirmationFormat  = "Okay, I'll remind everybody to do a set of %d %s."
	newChallengeAnswerFormat  = "Okay <@%s>, %d %s by %s is the new challenge. How often should I remind everybody about the challenge? %s?"
	partialSetAnswerFormat    = "Sorry <@%s>, %s must be completed in sets of %d. If you need help counting try asking a friend."
	partialUndoAnswerFormat   = "Sorry, %s can only be undone in multiples of %d."
	undoTooManyAnswerFormat   = "You've only completed %d %s. Don't sass me."
	zeroRepsAnswerFormat      = "Thank you, <@%s>. I also did 0 %s just now."
	repsCountedAnswerFormat   = "Thank you, <@%s>. %d %s remaining."
	repsRoundedAnswerFormat   = "Thank you, <@%s> but, %s must be completed in sets of %d. I counted %d towards the total and ignored the remainder. %d %s remaining."
	undoneAnswerFormat        = "I always knew you lied about those reps <@%s>... Anyway, %d %s remaining."
	undoRoundedAnswerFormat   = "Since %s must be completed in sets of %d I removed %d from the total and ignored the remainder. %d %s remaining."
	statusEndedAnswerFormat   = "<@%s> the challenge has ended. You did %d %s."
	statusAnswerFormat        = "<@%s> you have done %d %s. *%d people* are actively particpating. If each of you continues to do *%d %s per day* you will complete your challenge on time by *%s*."
	kickoffStatusAnswerFormat = "Happy Monday! The challenge is still on: %d %s remaining before %s. Get to it."
)

var (
	newChallengeRegex = regexp.MustCompile("(?i)\\Anew challenge\\s+(\\S+)\\s+(.+)\\s+by\\s+(\\S+)\\s+in sets of\\s+(\\S+)\\s*\\z")
	didRepsRegex      = regexp.MustCompile("(?i)\\AI(?: did|'ve done)\\s+(\\S+)\\s*\\z")
	undoRepsRegex     = regexp.MustCompile("(?i)\\Aundo\\s+(\\S+)\\s*\\z")
	remindRegex       = regexp.MustCompile("(?i)\\Aremind\\s+(\\S+)\\s*\\z")
	statusRegex       = regexp.MustCompile("(?i)\\Astatus\\s*\\z")
	leaderboardRegex  = regexp.MustCompile("(?i)\\Aleaderboard\\s*\\z")
	slackerboardRegex = regexp.MustCompile("(?i)\\Aslackerboard\\s*\\z")
	endChallengeRegex = regexp.MustCompile("(?i)\\Aend the challenge\\s*\\z")
)

// Fitness holds the plugin data for the fitness challenge plugin
type Fitness struct {
	robocoop.Plugin
	store           *challenge.Store
	reminders       *reminder.Scheduler
	leaderboardSize int
	now             func() time.Time
}

// NewFitness creates a new instance of the fitness plugin
func NewFitness(c *viper.Viper, store *challenge.Store, reminders *reminder.Scheduler) (f *Fitness, err error) {
	c.SetDefault(leaderboardSizeKey, defaultLeaderboardSize)

	leaderboardSize := c.GetInt(leaderboardSizeKey)
	if leaderboardSize < 1 {
		return nil, errors.Errorf("%s config value must be at least 1 but was [%d]", leaderboardSizeKey, leaderboardSize)
	}

	f = new(Fitness)
	f.store = store
	f.reminders = reminders
	f.leaderboardSize = leaderboardSize
	f.now = time.Now

	f.Plugin = robocoop.Plugin{
		Name: FitnessPluginName,
		Commands: []robocoop.ActionDefinition{
			{
				Match: func(m *robocoop.IncomingMessage) bool {
					return newChallengeRegex.MatchString(m.NormalizedText)
				},
				Usage:       "new challenge <amount> <exercise> by <day> in sets of <reps>",
				Description: "Start a new group challenge (replaces the current one)",
				Answer:      f.startChallenge,
			},
			{
				Match: func(m *robocoop.IncomingMessage) bool {
					return didRepsRegex.MatchString(m.NormalizedText)
				},
				Usage:       "I did <amount>",
				Description: "Record completed reps towards the challenge",
				Answer:      f.recordReps,
			},
			{
				Match: func(m *robocoop.IncomingMessage) bool {
					return undoRepsRegex.MatchString(m.NormalizedText)
				},
				Usage:       "undo <amount>",
				Description: "Remove previously recorded reps",
				Answer:      f.undoReps,
			},
			{
				Match: func(m *robocoop.IncomingMessage) bool {
					return remindRegex.MatchString(m.NormalizedText)
				},
				Usage:       "remind <hourly|half-hourly|daily|never>",
				Description: "Change how often I remind everybody about the challenge",
				Answer:      f.changeReminders,
			},
			{
				Match: func(m *robocoop.IncomingMessage) bool {
					return statusRegex.MatchString(m.NormalizedText)
				},
				Usage:       "status",
				Description: "Show the current challenge status",
				Answer:      f.showStatus,
			},
			{
				Match: func(m *robocoop.IncomingMessage) bool {
					return leaderboardRegex.MatchString(m.NormalizedText)
				},
				Usage:       "leaderboard",
				Description: "Show the top contributors to the challenge",
				Answer:      f.showLeaderboard,
			},
			{
				Match: func(m *robocoop.IncomingMessage) bool {
					return slackerboardRegex.MatchString(m.NormalizedText)
				},
				Usage:       "slackerboard",
				Description: "Show who's been slacking off",
				Answer:      f.showSlackerboard,
			},
			{
				Match: func(m *robocoop.IncomingMessage) bool {
					return endChallengeRegex.MatchString(m.NormalizedText)
				},
				Usage:       "end the challenge",
				Description: "End the current challenge and wipe the slate",
				Answer:      f.endChallenge,
			},
		},
		ScheduledActions: []robocoop.ScheduledActionDefinition{
			{
				Schedule:    schedule.Definition{Interval: 1, Weekday: time.Monday.String(), AtTime: kickoffTime},
				Description: "Monday morning challenge kickoff",
				Action:      f.mondayKickoff,
			},
		},
	}

	return f, nil
}

// startChallenge replaces the current challenge with a fresh one. The end day
// is a weekday name resolved to 11:59 on its next occurrence and the user
// ledger starts empty
func (f *Fitness) startChallenge(m *robocoop.IncomingMessage) *robocoop.Answer {
	matches := newChallengeRegex.FindStringSubmatch(m.NormalizedText)

	reps, err := cast.ToIntE(matches[1])
	if err != nil {
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	setSize, err := cast.ToIntE(matches[4])
	if err != nil {
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	if reps <= 0 || setSize <= 0 || setSize > reps {
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	endDay, err := challenge.InterpretedEndDate(matches[3], f.now())
	if err != nil {
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	exercise := strings.TrimSpace(matches[2])

	st := f.store.Apply(challenge.StartChallenge(reps, exercise, endDay, setSize, m.Channel))

	return &robocoop.Answer{Text: fmt.Sprintf(newChallengeAnswerFormat, m.User, st.Reps, st.Exercise, st.EndDay.Weekday(), frequencyChoices)}
}

// recordReps handles "I did <n>" and "I've done <n>"
func (f *Fitness) recordReps(m *robocoop.IncomingMessage) *robocoop.Answer {
	matches := didRepsRegex.FindStringSubmatch(m.NormalizedText)

	reps, err := cast.ToIntE(matches[1])
	if err != nil {
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	if answer := f.checkOpenChallenge(m.User); answer != nil {
		return answer
	}

	if reps >= repJokeThreshold {
		return &robocoop.Answer{Attachments: []slack.Attachment{{Text: "Sure buddy, not falling for that one again...", ImageURL: repJokeImageURL}}}
	}

	st := f.store.State()

	result, err := f.store.Record(m.User, reps, f.now())
	switch {
	case errors.Is(err, challenge.ErrNegativeReps):
		return &robocoop.Answer{Text: negativeRepsAnswer}
	case errors.Is(err, challenge.ErrPartialSet):
		return &robocoop.Answer{Text: fmt.Sprintf(partialSetAnswerFormat, m.User, st.Exercise, st.SetSize)}
	case err != nil:
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	if reps == 0 {
		return &robocoop.Answer{Text: fmt.Sprintf(zeroRepsAnswerFormat, m.User, st.Exercise)}
	}

	if result.Remainder > 0 {
		return &robocoop.Answer{Text: fmt.Sprintf(repsRoundedAnswerFormat, m.User, st.Exercise, st.SetSize, result.Counted, result.Remaining, st.Exercise)}
	}

	return &robocoop.Answer{Text: fmt.Sprintf(repsCountedAnswerFormat, m.User, result.Remaining, st.Exercise)}
}

// undoReps handles "undo <n>"
func (f *Fitness) undoReps(m *robocoop.IncomingMessage) *robocoop.Answer {
	matches := undoRepsRegex.FindStringSubmatch(m.NormalizedText)

	reps, err := cast.ToIntE(matches[1])
	if err != nil {
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	if answer := f.checkOpenChallenge(m.User); answer != nil {
		return answer
	}

	st := f.store.State()

	if reps == 0 {
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	result, err := f.store.Undo(m.User, reps, f.now())
	switch {
	case errors.Is(err, challenge.ErrUndoExceedsTotal):
		return &robocoop.Answer{Text: fmt.Sprintf(undoTooManyAnswerFormat, result.Total, st.Exercise)}
	case errors.Is(err, challenge.ErrNegativeReps):
		return &robocoop.Answer{Attachments: []slack.Attachment{{Text: "...", ImageURL: negativeUndoImageURL}}}
	case errors.Is(err, challenge.ErrPartialSet):
		return &robocoop.Answer{Text: fmt.Sprintf(partialUndoAnswerFormat, st.Exercise, st.SetSize)}
	case err != nil:
		return &robocoop.Answer{Text: dontUnderstandAnswer}
	}

	if result.Remainder > 0 {
		return &robocoop.Answer{Text: fmt.Sprintf(undoRoundedAnswerFormat, st.Exercise, st.SetSize, result.Counted, result.Remaining, st.Exercise)}
	}

	return &robocoop.Answer{Text: fmt.Sprintf(undoneAnswerFormat, m.User, result.Remaining, st.Exercise)}
}

// changeReminders handles "remind <frequency>"
func (f *Fitness) changeReminders(m *robocoop.IncomingMessage) *robocoop.Answer {
	matches := remindRegex.FindStringSubmatch(m.NormalizedText)

	st := f.store.State()
	if !st.Active() {
		return &robocoop.Answer{Text: remindNoChallengeAnswer}
	}

	frequency, ok := challenge.ParseFrequency(matches[1])
	if !ok {
		return &robocoop.Answer{Text: fmt.Sprintf(badFrequencyAnswerFormat, frequencyChoices)}
	}

	f.reminders.Arm(f.MsgSender, frequency)

	if frequency == challenge.Never {
		return &robocoop.Answer{Text: remindersOffAnswer}
	}

	return &robocoop.Answer{Text: fmt.Sprintf(remindConfirmationFormat, st.SetSize, frequency)}
}

// showStatus summarizes the challenge for the asking user, including the daily
// pace everyone needs to hold to finish on time
func (f *Fitness) showStatus(m *robocoop.IncomingMessage) *robocoop.Answer {
	st := f.store.State()
	now := f.now()

	if !st.Active() {
		return &robocoop.Answer{Text: noChallengeAnswer}
	}

	if challenge.InPast(st.EndDay, now) {
		return &robocoop.Answer{Text: fmt.Sprintf(statusEndedAnswerFormat, m.User, st.UserReps(m.User), st.Exercise)}
	}

	remaining := st.Remaining()
	if remaining == st.Reps {
		return &robocoop.Answer{Text: noActivityAnswer}
	}

	activeUserCount := len(st.Users)
	daysRemaining := int(st.EndDay.Sub(now).Hours()/24) + 1
	dailyAverage := int(math.Ceil(float64(remaining) / float64(activeUserCount) / float64(daysRemaining)))

	return &robocoop.Answer{Text: fmt.Sprintf(statusAnswerFormat, m.User, st.UserReps(m.User), st.Exercise, activeUserCount, dailyAverage, st.Exercise, st.EndDay.Weekday())}
}

// showLeaderboard lists the top contributors
func (f *Fitness) showLeaderboard(m *robocoop.IncomingMessage) *robocoop.Answer {
	return f.formatBoard(f.store.Leaderboard(f.leaderboardSize))
}

// showSlackerboard lists the people contributing the least
func (f *Fitness) showSlackerboard(m *robocoop.IncomingMessage) *robocoop.Answer {
	return f.formatBoard(f.store.Slackerboard(defaultSlackerboardSize))
}

func (f *Fitness) formatBoard(entries []challenge.UserEntry) *robocoop.Answer {
	if len(entries) == 0 {
		return &robocoop.Answer{Text: noActivityAnswer}
	}

	var board strings.Builder
	for i, entry := range entries {
		if i > 0 {
			board.WriteString("\n")
		}

		fmt.Fprintf(&board, "> %d. <@%s> (%d)", i+1, entry.ID, entry.Reps)
	}

	return &robocoop.Answer{Text: board.String()}
}

// endChallenge wipes the challenge state and cancels reminders
func (f *Fitness) endChallenge(m *robocoop.IncomingMessage) *robocoop.Answer {
	st := f.store.State()
	if !st.Active() {
		return &robocoop.Answer{Text: noChallengeAnswer}
	}

	f.store.Apply(challenge.EndChallenge())
	f.reminders.Stop()

	return &robocoop.Answer{Text: endChallengeAnswer}
}

// checkOpenChallenge returns a corrective answer when there's no challenge to
// record against, nil when recording can proceed
func (f *Fitness) checkOpenChallenge(userID string) *robocoop.Answer {
	st := f.store.State()

	if !st.Active() {
		return &robocoop.Answer{Text: noActiveChallengeAnswer}
	}

	if challenge.InPast(st.EndDay, f.now()) {
		return &robocoop.Answer{Text: fmt.Sprintf(challengeEndedFormat, userID)}
	}

	return nil
}

// mondayKickoff posts a weekly nudge to the challenge channel while a
// challenge is running
func (f *Fitness) mondayKickoff(sender robocoop.MessageSender) {
	st := f.store.State()

	if !st.Active() || challenge.InPast(st.EndDay, f.now()) {
		return
	}

	message := fmt.Sprintf(kickoffStatusAnswerFormat, st.Remaining(), st.Exercise, st.EndDay.Weekday())

	err := sender.SendNewMessage(message, st.Channel)
	if err != nil {
		f.Logger.Printf("Error sending kickoff message to channel [%s]: %v\n", st.Channel, err)
	}
}
