package reminder

import (
	"fmt"
	"log"
	"strings"
	"testing"
	"time"

	"robocoop"
	"robocoop/challenge"
	"robocoop/test/capture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	challengeEnd = time.Date(2019, time.July, 12, 11, 59, 0, 0, time.UTC)
	// Wednesday, within reminder hours
	goodTime = time.Date(2019, time.July, 10, 9, 0, 0, 0, time.UTC)
)

func testLogger() robocoop.SLogger {
	var b strings.Builder
	return robocoop.NewSLogger(log.New(&b, "", 0), false)
}

func newTestScheduler(options ...Option) (s *Scheduler, cs *challenge.Store, sender *capture.MessageSenderCaptor) {
	cs = challenge.NewStore(nil, testLogger())
	cs.Apply(challenge.StartChallenge(100, "push-ups", challengeEnd, 20, "C12345"))

	sender = capture.NewMessageSender()

	s = New(cs, time.UTC, testLogger(), options...)
	s.sender = sender
	s.now = func() time.Time { return goodTime }

	return s, cs, sender
}

func TestQuietTime(t *testing.T) {
	testCases := []struct {
		name     string
		t        time.Time
		expected bool
	}{
		{"weekdayMorning", time.Date(2019, time.July, 10, 9, 0, 0, 0, time.UTC), false},
		{"weekdayEvening", time.Date(2019, time.July, 10, 20, 59, 0, 0, time.UTC), false},
		{"weekdayEarly", time.Date(2019, time.July, 10, 7, 59, 0, 0, time.UTC), true},
		{"weekdayLate", time.Date(2019, time.July, 10, 21, 0, 0, 0, time.UTC), true},
		{"saturday", time.Date(2019, time.July, 13, 12, 0, 0, 0, time.UTC), true},
		{"sunday", time.Date(2019, time.July, 14, 12, 0, 0, 0, time.UTC), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, quietTime(tc.t))
		})
	}
}

func TestArmWithNeverStaysIdle(t *testing.T) {
	s, cs, sender := newTestScheduler()

	s.Arm(sender, challenge.Never)

	assert.False(t, s.Armed())
	assert.Equal(t, challenge.Never, cs.State().ReminderFrequency)
}

func TestArmStartsTimerAndRecordsFrequency(t *testing.T) {
	s, cs, sender := newTestScheduler()

	s.Arm(sender, challenge.Hourly)
	defer s.Stop()

	assert.True(t, s.Armed())
	assert.Equal(t, challenge.Hourly, cs.State().ReminderFrequency)
}

func TestRearmReplacesTimer(t *testing.T) {
	s, cs, sender := newTestScheduler()

	s.Arm(sender, challenge.Hourly)
	s.Arm(sender, challenge.Daily)
	defer s.Stop()

	assert.True(t, s.Armed())
	assert.Equal(t, challenge.Daily, cs.State().ReminderFrequency)
}

func TestArmWithNeverCancelsLiveTimer(t *testing.T) {
	s, _, sender := newTestScheduler()

	s.Arm(sender, challenge.Hourly)
	require.True(t, s.Armed())

	s.Arm(sender, challenge.Never)

	assert.False(t, s.Armed())
}

func TestStopIsIdempotent(t *testing.T) {
	s, _, sender := newTestScheduler()

	s.Stop()
	s.Arm(sender, challenge.Hourly)
	s.Stop()
	s.Stop()

	assert.False(t, s.Armed())
}

func TestTickSendsAGroupReminder(t *testing.T) {
	s, _, sender := newTestScheduler()

	s.tick()

	messages := sender.Messages("C12345")
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "20 push-ups")
}

func TestTickSuppressedDuringQuietTime(t *testing.T) {
	s, _, sender := newTestScheduler()
	s.now = func() time.Time { return time.Date(2019, time.July, 13, 12, 0, 0, 0, time.UTC) }

	s.tick()

	assert.Empty(t, sender.Messages("C12345"))
}

func TestTickGatesAgainstConfiguredLocation(t *testing.T) {
	s, _, sender := newTestScheduler()
	// 23:00 UTC is 09:00 the next weekday at UTC+10
	s.loc = time.FixedZone("UTC+10", 10*60*60)
	s.now = func() time.Time { return time.Date(2019, time.July, 10, 23, 0, 0, 0, time.UTC) }

	s.tick()

	assert.Len(t, sender.Messages("C12345"), 1)
}

func TestTickCancelsTimerOnceChallengeIsOver(t *testing.T) {
	s, _, sender := newTestScheduler()

	s.Arm(sender, challenge.Hourly)
	require.True(t, s.Armed())

	s.now = func() time.Time { return challengeEnd.Add(time.Minute) }
	s.tick()

	assert.False(t, s.Armed())
	assert.Empty(t, sender.Messages("C12345"))
}

func TestTickCancelsTimerWhenRemindersTurnedOff(t *testing.T) {
	s, cs, sender := newTestScheduler()

	s.Arm(sender, challenge.Hourly)
	cs.Apply(challenge.SetReminderFrequency(challenge.Never))

	s.tick()

	assert.False(t, s.Armed())
	assert.Empty(t, sender.Messages("C12345"))
}

func TestCalloutNeedsEnoughParticipants(t *testing.T) {
	s, cs, sender := newTestScheduler(OptionCalloutThreshold(8))

	for i := 0; i < 7; i++ {
		cs.LogReps(fmt.Sprintf("user%d", i), 20)
	}

	st := cs.State()
	for i := 0; i < 100; i++ {
		s.callOutSlacker(sender, st)
	}

	assert.Empty(t, sender.Messages("C12345"), "no callout should happen below the participation threshold")
}

func TestCalloutTargetsSlackers(t *testing.T) {
	s, cs, sender := newTestScheduler(OptionCalloutThreshold(8))

	// user0 through user2 are the slackers of this crowd
	for i := 0; i < 8; i++ {
		cs.LogReps(fmt.Sprintf("user%d", i), 20*(i+1))
	}

	st := cs.State()
	for i := 0; i < 100; i++ {
		s.callOutSlacker(sender, st)
	}

	messages := sender.Messages("C12345")
	assert.NotEmpty(t, messages, "a hundred rolls of a one in three chance should call someone out")

	for _, m := range messages {
		assert.Contains(t, []string{
			"<@user0>, that includes you!",
			"<@user1>, that includes you!",
			"<@user2>, that includes you!",
		}, m)
	}
}
