// Package reminder drives the periodic challenge nudges sent to the team's
// channel while a challenge is running
package reminder

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"robocoop"
	"robocoop/challenge"
	"robocoop/schedule"

	"github.com/marcsantiago/gocron"
)

const (
	defaultCalloutThreshold = 8
	slackerboardSize        = 3
)

var groupReminders = []string{
	"Everybody, do %d %s! Your move, creeps.",
	"Dead or alive, everybody give me %d %s!",
	"Everybody remember, %d %s, or there will be... trouble.",
	"I'm reminding you all to complete %d %s. Thank you for your co-operation.",
}

// Scheduler owns the reminder timer for a team. It is either idle (no timer)
// or armed (exactly one repeating timer): arming always cancels the previous
// timer before starting a new one so two timers can never race
type Scheduler struct {
	mu     sync.Mutex
	stop   chan bool
	sender robocoop.MessageSender

	store  *challenge.Store
	loc    *time.Location
	logger robocoop.SLogger

	calloutThreshold int
	random           *rand.Rand
	now              func() time.Time
}

// Option defines an option for the Scheduler
type Option func(*Scheduler)

// OptionCalloutThreshold sets how many participants a challenge needs before
// reminders start calling out slackers by name
func OptionCalloutThreshold(n int) Option {
	return func(s *Scheduler) {
		s.calloutThreshold = n
	}
}

// New creates an idle Scheduler reading challenge state from store and gating
// ticks against the fixed offset location loc
func New(store *challenge.Store, loc *time.Location, logger robocoop.SLogger, options ...Option) (s *Scheduler) {
	s = new(Scheduler)
	s.store = store
	s.loc = loc
	s.logger = logger
	s.calloutThreshold = defaultCalloutThreshold
	s.random = rand.New(rand.NewSource(time.Now().UnixNano()))
	s.now = time.Now

	for _, option := range options {
		option(s)
	}

	return s
}

// Arm records the reminder frequency on the challenge state and (re)starts
// the timer. Any live timer is stopped first and a frequency of never leaves
// the scheduler idle
func (s *Scheduler) Arm(sender robocoop.MessageSender, f challenge.Frequency) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Apply(challenge.SetReminderFrequency(f))
	s.disarmLocked()

	if f == challenge.Never {
		return
	}

	s.sender = sender

	sc := gocron.NewScheduler()
	j, err := schedule.NewJob(sc, challenge.ScheduleForFrequency(f))
	if err != nil {
		s.logger.Printf("Error scheduling reminder with frequency [%s]: %v\n", f, err)
		return
	}

	j.Do(s.tick)
	s.stop = sc.Start()

	s.logger.Debugf("Reminder armed: %s\n", challenge.ScheduleForFrequency(f))
}

// Stop cancels the live timer, if any. It is safe to call when idle
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked()
}

// Armed returns true when a reminder timer is live
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stop != nil
}

func (s *Scheduler) disarmLocked() {
	if s.stop != nil {
		s.stop <- true
		s.stop = nil
	}
}

// tick runs on every timer activation. The timer cancels itself once the
// challenge is over (or reminders were turned off) and ticks falling on a
// weekend or outside of the 08:00-20:00 window are suppressed without
// disturbing the timer
func (s *Scheduler) tick() {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()

	st := s.store.State()
	now := s.now()

	if st.ReminderFrequency == challenge.Never || challenge.InPast(st.EndDay, now) {
		s.logger.Debugf("Challenge over or reminders off, cancelling reminder timer\n")
		s.Stop()
		return
	}

	local := now.In(s.loc)
	if quietTime(local) {
		s.logger.Debugf("Suppressing reminder (day: %s, hour: %d)\n", local.Weekday(), local.Hour())
		return
	}

	s.remindGroup(sender, st)
	s.callOutSlacker(sender, st)
}

// quietTime reports whether t falls on a weekend or outside the allowed hours
func quietTime(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return true
	}

	return t.Hour() < 8 || t.Hour() > 20
}

// remindGroup sends one randomly picked reminder to the challenge channel
func (s *Scheduler) remindGroup(sender robocoop.MessageSender, st challenge.State) {
	template := groupReminders[s.random.Intn(len(groupReminders))]

	err := sender.SendNewMessage(fmt.Sprintf(template, st.SetSize, st.Exercise), st.Channel)
	if err != nil {
		s.logger.Printf("Error sending reminder to channel [%s]: %v\n", st.Channel, err)
	}
}

// callOutSlacker sometimes singles out one of the lowest ranked participants,
// but only once enough people take part that the callout lands on a crowd
func (s *Scheduler) callOutSlacker(sender robocoop.MessageSender, st challenge.State) {
	if len(st.Users) < s.calloutThreshold {
		return
	}

	if s.random.Intn(3) <= 1 {
		return
	}

	slackers := s.store.Slackerboard(slackerboardSize)
	if len(slackers) == 0 {
		return
	}

	pick := slackers[s.random.Intn(len(slackers))]

	err := sender.SendNewMessage(fmt.Sprintf("<@%s>, that includes you!", pick.ID), st.Channel)
	if err != nil {
		s.logger.Printf("Error sending callout to channel [%s]: %v\n", st.Channel, err)
	}
}
