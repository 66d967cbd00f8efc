package robocoop

import (
	"strings"
	"testing"

	"robocoop/config"
	"robocoop/schedule"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserInfoFinder struct {
	err error
}

func (f *stubUserInfoFinder) GetUserInfo(userID string) (user *slack.User, err error) {
	if f.err != nil {
		return nil, f.err
	}

	return &slack.User{ID: userID, RealName: "Daniel Quinn"}, nil
}

func newPluginWithActionsOfAllTypes() (p *Plugin) {
	p = new(Plugin)
	p.Name = "fitness"
	p.Commands = []ActionDefinition{{
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "status")
		},
		Usage:       "status",
		Description: "Show the current challenge status",
		Answer: func(m *IncomingMessage) *Answer {
			return nil
		}}, {
		Hidden: true,
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "secret")
		},
		Usage:       "secret",
		Description: "A hidden command",
		Answer: func(m *IncomingMessage) *Answer {
			return nil
		}}}

	p.HearActions = []ActionDefinition{{
		Match: func(m *IncomingMessage) bool {
			return strings.Contains(m.NormalizedText, "gains")
		},
		Usage:       "say `gains` and get a cheer",
		Description: "Cheer when hearing people talk about gains",
		Answer: func(m *IncomingMessage) *Answer {
			return nil
		}}}

	p.ScheduledActions = []ScheduledActionDefinition{{
		Schedule:    schedule.Definition{Interval: 30, Unit: schedule.Seconds},
		Description: "Sends a heartbeat every 30 seconds",
		Action:      func(sender MessageSender) {}}}

	return p
}

func TestHelp(t *testing.T) {
	b, err := New("robocoop", config.NewViperWithDefaults())
	require.NoError(t, err)

	b.RegisterPlugin(newPluginWithActionsOfAllTypes())

	help := b.newHelpPlugin("1.0.0")
	help.UserInfoFinder = &stubUserInfoFinder{}

	cmd := help.Commands[0]
	assert.False(t, cmd.Match(&IncomingMessage{NormalizedText: " help"}))
	require.True(t, cmd.Match(&IncomingMessage{NormalizedText: "help"}))
	assert.True(t, cmd.Match(&IncomingMessage{NormalizedText: "help and something else"}))

	a := cmd.Answer(&IncomingMessage{NormalizedText: "help"})
	require.NotNil(t, a)

	assert.Equal(t, "Hi, `Daniel Quinn`! I'm `robocoop` (engine `v1.0.0`). I run your team's fitness challenges.\n\n"+
		"I currently support the following commands:\n\t• `status` - Show the current challenge status\n\nAnd listen for the following:\n"+
		"\t• `say `gains` and get a cheer` - Cheer when hearing people talk about gains\n\nAnd do those things periodically:\n"+
		"\t• [`fitness`] `Every 30 seconds` (`Local`) - Sends a heartbeat every 30 seconds\n", a.Text)
}

func TestHelpWithoutUserInfo(t *testing.T) {
	b, err := New("robocoop", config.NewViperWithDefaults())
	require.NoError(t, err)

	help := b.newHelpPlugin("1.0.0")
	help.UserInfoFinder = &stubUserInfoFinder{err: errors.New("no user info")}
	help.Logger = b.log

	a := help.Commands[0].Answer(&IncomingMessage{NormalizedText: "help"})
	require.NotNil(t, a)

	assert.True(t, strings.HasPrefix(a.Text, "I'm `robocoop`"), "the answer should skip the greeting when user info isn't available")
}
