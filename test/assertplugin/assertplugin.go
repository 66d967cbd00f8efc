// Package assertplugin provides testing functions to validate a plugin's overall functionality.
// This package is designed to play well but not require the assertanswer package for validation
// of answers
package assertplugin

import (
	"fmt"
	"log"
	"strings"
	"testing"

	"robocoop"
	"robocoop/test/capture"

	"github.com/slack-go/slack"
)

// Asserter represents a plugin driver/asserter and holds the bot identifier that tests are using when
// sending test messages for processing
type Asserter struct {
	botUserID string
	logger    *log.Logger
}

// New creates a new asserter with the given botUserID
// (only include the id without the '@' prefix).
// The botUserID is used in order to detect commands formed with
// <@botUserID>
func New(botUserID string, options ...Option) (a *Asserter) {
	a = new(Asserter)
	a.botUserID = botUserID

	for _, option := range options {
		option(a)
	}

	return a
}

// Option defines an option for the Asserter
type Option func(*Asserter)

// OptionLog sets a logger for the asserter such that this logger is attached to the plugin when driven by
// the asserter
func OptionLog(logger *log.Logger) func(*Asserter) {
	return func(a *Asserter) {
		a.logger = logger
	}
}

// ResultValidator is a function to do further validation of the answers and sent messages resulting from
// a plugin processing of all of its commands and hear actions. The return value is meant to be true if validation
// is successful and false otherwise (following the testify convention)
type ResultValidator func(t *testing.T, answers []*robocoop.Answer, sent map[string][]string) bool

// AnswersAndSends drives a plugin and collects Answers as well as messages sent through the plugin's
// message sender. Once all of those have been collected, it passes handling to a validator to assert
// the expected results. It follows the style of github.com/stretchr/testify/assert as far as returning
// true/false to indicate success for further nested testing.
//
// Note that all commands and hearActions are evaluated but this is a simplified version of how the engine
// actually drives plugins and aims to provide the minimal processing required to allow a plugin to test
// functionality given an incoming message. Users should take special care to include <@botUserID> with the
// same botUserID with which the plugin driver has been instantiated in the message text inputs to test
// commands (or include a channel name that starts with D for direct channel testing)
func (a *Asserter) AnswersAndSends(t *testing.T, p *robocoop.Plugin, m *slack.Msg, validate ResultValidator) (valid bool) {
	sc := capture.NewMessageSender()
	p.MsgSender = sc
	p.Logger = robocoop.NewSLogger(getLogger(a), true)

	answers := a.driveActions(p, m)

	return validate(t, answers, sc.SentMessages)
}

func getLogger(a *Asserter) (logger *log.Logger) {
	if a.logger != nil {
		return a.logger
	}

	var b strings.Builder
	return log.New(&b, "", 0)
}

func (a *Asserter) driveActions(p *robocoop.Plugin, m *slack.Msg) (answers []*robocoop.Answer) {
	botMentionPrefix := fmt.Sprintf("<@%s> ", a.botUserID)

	if strings.HasPrefix(m.Text, botMentionPrefix) {
		normalizedText := strings.TrimPrefix(m.Text, botMentionPrefix)
		inMsg := robocoop.IncomingMessage{NormalizedText: normalizedText, Msg: *m}

		return runActions(p.Commands, &inMsg)
	}

	inMsg := robocoop.IncomingMessage{NormalizedText: m.Text, Msg: *m}

	if strings.HasPrefix(m.Channel, "D") {
		return runActions(p.Commands, &inMsg)
	}

	return runActions(p.HearActions, &inMsg)
}

func runActions(actions []robocoop.ActionDefinition, m *robocoop.IncomingMessage) (answers []*robocoop.Answer) {
	answers = make([]*robocoop.Answer, 0)

	for _, action := range actions {
		if action.Match(m) {
			a := action.Answer(m)

			if a != nil {
				answers = append(answers, a)
			}
		}
	}

	return answers
}
