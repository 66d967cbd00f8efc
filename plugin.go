package robocoop

import (
	"fmt"

	"robocoop/schedule"

	"github.com/slack-go/slack"
)

// Plugin represents a plugin (its name and action definitions) along with the
// services the engine injects in it before it runs
type Plugin struct {
	Name             string
	Commands         []ActionDefinition
	HearActions      []ActionDefinition
	ScheduledActions []ScheduledActionDefinition

	// Set by the engine before the bot starts processing messages
	Logger         SLogger
	UserInfoFinder UserInfoFinder
	MsgSender      MessageSender
}

// ActionDefinition represents how an action is triggered, published, used and
// described along with the function defining its behavior
type ActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Matcher that will determine whether or not the action should be triggered
	Match Matcher

	// Usage example
	Usage string

	// Help description for the action
	Description string

	// Function to execute if the Matcher matches
	Answer Answerer
}

// Matcher is the function that determines whether or not an action should be
// triggered. Note that a match doesn't guarantee that the action should
// actually respond with anything once invoked
type Matcher func(m *IncomingMessage) bool

// Answerer is what gets executed when an ActionDefinition is triggered
type Answerer func(m *IncomingMessage) *Answer

// IncomingMessage holds data for an incoming slack message. In addition to
// the raw message, it holds the normalized text which is the original text
// stripped of the "<@Mention>" prefix for commands addressed to the bot.
// Matchers and Answerers should use the normalized text
type IncomingMessage struct {
	NormalizedText string
	slack.Msg
}

// ScheduledActionDefinition represents when a scheduled action is triggered as
// well as what it does and how
type ScheduledActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Schedule on which the action triggers
	Schedule schedule.Definition

	// Help description for the scheduled action
	Description string

	// ScheduledAction is the function that is invoked when the schedule activates
	Action ScheduledAction
}

// ScheduledAction is what gets executed when a ScheduledActionDefinition is
// triggered by its schedule. The sender can be used to send messages to channels
type ScheduledAction func(sender MessageSender)

// ActionDefinitionWithID holds an action definition along with its identifier string
type ActionDefinitionWithID struct {
	ActionDefinition
	id string
}

// String returns a friendly description of an ActionDefinition
func (a ActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Usage, a.Description)
}

// String returns a friendly description of a ScheduledActionDefinition
func (a ScheduledActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Schedule, a.Description)
}
