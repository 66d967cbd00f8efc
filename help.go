package robocoop

import (
	"fmt"
	"io"
	"strings"

	"robocoop/config"
)

const (
	helpPluginName = "help"
)

type helpPlugin struct {
	Plugin

	name                   string
	version                string
	timeLocation           string
	commands               []ActionDefinition
	hearActions            []ActionDefinition
	pluginScheduledActions []pluginScheduledAction
}

// pluginScheduledAction represents a plugin's scheduled action along with the
// plugin name it belongs to
type pluginScheduledAction struct {
	plugin string
	ScheduledActionDefinition
}

func (b *Bot) newHelpPlugin(version string) *helpPlugin {
	commands, hearActions, scheduledActions := findAllActions(b.plugins)

	help := new(helpPlugin)
	help.name = b.name
	help.version = version
	help.timeLocation = b.config.GetString(config.TimeLocationKey)
	help.commands = commands
	help.hearActions = hearActions
	help.pluginScheduledActions = scheduledActions

	help.Plugin = Plugin{Name: helpPluginName, Commands: []ActionDefinition{{
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "help")
		},
		Usage:       helpPluginName,
		Description: "Reply with usage instructions",
		Answer:      help.showHelp,
	}}, HearActions: nil}

	return help
}

// showHelp generates a message providing a list of all of the bot's commands and
// hear actions. ActionDefinitions with the Hidden flag set to true are omitted
func (h *helpPlugin) showHelp(m *IncomingMessage) *Answer {
	var b strings.Builder

	user, err := h.UserInfoFinder.GetUserInfo(m.User)
	if err != nil {
		h.Logger.Debugf("Error getting user info for [%s] so skipping mentioning the name: %v\n", m.User, err)
	} else {
		fmt.Fprintf(&b, "Hi, `%s`! ", user.RealName)
	}

	fmt.Fprintf(&b, "I'm `%s` (engine `v%s`). I run your team's fitness challenges.\n", h.name, h.version)

	if len(h.commands) > 0 {
		fmt.Fprintf(&b, "\nI currently support the following commands:\n")
		appendActions(&b, h.commands)
	}

	if len(h.hearActions) > 0 {
		fmt.Fprintf(&b, "\nAnd listen for the following:\n")
		appendActions(&b, h.hearActions)
	}

	if len(h.pluginScheduledActions) > 0 {
		fmt.Fprintf(&b, "\nAnd do those things periodically:\n")
		appendScheduledActions(&b, h.timeLocation, h.pluginScheduledActions)
	}

	return &Answer{Text: b.String(), Options: []AnswerOption{AnswerInThread()}}
}

func appendActions(w io.Writer, actions []ActionDefinition) {
	for _, action := range actions {
		if action.Usage != "" {
			fmt.Fprintf(w, "\t• `%s` - %s\n", action.Usage, action.Description)
		}
	}
}

func appendScheduledActions(w io.Writer, timeLocationName string, scheduledActions []pluginScheduledAction) {
	for _, sa := range scheduledActions {
		fmt.Fprintf(w, "\t• [`%s`] `%s` (`%s`) - %s\n", sa.plugin, sa.ScheduledActionDefinition.Schedule, timeLocationName, sa.ScheduledActionDefinition.Description)
	}
}

func findAllActions(plugins []*Plugin) (commands []ActionDefinition, hearActions []ActionDefinition, pluginScheduledActions []pluginScheduledAction) {
	commands = make([]ActionDefinition, 0)
	hearActions = make([]ActionDefinition, 0)
	pluginScheduledActions = make([]pluginScheduledAction, 0)

	for _, p := range plugins {
		commands = append(commands, filterNonHiddenActions(p.Commands)...)
		hearActions = append(hearActions, filterNonHiddenActions(p.HearActions)...)

		for _, sa := range p.ScheduledActions {
			if !sa.Hidden {
				pluginScheduledActions = append(pluginScheduledActions, pluginScheduledAction{plugin: p.Name, ScheduledActionDefinition: sa})
			}
		}
	}

	return commands, hearActions, pluginScheduledActions
}

func filterNonHiddenActions(actions []ActionDefinition) (visibleActions []ActionDefinition) {
	visibleActions = make([]ActionDefinition, 0)
	for _, a := range actions {
		if !a.Hidden {
			visibleActions = append(visibleActions, a)
		}
	}

	return visibleActions
}
