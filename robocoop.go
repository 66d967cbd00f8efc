package robocoop

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"robocoop/config"
	"robocoop/schedule"

	"github.com/marcsantiago/gocron"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/api/global"
)

// Bot represents what defines the bot: a name, its configuration and its plugins
type Bot struct {
	name          string
	config        *viper.Viper
	defaultAction Answerer
	plugins       []*Plugin

	// Internal state as an optimization when looping through all commands/hearActions
	commandsWithID    []ActionDefinitionWithID
	hearActionsWithID []ActionDefinitionWithID

	greeting    string
	onConnected ConnectedHandler

	selfID   string
	selfName string

	log *sLogger
	*instrumenter
}

// ConnectedHandler is invoked when the slack connection is established (and
// again on reconnections). It receives the workspace's team id along with a
// sender usable to send channel messages outside of message handling
type ConnectedHandler func(teamID string, sender MessageSender)

// Option defines an option for the Bot
type Option func(*Bot)

// OptionLog sets the logger the engine writes to
func OptionLog(logger *log.Logger) Option {
	return func(b *Bot) {
		b.log.logger = logger
	}
}

// OptionGreeting sets a message the bot sends when it joins a channel
func OptionGreeting(text string) Option {
	return func(b *Bot) {
		b.greeting = text
	}
}

// OptionOnConnected sets a handler invoked once the slack connection is up
func OptionOnConnected(h ConnectedHandler) Option {
	return func(b *Bot) {
		b.onConnected = h
	}
}

// New creates a new bot with the given name and viper configuration
func New(name string, v *viper.Viper, options ...Option) (bot *Bot, err error) {
	bot = new(Bot)
	bot.name = name
	bot.config = v
	bot.plugins = []*Plugin{}
	bot.log = NewSLogger(log.New(os.Stdout, name+": ", log.Lshortfile|log.LstdFlags), v.GetBool(config.DebugKey))
	bot.defaultAction = func(m *IncomingMessage) *Answer {
		return &Answer{Text: fmt.Sprintf("I don't understand. Ask me for `%s` to get a list of things I do", helpPluginName)}
	}
	bot.instrumenter = newInstrumenter(name, global.MeterProvider().Meter(name))

	for _, option := range options {
		option(bot)
	}

	return bot, nil
}

// RegisterPlugin registers a plugin with the engine. This should be invoked
// prior to calling Run
func (b *Bot) RegisterPlugin(p *Plugin) {
	b.plugins = append(b.plugins, p)
}

// Run starts the bot and loops until the process is interrupted or the
// connection is terminated
func (b *Bot) Run() (err error) {
	api := slack.New(
		b.config.GetString(config.TokenKey),
		slack.OptionDebug(b.config.GetBool(config.DebugKey)),
		slack.OptionLog(log.New(os.Stdout, "slack: ", log.Lshortfile|log.LstdFlags)),
	)

	rtm := api.NewRTM()
	go rtm.ManageConnection()

	sender := &rtmMessageSender{rtm: rtm}

	userInfoFinder, err := NewCachingUserInfoFinder(b.config, api, b.log)
	if err != nil {
		return err
	}

	// Add the help command now that all plugins have been registered
	help := b.newHelpPlugin(Version)
	b.RegisterPlugin(&help.Plugin)

	for _, p := range b.plugins {
		p.Logger = b.log
		p.UserInfoFinder = userInfoFinder
		p.MsgSender = sender
	}

	b.attachIdentifiersToPluginActions()

	timeLoc, err := config.GetTimeLocation(b.config)
	if err != nil {
		return err
	}

	go b.startActionScheduler(timeLoc, sender)
	go b.watchForTerminationSignalToAbort(rtm)

	for msg := range rtm.IncomingEvents {
		switch e := msg.Data.(type) {
		case *slack.ConnectedEvent:
			b.log.Printf("Connected to [%s] (connection count: %d)\n", e.Info.Team.Name, e.ConnectionCount)
			b.cacheSelfIdentity(rtm)

			if b.onConnected != nil {
				b.onConnected(e.Info.Team.ID, sender)
			}

		case *slack.MessageEvent:
			b.coreMetrics.msgsSeen.Add(context.Background(), 1)
			d := measure(func() {
				b.processMessageEvent(api, e)
			})
			b.instrumentProcessing(d)

		case *slack.MemberJoinedChannelEvent:
			if b.greeting != "" && e.User == b.selfID {
				sender.SendNewMessage(b.greeting, e.Channel)
			}

		case *slack.LatencyReport:
			b.log.Debugf("Current latency: %v\n", e.Value)

		case *slack.RTMError:
			b.log.Printf("Error: %s\n", e.Error())

		case *slack.InvalidAuthEvent:
			return fmt.Errorf("invalid credentials")

		default:
			// Ignoring other events
		}
	}

	return nil
}

// watchForTerminationSignalToAbort waits for a SIGTERM or SIGINT and closes the rtm's
// IncomingEvents channel to finish the main Run() loop and terminate cleanly. Note that
// this is meant to run in a goroutine given that this is blocking
func (b *Bot) watchForTerminationSignalToAbort(rtm *slack.RTM) {
	tSignals := make(chan os.Signal, 1)
	signal.Notify(tSignals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-tSignals

	b.log.Debugf("Received termination signal [%s], closing RTM's incoming events channel to terminate processing\n", sig)
	close(rtm.IncomingEvents)
}

// attachIdentifiersToPluginActions attaches an action identifier to every plugin action.
// The identifiers are generated the following way:
//   - pluginName.c[pluginIndexOfTheCommand] for commands
//   - pluginName.h[pluginIndexOfTheHearAction] for hear actions
func (b *Bot) attachIdentifiersToPluginActions() {
	b.commandsWithID = make([]ActionDefinitionWithID, 0)
	b.hearActionsWithID = make([]ActionDefinitionWithID, 0)

	for _, p := range b.plugins {
		for i, c := range p.Commands {
			b.commandsWithID = append(b.commandsWithID, ActionDefinitionWithID{ActionDefinition: c, id: fmt.Sprintf("%s.c[%d]", p.Name, i)})
		}

		for i, h := range p.HearActions {
			b.hearActionsWithID = append(b.hearActionsWithID, ActionDefinitionWithID{ActionDefinition: h, id: fmt.Sprintf("%s.h[%d]", p.Name, i)})
		}
	}
}

// cacheSelfIdentity gets "our" identity and keeps the selfID and selfName to
// avoid having to look it up every time
func (b *Bot) cacheSelfIdentity(rtm *slack.RTM) {
	b.selfID = rtm.GetInfo().User.ID
	b.selfName = rtm.GetInfo().User.Name

	b.log.Debugf("Caching self id [%s] and self name [%s]\n", b.selfID, b.selfName)
}

// startActionScheduler creates all ScheduledActionDefinition from all plugins and
// registers them with the scheduler. Very importantly, it also starts the scheduler
func (b *Bot) startActionScheduler(timeLoc *time.Location, sender MessageSender) {
	gocron.ChangeLoc(timeLoc)
	sc := gocron.NewScheduler()

	for _, p := range b.plugins {
		for _, sa := range p.ScheduledActions {
			j, err := schedule.NewJob(sc, sa.Schedule)
			if err != nil {
				b.log.Printf("Error scheduling action [%s] for plugin [%s]: %v\n", sa, p.Name, err)
				continue
			}

			b.log.Debugf("Adding job [%v] to scheduler\n", j)
			j.Do(sa.Action, sender)
		}
	}

	_, t := sc.NextRun()
	b.log.Debugf("Starting scheduler with first job scheduled at [%s]\n", t)

	<-sc.Start()
}

// processMessageEvent handles high-level processing of slack message events. Only new
// messages are handled: message handling is effectively serialized by the inbound
// delivery and no triggered response is replayed on edits or deletions
func (b *Bot) processMessageEvent(api *slack.Client, msgEvent *slack.MessageEvent) {
	// reply_to is a field set to 1 sent by slack when a sent message has been
	// acknowledged and should be considered officially sent to others. We ignore
	// those as it's mostly for clients/UI to show status
	isReply := msgEvent.ReplyTo > 0

	b.log.Debugf("Processing event: %v\n", msgEvent)

	if isReply || msgEvent.Type != "message" || msgEvent.SubType == "message_deleted" || msgEvent.SubType == "message_changed" {
		return
	}

	for _, o := range b.routeMessage(&msgEvent.Msg) {
		b.sendAnswer(api, &msgEvent.Msg, o)
	}
}

// pendingAnswer holds a triggered answer along with the identifier of the action
// that produced it
type pendingAnswer struct {
	answer   *Answer
	actionID string
}

// routeMessage handles routing the message to commands or hear actions according
// to the context. The rules are the following:
//  1. If the message is on a channel with a direct mention to us (@name), we route to commands
//  2. If the message is a direct message to us, we route to commands
//  3. If the message is on a channel without mention (regular conversation), we route to hear actions
func (b *Bot) routeMessage(m *slack.Msg) (answers []*pendingAnswer) {
	answers = make([]*pendingAnswer, 0)

	// Ignore messages sent by "us"
	if m.User == b.selfID || m.BotID == b.selfID {
		b.log.Debugf("Ignoring message from user [%s] because that's \"us\" [%s]\n", m.User, b.selfID)

		return answers
	}

	r := regexp.MustCompile("^(<@" + b.selfID + ">|@?" + b.selfName + "):? (.+)")
	matches := r.FindStringSubmatch(m.Text)

	if len(matches) == 3 {
		return handleCommand(b.defaultAction, b.commandsWithID, &IncomingMessage{NormalizedText: matches[2], Msg: *m})
	} else if len(m.Channel) > 0 && m.Channel[0] == 'D' {
		return handleCommand(b.defaultAction, b.commandsWithID, &IncomingMessage{NormalizedText: m.Text, Msg: *m})
	}

	return handleMessage(b.hearActionsWithID, &IncomingMessage{NormalizedText: m.Text, Msg: *m})
}

// handleCommand handles a command by trying a match with all known commands. If no
// match is found, the default action is invoked
func handleCommand(defaultAnswer Answerer, actions []ActionDefinitionWithID, m *IncomingMessage) (answers []*pendingAnswer) {
	answers = handleMessage(actions, m)
	if len(answers) == 0 {
		if a := defaultAnswer(m); a != nil {
			answers = append(answers, &pendingAnswer{answer: a, actionID: "default"})
		}
	}

	return answers
}

// handleMessage loops over all action definitions and invokes the action's answerer
// if its matcher matches. Note that more than one action can be triggered by a
// single message
func handleMessage(actions []ActionDefinitionWithID, m *IncomingMessage) (answers []*pendingAnswer) {
	answers = make([]*pendingAnswer, 0)

	for _, action := range actions {
		if action.Match(m) {
			if a := action.Answer(m); a != nil {
				answers = append(answers, &pendingAnswer{answer: a, actionID: action.id})
			}
		}
	}

	return answers
}

// sendAnswer sends out a triggered answer, applying its answer options (channel
// override and threading)
func (b *Bot) sendAnswer(api *slack.Client, m *slack.Msg, o *pendingAnswer) {
	sendOpts := ApplyAnswerOpts(o.answer.Options...)

	channelID := m.Channel
	if c, ok := sendOpts[ChannelOverrideOpt]; ok {
		channelID = c
	}

	msgOptions := []slack.MsgOption{slack.MsgOptionText(o.answer.Text, false), slack.MsgOptionAsUser(true)}

	if len(o.answer.Attachments) > 0 {
		msgOptions = append(msgOptions, slack.MsgOptionAttachments(o.answer.Attachments...))
	}

	if sendOpts[ThreadedReplyOpt] == "true" || b.config.GetBool(config.ThreadedRepliesKey) {
		msgOptions = append(msgOptions, slack.MsgOptionTS(m.Timestamp))
	}

	_, _, _, err := api.SendMessage(channelID, msgOptions...)
	if err != nil {
		b.log.Printf("Error sending answer triggered by [%s]: %v\n", o.actionID, err)
	}
}
