package robocoop

import (
	"github.com/slack-go/slack"
)

const (
	// ThreadedReplyOpt is the name of the option indicating a threaded-reply answer
	ThreadedReplyOpt = "threadedReply"
	// ChannelOverrideOpt is the name of the option overriding the channel an
	// answer is sent to (instead of the channel the triggering message came from)
	ChannelOverrideOpt = "channelOverride"
)

// Answer holds data of an Action's Answer: its text, delivery options and
// optional rich attachments
type Answer struct {
	Text string

	// Options to apply when sending the message
	Options []AnswerOption

	// Attachments to include with the message
	Attachments []slack.Attachment
}

// AnswerOption defines a function applied to Answers
type AnswerOption func(sendOpts map[string]string)

// AnswerInThread sets threaded replying
func AnswerInThread() AnswerOption {
	return func(sendOpts map[string]string) {
		sendOpts[ThreadedReplyOpt] = "true"
	}
}

// AnswerInChannel sends the answer to the given channel instead of the one the
// triggering message was received on
func AnswerInChannel(channelID string) AnswerOption {
	return func(sendOpts map[string]string) {
		sendOpts[ChannelOverrideOpt] = channelID
	}
}

// ApplyAnswerOpts applies answering options to build the send configuration
func ApplyAnswerOpts(opts ...AnswerOption) (sendOptions map[string]string) {
	sendOptions = make(map[string]string)
	for _, opt := range opts {
		opt(sendOptions)
	}

	return sendOptions
}
