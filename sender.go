package robocoop

import (
	"github.com/slack-go/slack"
)

// MessageSender is implemented by any value that has the SendNewMessage method.
// The main purpose is a slight decoupling of the slack.RTM in order for plugins
// and the reminder scheduler to be able to send channel messages without
// holding on to the real time connection (and for tests to capture them)
type MessageSender interface {
	// SendNewMessage sends a new message to the specified channelID
	SendNewMessage(message string, channelID string) (err error)
}

// rtmMessageSender is the default implementation of MessageSender backed by
// the slack real time messaging connection
type rtmMessageSender struct {
	rtm *slack.RTM
}

// SendNewMessage sends a new message using the slack RTM api
func (s *rtmMessageSender) SendNewMessage(message string, channelID string) (err error) {
	m := s.rtm.NewOutgoingMessage(message, channelID)
	s.rtm.SendMessage(m)

	return nil
}
