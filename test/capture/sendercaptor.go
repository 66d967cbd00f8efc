package capture

import (
	"sync"
)

// MessageSenderCaptor holds messages sent to it keyed by channel ID. It is
// safe for use from scheduled actions running on other goroutines
type MessageSenderCaptor struct {
	mu sync.Mutex

	// SentMessages keeps the sent messages in order, by channel ID
	SentMessages map[string][]string

	// Err, if set, is returned on every send after the message is captured
	Err error
}

// NewMessageSender returns a new initialized MessageSenderCaptor instance
func NewMessageSender() (c *MessageSenderCaptor) {
	c = new(MessageSenderCaptor)
	c.SentMessages = make(map[string][]string)

	return c
}

// SendNewMessage captures the details of a sent message (the message itself
// and the channel it's sent to)
func (c *MessageSenderCaptor) SendNewMessage(message string, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SentMessages[channelID] = append(c.SentMessages[channelID], message)

	return c.Err
}

// Messages returns a copy of the messages captured for a channel
func (c *MessageSenderCaptor) Messages(channelID string) (messages []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages = make([]string, len(c.SentMessages[channelID]))
	copy(messages, c.SentMessages[channelID])

	return messages
}
