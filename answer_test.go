package robocoop_test

import (
	"testing"

	"robocoop"

	"github.com/stretchr/testify/assert"
)

func TestApplyAnswerOptions(t *testing.T) {
	testCases := []struct {
		name           string
		options        []robocoop.AnswerOption
		expectedConfig map[string]string
	}{
		{"none", []robocoop.AnswerOption{}, make(map[string]string)},
		{"threadedReply", []robocoop.AnswerOption{robocoop.AnswerInThread()}, map[string]string{robocoop.ThreadedReplyOpt: "true"}},
		{"channelOverride", []robocoop.AnswerOption{robocoop.AnswerInChannel("C12345")}, map[string]string{robocoop.ChannelOverrideOpt: "C12345"}},
		{"threadedReplyInChannel", []robocoop.AnswerOption{robocoop.AnswerInThread(), robocoop.AnswerInChannel("C12345")}, map[string]string{robocoop.ThreadedReplyOpt: "true", robocoop.ChannelOverrideOpt: "C12345"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := robocoop.ApplyAnswerOpts(tc.options...)
			assert.Equal(t, tc.expectedConfig, c)
		})
	}
}
