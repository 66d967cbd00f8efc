package challenge_test

import (
	"encoding/json"
	"testing"
	"time"

	"robocoop/challenge"
	"robocoop/store/mocks"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoadWithNothingStored(t *testing.T) {
	storer := &mocks.Storer{}
	storer.On("GetString", "TEAM1").Return("", errors.New("not found"))

	cs := challenge.NewStore(storer, testLogger())
	cs.Load("TEAM1")

	st := cs.State()
	assert.Equal(t, challenge.NewState("TEAM1"), st)
	assert.False(t, st.Active())
}

func TestLoadWithUnreadableStoredState(t *testing.T) {
	storer := &mocks.Storer{}
	storer.On("GetString", "TEAM1").Return("{not json", nil)

	cs := challenge.NewStore(storer, testLogger())
	cs.Load("TEAM1")

	assert.Equal(t, challenge.NewState("TEAM1"), cs.State())
}

func TestLoadWithStoredState(t *testing.T) {
	stored := challenge.State{
		ID:                "TEAM1",
		Team:              "TEAM1",
		Exercise:          "squats",
		Reps:              200,
		SetSize:           10,
		EndDay:            challengeEnd,
		ReminderFrequency: challenge.Hourly,
		Channel:           "C12345",
		Users:             []challenge.UserEntry{{ID: "alice", Reps: 30}},
	}
	blob, err := json.Marshal(stored)
	require.NoError(t, err)

	storer := &mocks.Storer{}
	storer.On("GetString", "TEAM1").Return(string(blob), nil)

	cs := challenge.NewStore(storer, testLogger())
	cs.Load("TEAM1")

	assert.Equal(t, stored, cs.State())
	assert.Equal(t, 30, cs.TotalReps("alice"))
}

func TestLoadFixesMissingUsers(t *testing.T) {
	storer := &mocks.Storer{}
	storer.On("GetString", "TEAM1").Return(`{"id": "TEAM1", "team": "TEAM1"}`, nil)

	cs := challenge.NewStore(storer, testLogger())
	cs.Load("TEAM1")

	assert.NotNil(t, cs.State().Users)
}

func TestApplyPersistsAsynchronously(t *testing.T) {
	persisted := make(chan string, 1)

	storer := &mocks.Storer{}
	storer.On("GetString", "TEAM1").Return("", errors.New("not found"))
	storer.On("PutString", "TEAM1", mock.AnythingOfType("string")).Return(nil).Run(func(args mock.Arguments) {
		select {
		case persisted <- args.String(1):
		default:
		}
	})

	cs := challenge.NewStore(storer, testLogger())
	cs.Load("TEAM1")

	cs.Apply(challenge.StartChallenge(100, "push-ups", challengeEnd, 20, "C12345"))

	select {
	case blob := <-persisted:
		var st challenge.State
		require.NoError(t, json.Unmarshal([]byte(blob), &st))
		assert.Equal(t, "TEAM1", st.ID)
		assert.Equal(t, "push-ups", st.Exercise)
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for the new state to be persisted")
	}
}

func TestApplyWithoutTeamIDSkipsPersistence(t *testing.T) {
	storer := &mocks.Storer{}

	cs := challenge.NewStore(storer, testLogger())
	cs.Apply(challenge.StartChallenge(100, "push-ups", challengeEnd, 20, "C12345"))

	// No Load happened so there's no team id and nothing to persist
	storer.AssertNotCalled(t, "PutString", mock.Anything, mock.Anything)
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	cs := newActiveStore()
	cs.LogReps("alice", 20)

	st := cs.State()
	st.Users[0].Reps = 9000

	assert.Equal(t, 20, cs.TotalReps("alice"), "mutating a snapshot should not affect the store")
}

func TestStartChallengeClearsLedgerAndKeepsFrequency(t *testing.T) {
	cs := newActiveStore()
	cs.Apply(challenge.SetReminderFrequency(challenge.Hourly))
	cs.LogReps("alice", 60)

	st := cs.Apply(challenge.StartChallenge(200, "squats", challengeEnd.AddDate(0, 0, 7), 10, "C67890"))

	assert.Empty(t, st.Users)
	assert.Equal(t, "squats", st.Exercise)
	assert.Equal(t, 200, st.Reps)
	assert.Equal(t, 10, st.SetSize)
	assert.Equal(t, "C67890", st.Channel)
	assert.Equal(t, challenge.Hourly, st.ReminderFrequency, "starting a new challenge should not reset the reminder frequency")
}

func TestEndChallengeResetsToDefaultKeepingTeamID(t *testing.T) {
	storer := &mocks.Storer{}
	storer.On("GetString", "TEAM1").Return("", errors.New("not found"))
	storer.On("PutString", "TEAM1", mock.AnythingOfType("string")).Return(nil)

	cs := challenge.NewStore(storer, testLogger())
	cs.Load("TEAM1")
	cs.Apply(challenge.StartChallenge(100, "push-ups", challengeEnd, 20, "C12345"))
	cs.LogReps("alice", 40)

	st := cs.Apply(challenge.EndChallenge())

	assert.Equal(t, challenge.NewState("TEAM1"), st)
}

func TestReplaceUsersWithNil(t *testing.T) {
	cs := newActiveStore()
	cs.LogReps("alice", 20)

	st := cs.Apply(challenge.ReplaceUsers(nil))

	assert.NotNil(t, st.Users)
	assert.Empty(t, st.Users)
}
