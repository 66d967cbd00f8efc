package challenge

import (
	"encoding/json"
	"sync"
	"time"

	"robocoop"
	"robocoop/store"
)

// Store owns the challenge state for a team. All mutations go through Apply
// with typed updates: there is no ambient shared state. After every mutation,
// once the team id is known, the full state is persisted asynchronously to the
// backing store keyed by that id. Persistence is fire-and-forget: the backing
// store is a best-effort cache, not the source of truth
type Store struct {
	mu     sync.Mutex
	state  State
	storer store.StringStorer
	logger robocoop.SLogger
}

// NewStore creates a challenge store persisting through storer
func NewStore(storer store.StringStorer, logger robocoop.SLogger) *Store {
	cs := new(Store)
	cs.storer = storer
	cs.logger = logger
	cs.state = State{Users: []UserEntry{}}

	return cs
}

// Load installs prior persisted state for the team, or the default state if
// nothing was persisted or the stored blob can't be read. Storage errors are
// never surfaced: the store degrades to in-memory defaults
func (cs *Store) Load(teamID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	blob, err := cs.storer.GetString(teamID)
	if err != nil {
		cs.logger.Debugf("No stored state for team [%s], starting fresh: %v\n", teamID, err)
		cs.state = NewState(teamID)
		return
	}

	var stored State
	if err := json.Unmarshal([]byte(blob), &stored); err != nil || stored.ID == "" {
		cs.logger.Printf("Discarding unreadable stored state for team [%s]: %v\n", teamID, err)
		cs.state = NewState(teamID)
		return
	}

	if stored.Users == nil {
		stored.Users = []UserEntry{}
	}

	cs.state = stored
}

// State returns a snapshot of the current state. The Users slice is copied so
// callers can't mutate the store's view of it
func (cs *Store) State() State {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return cs.snapshotLocked()
}

func (cs *Store) snapshotLocked() State {
	snapshot := cs.state
	snapshot.Users = make([]UserEntry, len(cs.state.Users))
	copy(snapshot.Users, cs.state.Users)

	return snapshot
}

// Update is a typed state transition applied by the store
type Update func(s *State)

// StartChallenge replaces the challenge wholesale: parameters are set and the
// user ledger is cleared as a single state transition
func StartChallenge(reps int, exercise string, endDay time.Time, setSize int, channel string) Update {
	return func(s *State) {
		s.Reps = reps
		s.Exercise = exercise
		s.EndDay = endDay
		s.SetSize = setSize
		s.Channel = channel
		s.Users = []UserEntry{}
	}
}

// EndChallenge resets the state to the default, keeping only the team identity
func EndChallenge() Update {
	return func(s *State) {
		*s = NewState(s.ID)
	}
}

// SetReminderFrequency updates how often the reminder scheduler runs
func SetReminderFrequency(f Frequency) Update {
	return func(s *State) {
		s.ReminderFrequency = f
	}
}

// PutUser writes a user entry into the ledger, replacing the existing entry
// with the same id or appending a new one. The ledger stays unique by user id
// and keeps its insertion order
func PutUser(u UserEntry) Update {
	return func(s *State) {
		for i := range s.Users {
			if s.Users[i].ID == u.ID {
				s.Users[i] = u
				return
			}
		}

		s.Users = append(s.Users, u)
	}
}

// ReplaceUsers swaps the whole ledger out
func ReplaceUsers(users []UserEntry) Update {
	return func(s *State) {
		if users == nil {
			users = []UserEntry{}
		}

		s.Users = users
	}
}

// Apply runs the updates as one transition and returns the resulting
// snapshot. If the state carries a team id, the result is persisted
// asynchronously; a failed save is logged and otherwise ignored
func (cs *Store) Apply(updates ...Update) State {
	cs.mu.Lock()

	for _, update := range updates {
		update(&cs.state)
	}

	snapshot := cs.snapshotLocked()
	cs.mu.Unlock()

	if snapshot.ID != "" {
		go cs.persist(snapshot)
	}

	return snapshot
}

// persist saves a state snapshot to the backing store keyed by the team id
func (cs *Store) persist(snapshot State) {
	blob, err := json.Marshal(snapshot)
	if err != nil {
		cs.logger.Printf("Error marshalling state for team [%s]: %v\n", snapshot.ID, err)
		return
	}

	if err := cs.storer.PutString(snapshot.ID, string(blob)); err != nil {
		cs.logger.Printf("Error saving state for team [%s]: %v\n", snapshot.ID, err)
	}
}
