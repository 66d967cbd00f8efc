package challenge

import (
	"sort"
)

// LogReps merges delta additively into the user's ledger entry, creating the
// entry if the user hasn't logged anything yet. A negative delta subtracts
// (used by undo). Returns the resulting state snapshot
func (cs *Store) LogReps(userID string, delta int) State {
	total := cs.TotalReps(userID)

	return cs.Apply(PutUser(UserEntry{ID: userID, Reps: total + delta}))
}

// FindUser looks a user up by id
func (cs *Store) FindUser(userID string) (u UserEntry, found bool) {
	for _, u := range cs.State().Users {
		if u.ID == userID {
			return u, true
		}
	}

	return UserEntry{}, false
}

// TotalReps returns the user's cumulative reps for the current challenge, or
// 0 if the user hasn't logged anything. It never fails
func (cs *Store) TotalReps(userID string) int {
	u, found := cs.FindUser(userID)
	if !found {
		return 0
	}

	return u.Reps
}

// Leaderboard returns the top n users by reps, descending. Ties keep their
// original insertion order and an n larger than the population returns everyone
func (cs *Store) Leaderboard(n int) []UserEntry {
	return cs.rankedUsers(n, func(a, b UserEntry) bool {
		return a.Reps > b.Reps
	})
}

// Slackerboard returns the bottom n users by reps, ascending, with the same
// tie-break and bounds behavior as Leaderboard
func (cs *Store) Slackerboard(n int) []UserEntry {
	return cs.rankedUsers(n, func(a, b UserEntry) bool {
		return a.Reps < b.Reps
	})
}

func (cs *Store) rankedUsers(n int, less func(a, b UserEntry) bool) []UserEntry {
	users := cs.State().Users

	sort.SliceStable(users, func(i, j int) bool {
		return less(users[i], users[j])
	})

	if n > len(users) {
		n = len(users)
	}

	return users[:n]
}
