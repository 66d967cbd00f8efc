package challenge

import (
	"time"

	"github.com/pkg/errors"
)

// Errors answering rep submissions. They map one-to-one to a user-visible
// corrective message and none of them leaves a state change behind
var (
	// ErrNoChallenge means the command requires an active challenge and there is none
	ErrNoChallenge = errors.New("no active challenge")
	// ErrChallengeOver means the challenge's end day has passed
	ErrChallengeOver = errors.New("challenge has ended")
	// ErrNegativeReps means the submitted quantity was negative
	ErrNegativeReps = errors.New("negative rep count")
	// ErrPartialSet means the submitted quantity was smaller than a full set
	ErrPartialSet = errors.New("rep count smaller than a full set")
	// ErrUndoExceedsTotal means the user tried to undo more reps than they have logged
	ErrUndoExceedsTotal = errors.New("undo amount exceeds logged total")
)

// Result reports what a rep submission did to the ledger
type Result struct {
	// Counted is the quantity recorded after rounding
	Counted int
	// Remainder is the part of the submission discarded by rounding
	Remainder int
	// Total is the user's cumulative reps after the submission
	Total int
	// Remaining is the challenge-wide remaining rep count after the
	// submission. It goes negative once the group exceeds the target
	Remaining int
}

// RoundToSet rounds n down to the nearest multiple of setSize and reports the
// discarded remainder
func RoundToSet(n int, setSize int) (counted int, remainder int) {
	remainder = n % setSize

	return n - remainder, remainder
}

// Completed is the total rep count logged by all users
func (s State) Completed() (total int) {
	for _, u := range s.Users {
		total = total + u.Reps
	}

	return total
}

// Remaining is the challenge target minus everything logged so far. It is not
// clamped: a group that exceeds the target drives it negative
func (s State) Remaining() int {
	return s.Reps - s.Completed()
}

// UserReps returns the reps logged by a user in this state, 0 if absent
func (s State) UserReps(userID string) int {
	for _, u := range s.Users {
		if u.ID == userID {
			return u.Reps
		}
	}

	return 0
}

// Record normalizes and records a rep submission for a user:
//   - 0 is accepted as a zero-delta acknowledgement
//   - anything below a full set (or negative) is rejected
//   - quantities above a set that aren't exact multiples are rounded down and
//     the discarded remainder is reported in the Result
func (cs *Store) Record(userID string, reps int, now time.Time) (r Result, err error) {
	st := cs.State()

	if err := checkOpen(st, now); err != nil {
		return Result{}, err
	}

	if reps < 0 {
		return Result{}, ErrNegativeReps
	}

	if reps == 0 {
		return Result{Total: st.UserReps(userID), Remaining: st.Remaining()}, nil
	}

	if reps < st.SetSize {
		return Result{}, ErrPartialSet
	}

	counted, remainder := RoundToSet(reps, st.SetSize)
	updated := cs.LogReps(userID, counted)

	return Result{Counted: counted, Remainder: remainder, Total: updated.UserReps(userID), Remaining: updated.Remaining()}, nil
}

// Undo subtracts a previously recorded quantity, with the same set-size rules
// as Record. A user can never go below zero: undoing with nothing logged or
// undoing more than the logged total is rejected
func (cs *Store) Undo(userID string, reps int, now time.Time) (r Result, err error) {
	st := cs.State()

	if err := checkOpen(st, now); err != nil {
		return Result{}, err
	}

	total := st.UserReps(userID)
	if total <= 0 || reps > total {
		return Result{Total: total}, ErrUndoExceedsTotal
	}

	if reps < 0 {
		return Result{}, ErrNegativeReps
	}

	if reps == 0 {
		return Result{Total: total, Remaining: st.Remaining()}, nil
	}

	if reps < st.SetSize {
		return Result{}, ErrPartialSet
	}

	counted, remainder := RoundToSet(reps, st.SetSize)
	updated := cs.LogReps(userID, -counted)

	return Result{Counted: counted, Remainder: remainder, Total: updated.UserReps(userID), Remaining: updated.Remaining()}, nil
}

// checkOpen verifies that a challenge exists and hasn't ended
func checkOpen(st State, now time.Time) error {
	if !st.Active() {
		return ErrNoChallenge
	}

	if InPast(st.EndDay, now) {
		return ErrChallengeOver
	}

	return nil
}
