package state

import (
	"fmt"
	"time"
)

// ActionKind names a transition of the sync state machine.
type ActionKind int

const (
	// ActionFetch marks a read as issued.
	ActionFetch ActionKind = iota
	// ActionFetchSuccess replaces the resource with the server payload.
	ActionFetchSuccess
	// ActionFetchFailure records a failed read and keeps the previous data.
	ActionFetchFailure
	// ActionUserInput buffers a local edit and applies it optimistically.
	ActionUserInput
	// ActionUpdate folds the buffered edits into the resource as a write is issued.
	ActionUpdate
	// ActionUpdateSuccess replaces the resource with the server's echo.
	ActionUpdateSuccess
	// ActionUpdateFailure records a failed write and keeps the optimistic data.
	// Any input still buffered is dropped.
	ActionUpdateFailure
)

var actionNames = [...]string{
	ActionFetch:         "fetch",
	ActionFetchSuccess:  "fetch_success",
	ActionFetchFailure:  "fetch_failure",
	ActionUserInput:     "user_input",
	ActionUpdate:        "update",
	ActionUpdateSuccess: "update_success",
	ActionUpdateFailure: "update_failure",
}

func (k ActionKind) String() string {
	if k >= 0 && int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is a single event fed to Reduce.
type Action[T any] struct {
	Kind  ActionKind
	Data  T     // FetchSuccess, UpdateSuccess
	Patch Patch // UserInput
	Err   error // FetchFailure, UpdateFailure
	At    time.Time
}

// Fetch builds an ActionFetch.
func Fetch[T any]() Action[T] {
	return Action[T]{Kind: ActionFetch}
}

// FetchSuccess builds an ActionFetchSuccess carrying the server payload.
func FetchSuccess[T any](data T, at time.Time) Action[T] {
	return Action[T]{Kind: ActionFetchSuccess, Data: data, At: at}
}

// FetchFailure builds an ActionFetchFailure.
func FetchFailure[T any](err error, at time.Time) Action[T] {
	return Action[T]{Kind: ActionFetchFailure, Err: err, At: at}
}

// UserInput builds an ActionUserInput.
func UserInput[T any](p Patch) Action[T] {
	return Action[T]{Kind: ActionUserInput, Patch: p}
}

// Update builds an ActionUpdate.
func Update[T any]() Action[T] {
	return Action[T]{Kind: ActionUpdate}
}

// UpdateSuccess builds an ActionUpdateSuccess carrying the server's echo.
func UpdateSuccess[T any](data T, at time.Time) Action[T] {
	return Action[T]{Kind: ActionUpdateSuccess, Data: data, At: at}
}

// UpdateFailure builds an ActionUpdateFailure.
func UpdateFailure[T any](err error, at time.Time) Action[T] {
	return Action[T]{Kind: ActionUpdateFailure, Err: err, At: at}
}

// Reduce applies a to s and returns the next snapshot. It never mutates s.
//
// When a patch cannot be applied the returned snapshot keeps the previous data
// with LastError set, and the error is returned as well.
func Reduce[T any](s Snapshot[T], a Action[T]) (Snapshot[T], error) {
	next := s
	next.Input = s.Input.Clone()

	switch a.Kind {
	case ActionFetch:
		next.IsLoading = true

	case ActionFetchSuccess:
		next.Data = a.Data
		next.IsLoading = false
		next.markSynced(a.At)

	case ActionFetchFailure:
		next.IsLoading = false
		next.markFailed(a.Err, a.At)

	case ActionUserInput:
		input, err := next.Input.Merge(a.Patch)
		if err != nil {
			return s.withError(err), err
		}
		data, err := Apply(s.Data, a.Patch)
		if err != nil {
			return s.withError(err), err
		}
		next.Data = data
		next.Input = input
		next.IsLoading = false
		next.IsUpdating = true

	case ActionUpdate:
		data, err := Apply(s.Data, s.Input)
		if err != nil {
			return s.withError(err), err
		}
		next.Data = data
		next.Input = nil
		next.IsUpdating = true

	case ActionUpdateSuccess:
		next.Data = a.Data
		next.IsUpdating = false
		if !next.Input.IsEmpty() {
			// Edits that arrived after the write stay on top of the echo.
			data, err := Apply(a.Data, next.Input)
			if err != nil {
				return s.withError(err), err
			}
			next.Data = data
			next.IsUpdating = true
		}
		next.markSynced(a.At)

	case ActionUpdateFailure:
		// Input that could not be written is dropped with the attempt.
		next.Input = nil
		next.IsUpdating = false
		next.markFailed(a.Err, a.At)

	default:
		return s, fmt.Errorf("unknown action %v", a.Kind)
	}
	return next, nil
}

func (s *Snapshot[T]) markSynced(at time.Time) {
	s.LastError = nil
	s.LastUpdated = at
	s.ConsecutiveFailures = 0
}

func (s *Snapshot[T]) markFailed(err error, at time.Time) {
	if err == nil {
		err = fmt.Errorf("unknown failure")
	}
	s.LastError = err
	s.LastUpdated = at
	s.ConsecutiveFailures++
}

func (s Snapshot[T]) withError(err error) Snapshot[T] {
	s.Input = s.Input.Clone()
	s.LastError = err
	return s
}
