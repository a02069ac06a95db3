// Package models defines the core data structures for DialogPipe.
//
// This file holds the dialog stack records persisted between turns and the
// result/reason enumerations shared by the dialog engine.
package models

import "errors"

// DialogInstance is one activation record on the dialog stack. State is
// private scratch memory for that frame and must stay JSON-serializable.
type DialogInstance struct {
	ID    string         `json:"id"`
	State map[string]any `json:"state"`
}

// DialogState is the only structure persisted between turns. It is stored as
// one opaque JSON-serializable record under a caller-chosen key.
type DialogState struct {
	DialogStack []*DialogInstance `json:"dialogStack"`
}

// DialogTurnStatus describes where the dialog stack stands after a turn.
type DialogTurnStatus string

const (
	// DialogTurnStatusEmpty means the stack is empty and nothing was started.
	DialogTurnStatusEmpty DialogTurnStatus = "empty"
	// DialogTurnStatusWaiting means the active dialog is suspended awaiting input.
	DialogTurnStatusWaiting DialogTurnStatus = "waiting"
	// DialogTurnStatusComplete means the last dialog on the stack ended with a result.
	DialogTurnStatusComplete DialogTurnStatus = "complete"
	// DialogTurnStatusCancelled means the stack was cancelled.
	DialogTurnStatusCancelled DialogTurnStatus = "cancelled"
)

// DialogTurnResult is the tri-state outcome of a dialog stack operation.
// Result is only meaningful when Status is DialogTurnStatusComplete.
type DialogTurnResult struct {
	Status DialogTurnStatus `json:"status"`
	Result any              `json:"result,omitempty"`
}

// DialogReason explains why a dialog method is being invoked.
type DialogReason string

const (
	// DialogReasonBeginCalled means the dialog was started via BeginDialog.
	DialogReasonBeginCalled DialogReason = "beginCalled"
	// DialogReasonContinueCalled means the dialog is resuming on raw user input.
	DialogReasonContinueCalled DialogReason = "continueCalled"
	// DialogReasonEndCalled means a child dialog ended and returned control.
	DialogReasonEndCalled DialogReason = "endCalled"
	// DialogReasonReplaceCalled means the dialog was replaced on the stack.
	DialogReasonReplaceCalled DialogReason = "replaceCalled"
	// DialogReasonCancelCalled means the dialog was cancelled.
	DialogReasonCancelCalled DialogReason = "cancelCalled"
	// DialogReasonNextCalled means a waterfall step advanced silently.
	DialogReasonNextCalled DialogReason = "nextCalled"
)

// Error variables for dialog configuration failures. These indicate
// programmer errors, are raised synchronously at the point of misuse, and are
// never retried.
var (
	ErrNilDialog         = errors.New("dialog cannot be nil")
	ErrEmptyDialogID     = errors.New("dialog id cannot be empty")
	ErrDuplicateDialogID = errors.New("dialog id already registered")
	ErrDialogNotFound    = errors.New("no dialog registered with the requested id")
	ErrNoStateAccessor   = errors.New("dialog set has no state accessor bound")
	ErrNoRootDialog      = errors.New("dialog runner has no root dialog configured")
	ErrNoActiveDialog    = errors.New("no active dialog on the stack")
	ErrInvalidOptions    = errors.New("invalid options for dialog")
)
