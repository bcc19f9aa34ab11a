package exec

import (
	"fmt"

	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/storage"
)

// Iteration carries the bookkeeping a leaf operator needs to resume
// correctly. It is an immutable value moved through messages and
// continuations.
type Iteration struct {
	// InputRow is the row of the morsel holding the correlated outer values
	// the operator's expressions read.
	InputRow int
}

// Message is the input to one operator invocation. The set of variants is
// closed: StartLoop for non-leaf entry, StartLeafLoop for fresh leaf entry
// and ContinueLoopWith to resume a suspended leaf. Exactly one variant is
// valid per invocation context, anything else is a protocol violation.
type Message interface {
	isMessage()
}

// StartLoop enters a non-leaf operator over an already-populated morsel.
type StartLoop struct {
}

func (StartLoop) isMessage() {}

// StartLeafLoop enters a leaf operator fresh. The operator allocates a new
// source cursor.
type StartLeafLoop struct {
	Iteration Iteration
}

func (StartLeafLoop) isMessage() {}

// ContinueLoopWith resumes a leaf operator with the cursor a previous
// invocation suspended. The operator must not reallocate or re-seek.
type ContinueLoopWith struct {
	Source    storage.Cursor
	Iteration Iteration
}

func (ContinueLoopWith) isMessage() {}

// Continuation is the output of one operator invocation: either the loop is
// done and every owned cursor has been released, or the morsel filled first
// and the continuation now owns the still-open cursor.
//
// Dispose is the explicit abandonment path: it releases any owned cursor
// without draining it, exactly once. Normal exhaustion must never be the only
// release path, an aborted pipeline disposes its in-flight continuations.
type Continuation interface {
	HasMore() bool
	Dispose() error
}

// EndOfLoop is the terminal continuation.
type EndOfLoop struct {
}

func (EndOfLoop) HasMore() bool {
	return false
}

func (EndOfLoop) Dispose() error {
	return nil
}

// ContinueWithSource suspends a leaf loop: the morsel filled while the source
// still had matches. Ownership of the open cursor transfers to the
// continuation; no two invocations ever touch it concurrently because the
// scheduler hands the continuation to exactly one worker at a time.
type ContinueWithSource struct {
	Source    storage.Cursor
	Iteration Iteration
	disposed  bool
}

func (*ContinueWithSource) HasMore() bool {
	return true
}

// Dispose closes the suspended cursor. Calling it twice is a double release
// and reported as an error.
func (c *ContinueWithSource) Dispose() error {
	if c.disposed {
		return errors.New("continuation already disposed")
	}
	c.disposed = true
	return c.Source.Close()
}

// protocolViolation aborts on a message variant that is invalid for the
// operator's current state. This is an internal scheduler/operator mismatch
// bug, never a data-dependent condition.
func protocolViolation(operator string, msg Message) {
	panic(errors.NewProtocolViolationError(fmt.Sprintf("%s received %T", operator, msg)))
}
