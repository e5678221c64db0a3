package object

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

// Programmer errors. Checked builds panic with these values.
var (
	ErrNilObject          = errors.New("object: nil managed object")
	ErrNotAllocated       = errors.New("object: managed object was not created through Alloc")
	ErrAlreadyAllocated   = errors.New("object: managed object allocated twice")
	ErrReleased           = errors.New("object: use of a destroyed managed object")
	ErrDoubleDestroy      = errors.New("object: managed object destroyed twice")
	ErrUnknownClient      = errors.New("object: client is not registered")
	ErrClientsOutstanding = errors.New("object: service destroyed with registered clients")
	ErrPendingReused      = errors.New("object: pending reference adopted twice")
	ErrWeakOverRelease    = errors.New("object: weak reference released too often")
	ErrCycle              = errors.New("object: client registration closes a dependency cycle")
)

// Errors returned to callers.
var (
	ErrUnsupported        = errors.New("object: command not supported")
	ErrReentrantBroadcast = errors.New("object: re-entrant broadcast")
	ErrDuplicateCommand   = errors.New("object: command already registered")
)

// CycleError reports a registration that would make Owner depend on Target
// while Target already depends on Owner.
type CycleError struct {
	Owner  id.ObjectID
	Target id.ObjectID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("object: registering %s as client of %s closes a dependency cycle", e.Owner, e.Target)
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// BroadcastError wraps a failure returned by one client during a broadcast.
type BroadcastError struct {
	Service id.ObjectID
	Client  id.ObjectID
	Command Command
	Err     error
}

func (e *BroadcastError) Error() string {
	return fmt.Sprintf("broadcast %s from %s: client %s: %v", e.Command, e.Service, e.Client, e.Err)
}

func (e *BroadcastError) Unwrap() error {
	return e.Err
}
