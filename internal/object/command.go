package object

import (
	"context"
	"fmt"
	"sync"
)

// Command identifies a broadcast message. Zero is never a valid command.
type Command uint32

// Handler is implemented by clients that accept broadcast commands.
// Implementations return ErrUnsupported (possibly wrapped) for commands they
// do not recognise.
type Handler interface {
	ExecuteCommand(ctx context.Context, caller Managed, cmd Command, params ...any) error
}

type commandTable struct {
	mu    sync.RWMutex
	names map[Command]string
}

var commands = sync.OnceValue(func() *commandTable {
	return &commandTable{names: make(map[Command]string)}
})

// RegisterCommand names cmd for logs and traces. Registering the same name
// twice is a no-op; a different name for a taken code fails.
func RegisterCommand(cmd Command, name string) error {
	if cmd == 0 {
		return fmt.Errorf("command code 0 is reserved")
	}

	t := commands()
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.names[cmd]; ok {
		if existing == name {
			return nil
		}
		return fmt.Errorf("%w: %d is %q", ErrDuplicateCommand, uint32(cmd), existing)
	}
	t.names[cmd] = name
	return nil
}

// MustRegisterCommand is RegisterCommand for package-level declarations.
func MustRegisterCommand(cmd Command, name string) Command {
	if err := RegisterCommand(cmd, name); err != nil {
		panic(err)
	}
	return cmd
}

func (c Command) String() string {
	t := commands()
	t.mu.RLock()
	name, ok := t.names[c]
	t.mu.RUnlock()

	if ok {
		return name
	}
	return fmt.Sprintf("command(%d)", uint32(c))
}
