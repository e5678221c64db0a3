/*
Package object implements the ownership and lifetime kernel shared by every
managed entity: intrusive reference counting, client (back-reference)
tracking, broadcast messaging, cycle detection and weak references.

# Managed objects

A managed type embeds Object (or Registry when other objects may depend on
it) and is created through Alloc, which hands the creator one implicit strong
reference:

	type Bus struct {
		object.Registry
		name string
	}

	bus := object.Alloc(&Bus{name: "i2c0"})   // count == 1
	ref := object.Adopt(bus)                 // takes over that reference
	defer ref.Drop()                         // count 1 -> 0, bus destroyed

Destruction is synchronous: the goroutine whose Release takes the count to
zero runs the outer value's Destroy method (if it implements Destroyer)
before Release returns.

# Clients and broadcast

A client declares a dependency on a service with a ServiceRef. Each
registration holds one count on the service, so a service can never be
destroyed while clients depend on it. Broadcast invokes Handler.ExecuteCommand
on every registered client in registration order.

# Weak references

WeakOf and Ref.Downgrade return a Weak handle that never keeps the object
alive. Upgrade returns an empty Ref once the object is gone. Upgrade and the
final Release negotiate under one lock, so exactly one of them wins.

# Checked builds

Programmer errors (use before Alloc, use after destruction, over-release,
dependency cycles) panic in checked builds. Building with the
objmgr_release tag removes the checks, including the cycle guard.
*/
package object
