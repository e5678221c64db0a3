/*
Package collection provides containers of managed services that follow the
registration discipline of package object: every element slot holds a
strong reference to its element and registers the container as one of the
element's clients. Removing, clearing or destroying the container gives
both back.

Containers are managed objects themselves. Create them with NewList or
NewMap and release them like any other object:

	devices := collection.NewList[*Device]()
	devices.PushBack(dev)
	...
	devices.Release() // deregisters from and drops every element

Because the container is a client of its elements, an element can never
register as a client of a container that holds it; checked builds reject
that registration as a dependency cycle.
*/
package collection
