// Package gatedbus implements an in-process publish/subscribe bus whose
// deliveries are gated by per-event middleware.
//
// Every event name may carry an ordered chain of predicates, fixed when the
// Bus is created. Emit evaluates the whole chain concurrently; the payload is
// delivered to listeners only when every predicate passes and is otherwise
// appended to the event's pending queue. ReEval replays the pending queue in
// FIFO order against the current predicate state, ClearQueue discards it.
//
// Listeners cannot be removed while their event still has pending payloads:
// Off and OffAll return ErrEventInQueue until the queue is drained or cleared.
//
// Event[T] gives a typed view over the same bus:
//
//	login := gatedbus.Define[string]("login", gatedbus.CheckOf(func(u string) bool { return u != "blocked" }))
//	bus := gatedbus.New(gatedbus.NewTable(login))
//	gatedbus.Subscribe(bus, login, func(ctx context.Context, user string) error { ... })
//	err := gatedbus.Publish(ctx, bus, login, "alice")
package gatedbus
