// Package runtime drives one attached device: it funnels bus events and
// control-surface events through a single bounded channel into one consumer
// loop, which owns the transport and the parameter caches for the session.
//
// The consumer loop is the sole serialization point. All register reads,
// writes and command exchanges happen on it, so at most one mutating bus
// transaction is ever in flight per device and partial register updates
// cannot interleave.
//
// Lifecycle:
//
//	r := runtime.New(t, surface, bridges, cfg)
//	if err := r.Attach(); err != nil { ... }   // fatal: cache could not be established
//	r.Listen()                                 // producers start
//	go r.Run()                                 // consumer loop until Stop or disconnect
//	...
//	r.Stop()
package runtime
