// Package host declares the boundary between the mechanics engine and the
// game server it runs inside.
//
// The engine never owns entity or world simulation. Everything it reads or
// changes about actors, items and worlds goes through the interfaces here,
// and every deferred or repeating callback goes through Scheduler.
// internal/sim provides an in-memory implementation.
package host
