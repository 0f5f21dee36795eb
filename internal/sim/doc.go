// Package sim is an in-memory host: actors, mobs, items and worlds that
// satisfy the host interfaces and record every side effect as an Event.
//
// The harness, the CLI and most package tests drive the engine through it.
// All types are safe for concurrent use.
package sim
