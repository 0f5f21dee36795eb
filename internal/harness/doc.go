// Package harness runs conformance scenarios against the real engine.
//
// A scenario names item definition files, the actors and mobs present at
// the start, and a flow of host events: trigger firings, tick advances,
// actor changes and equips. Each run gets a fresh simulated server, an
// engine on a fake clock and a manual scheduler, and an in-memory store
// behind the firing journal, so traces are reproducible.
//
// The trace interleaves flow steps with the host events each step caused.
// RunWithGolden compares it against testdata/golden/<name>.golden as
// canonical JSON lines.
//
// Assertion types:
//   - event_contains: some host event matches
//   - event_count: number of events of a kind, optionally per actor
//   - event_order: events occur in order, not necessarily adjacent
//   - cooldown: whether an (actor, item, trigger) cooldown is active
//   - journal_count: journaled firings, optionally filtered
//   - actor_state: final health or level
//   - monitor_count: running continuous-trigger tasks
package harness
