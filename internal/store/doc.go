// Package store provides SQLite-backed persistence for the mechanics
// engine.
//
// Three tables:
//   - firings: one row per invocation that reached the action stage,
//     written by the journal
//   - definitions: canonical JSON of every item definition version, keyed
//     by definition hash, so a firing can be traced to the exact mechanics
//     that ran
//   - cooldowns: a snapshot of the cooldown registry taken at shutdown and
//     restored at startup
//
// Reads are ordered by seq ASC, id ASC COLLATE BINARY so traces are
// identical across runs.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
