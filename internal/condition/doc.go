// Package condition evaluates condition lists against an invocation
// context.
//
// A list is the conjunction of its entries, evaluated left to right with
// short-circuit. Types resolve first against the built-in catalog, then
// against the extension registry; anything else is false. Raw results are
// cached per (actor, type, operand) for a short TTL and inversion is
// applied after the cache, so a condition and its inverse share one entry.
package condition
