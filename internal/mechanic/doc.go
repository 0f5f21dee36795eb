// Package mechanic holds the runtime shapes shared by the evaluator, the
// action catalog and the execution pipeline: the per-invocation Context,
// the Action contract and compiled item Definitions.
package mechanic
