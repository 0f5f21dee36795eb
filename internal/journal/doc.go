// Package journal persists firing records off the invocation path.
//
// The engine calls Record from whatever goroutine ran the pipeline. Records
// land on an unbounded in-memory queue; a single Run loop drains them in
// batches into a Writer (normally *store.Store). Write errors are logged
// and the batch is dropped so a failing disk never stalls gameplay.
package journal
