// Package loader reads item definition files and compiles their mechanics.
//
// Two authoring formats are accepted and share one decoding path:
//
//   - YAML (.yaml, .yml), decoded strictly with unknown keys rejected
//   - CUE (.cue), evaluated, exported to JSON and decoded like YAML
//
// Both expect a top-level "items" map keyed by item ID. Problems inside a
// single item, trigger, action or condition are collected as *LoadError
// values and logged; the offending entry is skipped and loading continues.
// Only an unreadable or syntactically broken file fails the whole load.
package loader
