// Package ir provides the definition-level types of the mechanics engine.
//
// This package contains the trigger taxonomy, the condition model with its
// textual grammar, raw action specs and item definitions. It imports nothing
// internal; every other package builds on it.
//
// Key design constraints:
//   - Conditions are values: comparable with ==, never mutated after parse
//   - Trigger config keys are unique and looked up case-insensitively
//   - Definition hashes use canonical JSON so equal definitions hash equal
package ir
