// Package action implements the action catalog: a registry of factories
// that compile raw ir.ActionSpec entries into mechanic.Action values,
// dispatched by kind string.
//
// Every built-in kind embeds Base, which carries the shared kind, delay,
// target requirement and guard conditions and supplies the default
// CanExecute. Hosts add kinds with Catalog.Register.
package action
