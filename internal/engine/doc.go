// Package engine implements the item mechanics execution pipeline.
//
// An Engine is the explicit context object that owns every registry the
// pipeline touches: the cooldown registry, the condition evaluator and the
// periodic monitor. Hosts construct one Engine and pass it to their event
// adapter; nothing in this package is global.
//
// Pipeline, terminal on the first failing gate:
//
//  1. Validate: actor online, item non-empty, trigger known, and for
//     hand-bound triggers the item is in the main or off hand.
//  2. Resolve the item's definition through the Provider.
//  3. Require at least one action bound to the trigger.
//  4. Cooldown gate, with a remaining-time notice to the actor.
//  5. Permission gate, with a no-permission notice.
//  6. Per action, in declaration order: evaluate its conditions, check
//     CanExecute, then run it now or schedule it DelayTicks ahead.
//  7. Settle: start the cooldown and consume one item if anything was
//     dispatched.
//
// Actions never block. A delay is a scheduled callback on the host
// scheduler running against the same Context snapshot.
//
// Gate denials are not errors. DetectAndExecute reports only whether
// anything was dispatched; DetectAndExecuteWithOutcome exposes the
// terminal stage for diagnostics and tests.
package engine
