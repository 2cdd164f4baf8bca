// Package flowdsl compiles the line-oriented workflow DSL used by the visual
// workflow editor and validates the resulting configuration graph.
//
// The package exposes three stateless operations that share one data model:
//
//   - Parse: text -> Configuration + recoverable line diagnostics
//   - Serialize: Configuration -> canonical text (deterministic, idempotent)
//   - ValidateConfiguration / ValidateGraph: configuration or live-diagram
//     projection -> ordered validation issues plus an advisory score
//
// Every operation is a pure function over its input: no I/O, no shared
// state, safe to re-run on each keystroke-debounced edit and to call
// concurrently on independent inputs.
package flowdsl
