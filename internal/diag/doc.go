// Package diag collects structured diagnostics produced by the
// compilation pipeline.
//
// Diagnostics attach to a named subject (an entry point, an inlined
// binding, a record field) rather than a source location: the compiler
// consumes already-elaborated terms and has no source text of its own.
// Phases report into a Bag via the Reporter contract; the host decides
// how to render the collected items.
package diag
