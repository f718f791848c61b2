// Package trace provides lightweight pipeline tracing.
//
// Compilation phases open spans; the driver wires a tracer according
// to the --trace flag. Trace output is advisory text or NDJSON and is
// never part of the functional contract.
package trace
