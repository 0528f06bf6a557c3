// Package telemetry wires observability for the gateway core.
//
// It provides an Observer giving access to an OpenTelemetry tracer and
// meter plus a structured JSON logger, with otlp, prometheus, and stdout
// exporters behind a single configuration struct. Disabled subsystems fall
// back to no-op implementations so instrumented code never branches.
package telemetry
