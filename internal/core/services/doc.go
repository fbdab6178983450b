// Package services implements the driving port interfaces.
// Services contain the overlap-detection logic and orchestrate
// calls to driven ports (corpus and cache stores, embedding and LLM
// providers).
//
// Services are pure Go with no CGO. Spans are emitted through the global
// OpenTelemetry tracer, which is a no-op unless tracing is enabled.
package services
