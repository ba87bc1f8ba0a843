// Package observe provides observability primitives for fetch operations.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wrap their fetch/validate/lookup
// operations in Middleware and wire cache instances to a CacheCollector.
package observe
