// Package metrics exports dispatch metrics to Prometheus.
//
// Recorder implements dispatch.Recorder and tracks the number of open live
// connections. Collectors are registered on the given registerer; when they
// are already registered the existing ones are reused, so constructing a
// second Recorder on the same registry is safe.
package metrics
