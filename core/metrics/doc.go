// Package metrics defines the sinks recording scheduling run metrics.
// Implementations such as PromSink and InfluxSink live in infra/metrics and
// register themselves by name; NewMetricsSink combines the configured sinks
// into a MultiSink when more than one is listed.
package metrics
