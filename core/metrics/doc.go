// Package metrics defines the sinks planning runs are reported to. Sinks
// like the Prometheus, Influx and webhook sinks in infra/metrics record plan
// summaries and may also implement the optional recorder interfaces. The
// factory helpers return a MultiSink when several sinks are configured.
package metrics
