// Package infra holds the adapters around the planner: zerolog logging,
// Sentry monitoring, plan sinks (Prometheus, InfluxDB, webhook) and the
// MQTT publisher. They depend only on interfaces defined under core.
package infra
