// Package metrics records submission and lookup counters with the Prometheus
// client and can dump them for the node-exporter textfile collector.
package metrics
