// Package server exposes the HTTP surface: the Instagram webhook endpoints,
// the decision record endpoints, health probes, and Prometheus metrics.
package server
