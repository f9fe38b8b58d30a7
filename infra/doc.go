// Package infra contains technical adapters: the branch-and-bound solver
// backend, MQTT run publishing, metrics sinks and Sentry monitoring. These
// packages depend only on the interfaces defined in the core packages.
package infra
