// Package messaging publishes and consumes domain events without tying modules to
// a broker.
//
// Drivers: "nats", "kafka" and "memory". The memory driver delivers in-process and
// is meant for local runs and tests.
package messaging
