// Package memory provides in-memory implementations of the driven storage ports.
// They are used when persistence is disabled and in tests.
package memory
