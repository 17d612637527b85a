// Package file provides the TOML configuration store.
// Settings are read from and written to ~/.deskref/config.toml by default.
package file
