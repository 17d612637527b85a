// Package normalisers provides implementations of the Normaliser interface
// for the supported document formats. Each normaliser knows how to turn one
// format into ordered text blocks.
//
// Normalisers are registered with the Registry at startup; RegisterDefaults
// installs every built-in format.
package normalisers
