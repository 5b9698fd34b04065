// Package ui implements the interactive terminal frontend for the live
// telemetry stream.
package ui
