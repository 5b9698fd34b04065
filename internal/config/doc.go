// Package config manages the persistent xbusd configuration file.
//
// The file lives in the OS-appropriate user configuration directory and
// stores connection defaults, decoder limits and metadata for devices the
// tool has talked to. It never stores anything the device itself can
// report; that is always re-read over the wire.
package config
