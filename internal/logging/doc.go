// Package logging provides the global zap logger for xbusd.
//
// Logging is silent by default so command output stays clean; set the
// XBUSD_LOG_LEVEL environment variable (debug, info, warn, error) to
// enable diagnostic output.
package logging
