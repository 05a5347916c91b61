package questiongenerator

import "log"

// Package-level switch for diagnostic output. Warnings always print; Debugf
// output appears only in verbose mode.
var verboseMode bool

// SetVerbose toggles diagnostic logging for the whole package.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// Debugf logs a diagnostic message when verbose mode is enabled. The
// extraction and filtering paths use it to explain degraded or rejected
// results.
func Debugf(format string, v ...interface{}) {
	if verboseMode {
		log.Printf(format, v...)
	}
}
