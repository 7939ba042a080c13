// Package logging provides the tagged log.Printf convention shared by every
// adapter: "[INFO]", "[ERROR]", "[DEBUG]", "[OK]" prefixes over stdlib log.
package logging

import "log"

// Infof logs an informational message.
func Infof(format string, args ...any) {
	log.Printf("[INFO] "+format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...any) {
	log.Printf("[ERROR] "+format, args...)
}

// Debugf logs a debug message.
func Debugf(format string, args ...any) {
	log.Printf("[DEBUG] "+format, args...)
}

// OKf logs a successful completion message.
func OKf(format string, args ...any) {
	log.Printf("[OK] "+format, args...)
}
