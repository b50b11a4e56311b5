// Package logging prefixes log lines with the subsystem that wrote them.
// Output goes wherever the standard logger points; the TUI sends it to a file.
package logging

import (
	"log"
	"os"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

var debug atomic.Bool

func init() {
	debug.Store(envDebug())
}

func envDebug() bool {
	return os.Getenv("DEBUG") == "true"
}

// SetDebug turns debug lines on or off. DEBUG=true in the environment keeps
// them on regardless.
func SetDebug(on bool) {
	debug.Store(on || envDebug())
}

func DebugEnabled() bool {
	return debug.Load()
}

func Info(subsystem, format string, args ...any) {
	logf(subsystem, format, args)
}

// Debug is Info for lines only wanted while debugging.
func Debug(subsystem, format string, args ...any) {
	if debug.Load() {
		logf(subsystem, format, args)
	}
}

func logf(subsystem, format string, args []any) {
	log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
}

// Truncate flattens s onto one line and cuts it to at most maxLen bytes
// without splitting a rune.
func Truncate(s string, maxLen int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if len(s) <= maxLen {
		return s
	}
	cut := max(maxLen, 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
