package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"  two\nlines  ", 20, "two lines"},
		{"abcdefghij", 4, "abcd..."},
		// "é" is two bytes; cutting at byte 2 would split it.
		{"aébc", 2, "a..."},
		{"日本語のエラー", 7, "日本..."},
		{"anything", 0, "..."},
	}
	for _, tt := range tests {
		got := Truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
		}
	}
}

func TestDebugGate(t *testing.T) {
	t.Setenv("DEBUG", "")
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
		SetDebug(false)
	})
	log.SetOutput(&buf)

	SetDebug(false)
	Debug("storage", "hidden %d", 1)
	Info("storage", "shown %d", 2)
	if got := buf.String(); got != "[storage] shown 2\n" {
		t.Errorf("output = %q", got)
	}

	buf.Reset()
	SetDebug(true)
	if !DebugEnabled() {
		t.Fatal("debug not enabled")
	}
	Debug("app", "now %s", "visible")
	if !strings.Contains(buf.String(), "[app] now visible") {
		t.Errorf("output = %q", buf.String())
	}
}
