package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	specs := map[string]Level{
		"debug":   Debug,
		"INFO":    Info,
		"notice":  Notice,
		"warn":    Warning,
		"warning": Warning,
		"error":   Error,
	}
	for name, exp := range specs {
		level, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("[%s] unexpected error: %v", name, err)
		}
		if level != exp {
			t.Fatalf("[%s] expected level %d; got %d", name, exp, level)
		}
	}

	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	SetLevel(Notice)
	defer SetSink(os.Stdout)

	logger := New("level test")
	logger.Info("hidden message")
	logger.Notice("visible message")
	if strings.Contains(buf.String(), "hidden message") {
		t.Fatal("expected info message to be filtered at notice level")
	}
	if !strings.Contains(buf.String(), "visible message") || !strings.Contains(buf.String(), "[level test]") {
		t.Fatalf("expected output to contain the notice message and the logger name; got %q", buf.String())
	}

	// Module overrides only affect the named logger
	buf.Reset()
	SetModuleLevel("verbose module", Debug)
	New("verbose module").Debug("module debug message")
	logger.Debug("global debug message")
	if !strings.Contains(buf.String(), "module debug message") {
		t.Fatalf("expected module override to enable debug messages; got %q", buf.String())
	}
	if strings.Contains(buf.String(), "global debug message") {
		t.Fatal("expected other loggers to keep the global level")
	}
}
