package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readEntries parses the JSON log lines written to dir/boot.log.
func readEntries(t *testing.T, dir string) []map[string]any {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("process started", "tasks", 3)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := readEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if entries[0]["msg"] != "process started" {
		t.Errorf("msg = %v, want 'process started'", entries[0]["msg"])
	}
	if entries[0]["tasks"] != float64(3) {
		t.Errorf("tasks = %v, want 3", entries[0]["tasks"])
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("suppressed")
	logger.Info("suppressed")
	logger.Warn("kept")
	logger.Close()

	entries := readEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("Expected only the WARN entry, got %d entries", len(entries))
	}
	if entries[0]["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entries[0]["level"])
	}
}

func TestLogger_ChildAttributes(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	child := logger.WithProcess("proc-1").WithTask("database")
	child.Debug("task launched")
	logger.Close()

	entries := readEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if entries[0]["process_id"] != "proc-1" {
		t.Errorf("process_id = %v, want proc-1", entries[0]["process_id"])
	}
	if entries[0]["task"] != "database" {
		t.Errorf("task = %v, want database", entries[0]["task"])
	}
}

func TestLogger_WithDoesNotAffectParent(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	_ = logger.With("wave", 2)
	logger.Info("no wave attribute")
	logger.Close()

	entries := readEntries(t, dir)
	if _, ok := entries[0]["wave"]; ok {
		t.Error("Parent logger should not carry attributes added to a child")
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	// Must not panic or write anywhere.
	logger.Debug("discarded")
	logger.Info("discarded")
	logger.WithProcess("p").WithTask("t").Error("discarded")

	if err := logger.Close(); err != nil {
		t.Errorf("Close on NopLogger should be a no-op, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRotatingWriter_RotatesAtThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LogFileName)

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer rw.Close()

	chunk := bytes.Repeat([]byte("x"), 700_000)
	if _, err := rw.Write(chunk); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := rw.Write(chunk); err != nil {
		t.Fatalf("second write: %v", err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("Expected backup %s.1 after rotation: %v", path, err)
	}
	if rw.CurrentSize() != int64(len(chunk)) {
		t.Errorf("CurrentSize = %d, want %d", rw.CurrentSize(), len(chunk))
	}
}

func TestRotatingWriter_KeepsBoundedBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LogFileName)

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer rw.Close()

	chunk := bytes.Repeat([]byte("y"), 700_000)
	for i := 0; i < 4; i++ {
		if _, err := rw.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("Expected backup %s.1: %v", path, err)
	}
	if _, err := os.Stat(path + ".2"); err == nil {
		t.Errorf("Backup %s.2 should have been dropped with MaxBackups=1", path)
	}
}

func TestRotatingWriter_DisabledRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LogFileName)

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 0})
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer rw.Close()

	chunk := bytes.Repeat([]byte("z"), 700_000)
	for i := 0; i < 3; i++ {
		if _, err := rw.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path + ".1"); err == nil {
		t.Error("Rotation should be disabled when MaxSizeMB is 0")
	}
}

func TestNewRotatingLogger_RequiresDir(t *testing.T) {
	if _, err := NewRotatingLogger("", LevelInfo, DefaultRotationConfig()); err == nil {
		t.Error("NewRotatingLogger should reject an empty directory")
	}
}
