package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/pslog"
)

func TestWithTabAddsFields(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	log := WithTab(WithWindow(logger, 3), 42)
	log.Info("hello")

	entry := capture.firstEntry(t)
	if fmt.Sprint(entry["window"]) != "3" {
		t.Fatalf("expected window field, got %+v", entry)
	}
	if fmt.Sprint(entry["tab"]) != "42" {
		t.Fatalf("expected tab field, got %+v", entry)
	}
}

func TestWithSourceSkipsEmpty(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	WithSource(logger, "").Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["source"]; ok {
		t.Fatalf("did not expect source field, got %+v", entry)
	}
}

func TestWithLevel(t *testing.T) {
	for _, name := range []string{"", "info", "DEBUG", " trace ", "error"} {
		if _, err := WithLevel(pslog.Options{}, name); err != nil {
			t.Fatalf("level %q: %v", name, err)
		}
	}
	if _, err := WithLevel(pslog.Options{}, "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWritesToStateDir(t *testing.T) {
	dir := t.TempDir()
	logger, closer, err := New(Options{Level: "debug", Dir: dir})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("panel started", "tabs", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !bytes.Contains(data, []byte("panel started")) {
		t.Fatalf("expected message in log file, got %q", data)
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
