package termtext_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-theft-auto/termtext"
)

func TestNewFileLogger(t *testing.T) {
	dir := t.TempDir()
	l, err := termtext.NewFileLogger(dir, "warn")
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hidden")
	l.Warn("atlas full", "pages", 4)

	data, err := os.ReadFile(filepath.Join(dir, "termtext.slog"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, `"msg":"atlas full"`) || !strings.Contains(out, `"pages":4`) {
		t.Errorf("log = %q, want JSON warn record", out)
	}
}

func TestNewFileLoggerBadLevel(t *testing.T) {
	if _, err := termtext.NewFileLogger(t.TempDir(), "loud"); err == nil {
		t.Error("NewFileLogger accepted an invalid level")
	}
}

func TestSetLoggerNilRestoresDefault(t *testing.T) {
	h := &countingHandler{}
	termtext.SetLogger(slog.New(h))
	t.Cleanup(func() { termtext.SetLogger(nil) })
	if !termtext.Logger().Enabled(t.Context(), slog.LevelDebug) {
		t.Fatal("installed logger not used")
	}

	termtext.SetLogger(nil)
	if termtext.Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger is enabled")
	}
	termtext.Logger().Error("text renderer: cell skipped")
	if h.n.Load() != 0 {
		t.Error("record reached the replaced logger")
	}
}
