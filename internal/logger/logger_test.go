package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsDebugMode(t *testing.T) {
	if !isDebugMode(" Debug ") {
		t.Fatalf("mixed-case debug should be recognized")
	}
	if isDebugMode("release") || isDebugMode("") {
		t.Fatalf("release/empty mode should not be debug")
	}
}

func TestResolveLogFilePathDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}

	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("unexpected log dir: %s", filepath.Dir(got))
	}
	if _, err := os.Stat(filepath.Dir(got)); err != nil {
		t.Fatalf("expected log dir to be created: %v", err)
	}
}

func TestNewReleaseWritesToConfiguredFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{
		Dir:      tmpDir,
		Filename: "station.log",
	})
	log.Info("scan_station_boot")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "station.log"))
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	if !strings.Contains(string(content), "scan_station_boot") {
		t.Fatalf("expected log content to contain message, got=%s", string(content))
	}
}

func TestNewDebugDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{
		Dir:      tmpDir,
		Filename: "station.log",
	})
	log.Info("scan_station_boot")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "station.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}
