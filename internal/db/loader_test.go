package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLatestOutputFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"comprehensive_nepal_offices_20250101_100000.json",
		"comprehensive_nepal_offices_20250301_100000.json",
		"comprehensive_nepal_offices_20250201_100000.json",
		"unrelated.json",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := LatestOutputFile(dir)
	if err != nil {
		t.Fatalf("LatestOutputFile: %v", err)
	}
	if filepath.Base(got) != "comprehensive_nepal_offices_20250301_100000.json" {
		t.Errorf("expected newest timestamped file, got %s", got)
	}
}

func TestLatestOutputFileEmptyDir(t *testing.T) {
	if _, err := LatestOutputFile(t.TempDir()); err == nil {
		t.Error("expected error for directory without output files")
	}
}
