package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "FrameMendServer.exe.config")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Expected default port 8090, got %d", cfg.Server.Port)
	}
	if cfg.Repair.Tolerance != 1e-6 {
		t.Errorf("Expected default tolerance 1e-6, got %g", cfg.Repair.Tolerance)
	}

	// The default file should have been written with the identifying header.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected config file to be created: %v", err)
	}
	if !strings.Contains(string(data), "<FrameMend>") {
		t.Error("Expected config file to contain FrameMend root element")
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FrameMendServer.exe.config")

	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	cfg.Repair.Tolerance = 1e-4
	cfg.Solver.DefaultSectionName = "IPE300"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", loaded.Server.Port)
	}
	if loaded.Repair.Tolerance != 1e-4 {
		t.Errorf("Expected tolerance 1e-4, got %g", loaded.Repair.Tolerance)
	}
	if loaded.Solver.DefaultSectionName != "IPE300" {
		t.Errorf("Expected section IPE300, got %s", loaded.Solver.DefaultSectionName)
	}

	// Relative storage paths resolve against the config directory.
	if !filepath.IsAbs(loaded.Storage.UploadsDirectory) {
		t.Errorf("Expected absolute uploads directory, got %s", loaded.Storage.UploadsDirectory)
	}
	if !strings.HasPrefix(loaded.Storage.UploadsDirectory, dir) {
		t.Errorf("Expected uploads directory under %s, got %s", dir, loaded.Storage.UploadsDirectory)
	}
}

func TestRepairOptions(t *testing.T) {
	cfg := DefaultConfig()
	tol, elevTol := cfg.RepairOptions()
	if tol != 1e-6 {
		t.Errorf("Expected tolerance 1e-6, got %g", tol)
	}
	if elevTol != 0 {
		t.Errorf("Expected derived elevation tolerance (0), got %g", elevTol)
	}

	cfg.Repair.Tolerance = -1
	tol, _ = cfg.RepairOptions()
	if tol != 1e-6 {
		t.Errorf("Expected fallback tolerance for invalid value, got %g", tol)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Storage.DataDirectory = filepath.Join(dir, "data")
	cfg.Storage.UploadsDirectory = filepath.Join(dir, "data", "uploads")
	cfg.Storage.TempDirectory = filepath.Join(dir, "data", "temp")
	cfg.Storage.RepairedDirectory = filepath.Join(dir, "data", "repaired")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("Failed to ensure directories: %v", err)
	}

	for _, d := range []string{"uploads", "temp", "repaired"} {
		if _, err := os.Stat(filepath.Join(dir, "data", d)); err != nil {
			t.Errorf("Expected %s directory to exist: %v", d, err)
		}
	}
}
