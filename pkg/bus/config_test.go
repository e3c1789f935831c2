// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package bus

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opnpool.yaml")
	content := "port: /dev/ttyUSB0\npoll_interval_ms: 60000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != "/dev/ttyUSB0" {
		t.Errorf("port mismatch: %q", cfg.Port)
	}
	if cfg.PollIntervalMs != 60000 {
		t.Errorf("poll interval mismatch: %d", cfg.PollIntervalMs)
	}
	// unset fields fall back to defaults
	if cfg.Baud != 9600 || cfg.TickMs != 100 || cfg.ToBusCapacity != 6 || cfg.ToIntegrationCapacity != 10 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/opnpool.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
