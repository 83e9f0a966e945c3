package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tesh254/chatmd/internal/config"
)

func TestExportOptionsFollowConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Labels = config.Labels{User: "Me", Assistant: "Bot"}
	cfg.Numbering = false

	opts := exportOptions(cfg)
	if diff := cmp.Diff(map[string]string{"user": "Me", "assistant": "Bot"}, opts.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if opts.Numbering {
		t.Error("numbering should follow config")
	}
}

func TestRegistryMergesPlatformsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platforms.yaml")
	custom := "platforms:\n  - name: poe\n    hosts: [poe.com]\n    messages:\n      - selector: \".Message_row\"\n        role: assistant\n"
	if err := os.WriteFile(path, []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.PlatformsFile = path

	reg, err := registry(cfg)
	if err != nil {
		t.Fatalf("registry() error: %v", err)
	}
	if _, err := reg.Get("poe"); err != nil {
		t.Errorf("custom platform missing: %v", err)
	}
	if _, err := reg.Get("chatgpt"); err != nil {
		t.Errorf("builtin platform missing: %v", err)
	}

	cfg.PlatformsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := registry(cfg); err == nil {
		t.Error("expected error for missing platforms file")
	}
}
