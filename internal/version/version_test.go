package version

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestLinkerVersionWins(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v9.9.9"
	if got := GetVersion(); got != "v9.9.9" {
		t.Errorf("GetVersion() = %q", got)
	}
	if !strings.HasPrefix(GetDetailedVersion(), "chatmd v9.9.9 ") {
		t.Errorf("GetDetailedVersion() = %q", GetDetailedVersion())
	}

	var info Info
	if err := json.Unmarshal([]byte(GetJSONVersion()), &info); err != nil {
		t.Fatalf("GetJSONVersion() is not JSON: %v", err)
	}
	if info.Version != "v9.9.9" || info.GoVersion == "" {
		t.Errorf("info = %+v", info)
	}
}

func TestFallbackVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = ""
	if GetVersion() == "" {
		t.Error("GetVersion() should never be empty")
	}
}
