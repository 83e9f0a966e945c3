// Package version reports the build version of the binary.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is set at build time with -ldflags "-X github.com/tesh254/chatmd/internal/version.Version=v1.2.3".
var Version = ""

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Modified  bool   `json:"modified"`
}

// GetBuildInfo collects version details from the linker flags and the
// module build information.
func GetBuildInfo() Info {
	info := Info{
		Version:   Version,
		GitCommit: "unknown",
		BuildDate: "unknown",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.GitCommit = s.Value
			case "vcs.time":
				info.BuildDate = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if info.Version == "" {
		info.Version = "(devel)"
	}
	return info
}

// GetVersion returns the version string.
func GetVersion() string {
	return GetBuildInfo().Version
}

func GetShortVersion() string {
	return GetVersion()
}

func GetDetailedVersion() string {
	info := GetBuildInfo()
	commit := info.GitCommit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("chatmd %s (commit %s, built %s, %s %s)", info.Version, commit, info.BuildDate, info.GoVersion, info.Platform)
}

func GetJSONVersion() string {
	data, err := json.MarshalIndent(GetBuildInfo(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
