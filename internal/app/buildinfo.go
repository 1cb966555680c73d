package app

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

var (
	// Version is filled by ldflags in release builds.
	Version = ""
	// Commit is filled by ldflags in release builds.
	Commit = ""
	// BuildDate is filled by ldflags in release builds, RFC 3339 or YYYY-MM-DD.
	BuildDate = ""
)

const shortCommitLen = 12

// BuildVersion falls back to the module version stamped by `go install`
// and then to "dev".
func BuildVersion() string {
	if version := strings.TrimSpace(Version); version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if version := info.Main.Version; version != "" && version != "(devel)" {
			return version
		}
	}

	return "dev"
}

// BuildCommit returns the short revision from ldflags or the VCS stamp.
func BuildCommit() string {
	commit := strings.TrimSpace(Commit)
	if commit == "" {
		commit = vcsSetting("vcs.revision")
	}
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}

	return commit
}

func BuildDateYMD() string {
	raw := strings.TrimSpace(BuildDate)
	if raw == "" {
		raw = vcsSetting("vcs.time")
	}
	if raw == "" {
		return ""
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.Format(time.DateOnly)
	}
	if len(raw) >= len(time.DateOnly) {
		if parsed, err := time.Parse(time.DateOnly, raw[:len(time.DateOnly)]); err == nil {
			return parsed.Format(time.DateOnly)
		}
	}

	return raw
}

// BuildVersionWithDate renders the version line shown in the config tab and
// by `brewctl --version`.
func BuildVersionWithDate() string {
	version := BuildVersion()
	details := make([]string, 0, 2)
	if date := BuildDateYMD(); date != "" {
		details = append(details, date)
	}
	if commit := BuildCommit(); commit != "" {
		details = append(details, commit)
	}
	if len(details) == 0 {
		return version
	}

	return fmt.Sprintf("%s (%s)", version, strings.Join(details, ", "))
}

// UserAgent identifies the dashboard in requests to the controller.
func UserAgent() string {
	return Name + "/" + BuildVersion()
}

func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return strings.TrimSpace(setting.Value)
		}
	}

	return ""
}
