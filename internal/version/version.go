package version

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	RepoUrl = "https://github.com/redjax/notedeck"
)

type PackageInfo struct {
	PackageName        string
	RepoUrl            string
	RepoUser           string
	RepoName           string
	PackageVersion     string
	PackageCommit      string
	PackageReleaseDate string
	GoVersion          string
	Platform           string
}

// build is the version triple after falling back to the module build info.
type build struct {
	version string
	commit  string
	date    string
}

// currentBuild fills whatever ldflags left at its default from the build info
// the toolchain embeds. `go install` builds carry the module version there and
// local builds carry the VCS revision and commit time.
func currentBuild() build {
	b := build{version: Version, commit: Commit, date: Date}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}

	if b.version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && b.commit == "none" && s.Value != "":
			b.commit = s.Value[:min(len(s.Value), 12)]
		case s.Key == "vcs.time" && b.date == "unknown" && s.Value != "":
			b.date = s.Value
		}
	}
	return b
}

// GetPackageInfo describes the running binary.
func GetPackageInfo() PackageInfo {
	binName := "<unknown>"
	if exePath, err := os.Executable(); err == nil {
		binName = filepath.Base(exePath)
	}

	repoUser, repoName := parseRepoUrl()
	b := currentBuild()

	return PackageInfo{
		PackageName:        binName,
		RepoUrl:            RepoUrl,
		RepoUser:           repoUser,
		RepoName:           repoName,
		PackageVersion:     b.version,
		PackageCommit:      b.commit,
		PackageReleaseDate: b.date,
		GoVersion:          runtime.Version(),
		Platform:           runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// parseRepoUrl splits RepoUrl into owner and repository name.
func parseRepoUrl() (user, repo string) {
	u, err := url.Parse(RepoUrl)
	if err != nil {
		return "<unknown>", "<unknown>"
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] != "" {
		return parts[0], parts[1]
	}
	return "<unknown>", "<unknown>"
}

// GetVersionString returns a formatted version string
func GetVersionString() string {
	b := currentBuild()
	return fmt.Sprintf("notedeck version:%s commit:%s date:%s", b.version, b.commit, b.date)
}

// GetShortVersion returns just the version number
func GetShortVersion() string {
	return currentBuild().version
}
