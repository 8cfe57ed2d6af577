package version

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPackageInfo(t *testing.T) {
	info := GetPackageInfo()

	assert.NotEmpty(t, info.PackageName)
	assert.Equal(t, RepoUrl, info.RepoUrl)
	assert.NotEmpty(t, info.PackageVersion)
	assert.NotEmpty(t, info.PackageCommit)
	assert.NotEmpty(t, info.PackageReleaseDate)

	assert.Equal(t, "redjax", info.RepoUser)
	assert.Equal(t, "notedeck", info.RepoName)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestGetVersionString(t *testing.T) {
	versionStr := GetVersionString()

	for _, part := range []string{"notedeck", "version:", "commit:", "date:"} {
		assert.Contains(t, versionStr, part)
	}
}

func TestGetShortVersion(t *testing.T) {
	assert.NotEmpty(t, GetShortVersion())
	assert.Contains(t, GetVersionString(), "version:"+GetShortVersion())
}

func TestReleaseVersionWins(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.4.0"
	assert.Equal(t, "v1.4.0", GetShortVersion())
}

func TestParseRepoUrl(t *testing.T) {
	old := RepoUrl
	t.Cleanup(func() { RepoUrl = old })

	user, repo := parseRepoUrl()
	assert.Equal(t, "redjax", user)
	assert.Equal(t, "notedeck", repo)

	RepoUrl = "https://github.com/"
	user, repo = parseRepoUrl()
	assert.Equal(t, "<unknown>", user)
	assert.Equal(t, "<unknown>", repo)
}

func TestVersionCommandShort(t *testing.T) {
	var out bytes.Buffer
	cmd := NewVersionCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, GetShortVersion()+"\n", out.String())
}

func TestInfoTable(t *testing.T) {
	tbl := InfoTable(PackageInfo{PackageName: "nd", RepoUser: "redjax", RepoName: "notedeck", PackageVersion: "v1.0.0"})

	s := tbl.String()
	assert.Contains(t, s, "nd")
	assert.Contains(t, s, "v1.0.0")
	assert.NotContains(t, s, "Platform:")

	tbl = InfoTable(PackageInfo{PackageName: "nd", GoVersion: "go1.25.3", Platform: "linux/amd64"})
	assert.Contains(t, tbl.String(), "linux/amd64")
}
