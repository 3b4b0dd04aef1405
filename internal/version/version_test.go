package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.Contains(t, info, "ebird-mcp "+Version)
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestInfoTruncatesCommit(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })

	Version = "0.3.0"
	Commit = "9f8e7d6c5b4a"
	Date = "2026-04-30"

	info := Info()
	assert.Contains(t, info, "commit: 9f8e7d6,")
	assert.NotContains(t, info, "9f8e7d6c5b4a")
	assert.Contains(t, info, "built: 2026-04-30")
	assert.Equal(t, "ebird-mcp/0.3.0", UserAgent())
}

func TestShort(t *testing.T) {
	for in, want := range map[string]string{
		"":         "",
		"abc":      "abc",
		"1234567":  "1234567",
		"12345678": "1234567",
	} {
		assert.Equal(t, want, short(in), in)
	}
}
