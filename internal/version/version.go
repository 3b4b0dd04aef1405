package version

import (
	"fmt"
	"runtime"
)

// Name is the binary and MCP server name.
const Name = "ebird-mcp"

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/ebirdmcp/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/ebirdmcp/internal/version.Commit=abc123
//	  -X github.com/soyeahso/ebirdmcp/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s/%s)",
		Name, Version, short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent on outbound eBird requests.
func UserAgent() string {
	return Name + "/" + Version
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
