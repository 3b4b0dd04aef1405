package main

import (
	"fmt"
	"os"

	"github.com/soyeahso/ebirdmcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ebird-mcp:", err)
		os.Exit(1)
	}
}
