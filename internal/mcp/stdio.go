package mcp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

const maxLineSize = 1024 * 1024

// ServeStdio reads line-delimited JSON-RPC messages from r and writes one
// response line per request to w. It returns when r is exhausted or ctx is
// done.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	s.log.Info().Msg("listening for requests on stdin")

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.HandleMessage(ctx, line)
		if resp == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", resp); err != nil {
			return fmt.Errorf("mcp: write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("mcp: read stdin: %w", err)
	}
	s.log.Info().Msg("stdin closed, shutting down")
	return nil
}
