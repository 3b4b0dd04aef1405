package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

// LineReader reads one line of user input. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
}

// REPL drives a Session from a line reader.
type REPL struct {
	session *Session
	in      LineReader
	out     io.Writer
	width   int

	model *color.Color
	note  *color.Color
	fail  *color.Color
}

// NewREPL creates a REPL writing rendered answers to out.
func NewREPL(session *Session, in LineReader, out io.Writer) *REPL {
	return &REPL{
		session: session,
		in:      in,
		out:     out,
		width:   100,
		model:   color.New(color.FgCyan, color.Bold),
		note:    color.New(color.Faint),
		fail:    color.New(color.FgRed),
	}
}

// NewReadline builds the interactive line editor used by the chat command.
func NewReadline(historyFile string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            color.New(color.FgGreen, color.Bold).Sprint("You: "),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return rl, nil
}

// Run reads prompts until exit, Ctrl+D or context cancellation. Errors from
// a single prompt are printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Welcome to the eBird MCP CLI!")
	fmt.Fprintln(r.out, "You can ask questions about birds and eBird data.")
	fmt.Fprintf(r.out, "%d tools available. Type 'exit' to quit.\n\n", len(r.session.Tools()))

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := r.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				fmt.Fprintln(r.out, "Goodbye!")
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		prompt := strings.TrimSpace(line)
		if strings.EqualFold(prompt, "exit") || strings.EqualFold(prompt, "quit") {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
		if prompt == "" {
			continue
		}

		reply, err := r.session.Send(ctx, prompt)
		if err != nil {
			r.fail.Fprintf(r.out, "Error: %v\n\n", err)
			continue
		}

		r.model.Fprintln(r.out, "Gemini:")
		fmt.Fprintf(r.out, "%s\n", markdown.Render(reply.Text, r.width, 2))
		if len(reply.ToolsUsed) > 0 {
			r.note.Fprintf(r.out, "tools: %s\n", strings.Join(reply.ToolsUsed, ", "))
		}
		fmt.Fprintln(r.out)
	}
}
