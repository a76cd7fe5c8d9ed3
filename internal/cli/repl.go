package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

const replPrompt = "nodefs> "

func (a *app) replCmd() *Command {
	return &Command{
		Flags:       flag.NewFlagSet("repl", flag.ContinueOnError),
		Usage:       "repl",
		Short:       "Run commands interactively against one FS",
		Args:        ExactArgs(0),
		Interactive: true,
		Long: `Read commands line by line and run them against a single FS instance.
On a terminal the prompt has line editing, tab completion and history
(~/.nodefs_history).

Builtins: help, exit.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			r := a.lineReader()
			defer r.Close()

			// Commands must not consume the shell's own input.
			in := a.in
			a.in = nil

			defer func() { a.in = in }()

			return a.repl(ctx, o, r)
		},
	}
}

// lineReader reads one command line per call and returns io.EOF at the end
// of input.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

func (a *app) lineReader() lineReader {
	if f, ok := a.in.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		return a.newTerminal()
	}

	if a.in == nil {
		return scanReader{bufio.NewScanner(strings.NewReader(""))}
	}

	return scanReader{bufio.NewScanner(a.in)}
}

func (a *app) repl(ctx context.Context, o *IO, r lineReader) error {
	for ctx.Err() == nil {
		line, err := r.Prompt(replPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if h, ok := r.(historian); ok {
			h.AppendHistory(line)
		}

		switch fields[0] {
		case "exit", "quit":
			return nil
		case "help":
			for _, c := range a.shellCommands() {
				o.Println(c.HelpLine())
			}

			continue
		}

		cmd := a.shellCommand(fields[0])
		if cmd == nil {
			o.ErrPrintln("error: unknown command:", fields[0])

			continue
		}

		cmd.Run(ctx, o, fields[1:])
	}

	return nil
}

// shellCommands returns a fresh set of the commands the shell offers.
func (a *app) shellCommands() []*Command {
	var out []*Command

	for _, c := range a.commands() {
		if !c.Interactive {
			out = append(out, c)
		}
	}

	return out
}

func (a *app) shellCommand(name string) *Command {
	for _, c := range a.shellCommands() {
		if c.Matches(name) {
			return c
		}
	}

	return nil
}

type scanReader struct {
	s *bufio.Scanner
}

func (r scanReader) Prompt(string) (string, error) {
	if r.s.Scan() {
		return r.s.Text(), nil
	}

	if err := r.s.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (scanReader) Close() error { return nil }

type historian interface {
	AppendHistory(item string)
}

// terminal is the interactive reader with editing and persistent history.
type terminal struct {
	*liner.State

	history string
}

func (a *app) newTerminal() *terminal {
	t := &terminal{State: liner.NewLiner()}
	t.SetCtrlCAborts(true)
	t.SetCompleter(func(line string) []string {
		var matches []string

		for _, c := range a.shellCommands() {
			if strings.HasPrefix(c.Name(), line) {
				matches = append(matches, c.Name()+" ")
			}
		}

		return matches
	})

	if home := a.env["HOME"]; home != "" {
		t.history = filepath.Join(home, ".nodefs_history")

		if f, err := os.Open(t.history); err == nil {
			_, _ = t.ReadHistory(f)
			_ = f.Close()
		}
	}

	return t
}

func (t *terminal) Close() error {
	if t.history != "" {
		if f, err := os.Create(t.history); err == nil {
			_, _ = t.WriteHistory(f)
			_ = f.Close()
		}
	}

	return t.State.Close()
}
