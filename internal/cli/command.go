package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one nodefs subcommand.
type Command struct {
	// Flags holds the command's own flags. Its name is ignored.
	Flags *flag.FlagSet

	// Usage follows "nodefs" in help output. Its first word is the
	// command name, e.g. "cp [-n] <src> <dest>".
	Usage string

	// Aliases are extra names, usually the Node function the command wraps.
	Aliases []string

	// Short is the line shown in the command listing. Long, when set,
	// replaces it in "nodefs <cmd> --help".
	Short string
	Long  string

	// Args validates the positional arguments before Exec. Nil accepts any.
	Args PositionalArgs

	// Interactive commands own stdin and are not offered inside the repl.
	Interactive bool

	Exec func(ctx context.Context, o *IO, args []string) error
}

// PositionalArgs checks the arguments left after flag parsing.
type PositionalArgs func(args []string) error

var errUsage = errors.New("wrong number of arguments")

// ExactArgs accepts exactly n arguments.
func ExactArgs(n int) PositionalArgs {
	return func(args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: want %d, got %d", errUsage, n, len(args))
		}

		return nil
	}
}

// MinimumArgs accepts n or more arguments.
func MinimumArgs(n int) PositionalArgs {
	return func(args []string) error {
		if len(args) < n {
			return fmt.Errorf("%w: want at least %d, got %d", errUsage, n, len(args))
		}

		return nil
	}
}

// MaximumArgs accepts up to n arguments.
func MaximumArgs(n int) PositionalArgs {
	return func(args []string) error {
		if len(args) > n {
			return fmt.Errorf("%w: want at most %d, got %d", errUsage, n, len(args))
		}

		return nil
	}
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// Matches reports whether name is the command's name or one of its aliases.
func (c *Command) Matches(name string) bool {
	return c.Name() == name || slices.Contains(c.Aliases, name)
}

// HelpLine is the command's row in the listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-32s %s", c.Usage, c.Short)
}

// PrintHelp writes "nodefs <cmd> --help" output to stdout.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: nodefs", c.Usage)

	if len(c.Aliases) > 0 {
		o.Println("Aliases:", strings.Join(c.Aliases, ", "))
	}

	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags == nil || !c.Flags.HasFlags() {
		return
	}

	var buf strings.Builder

	c.Flags.SetOutput(&buf)
	c.Flags.PrintDefaults()

	o.Println()
	o.Println("Flags:")
	o.Printf("%s", buf.String())
}

// Run parses args, validates them and calls Exec. It prints its own
// errors and returns the exit code.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	var discard strings.Builder

	c.Flags.SetOutput(&discard)

	switch err := c.Flags.Parse(args); {
	case errors.Is(err, flag.ErrHelp):
		c.PrintHelp(o)

		return 0
	case err != nil:
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)

		return 1
	}

	rest := c.Flags.Args()

	if c.Args != nil {
		if err := c.Args(rest); err != nil {
			o.ErrPrintln("error:", err)
			o.ErrPrintln("usage: nodefs", c.Usage)

			return 1
		}
	}

	if err := c.Exec(ctx, o, rest); err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return 0
}
