// Package cli implements the nodefs command line: file commands that run
// through the nodefs API, plus watch, poll and an interactive shell.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/nodefs/internal/config"
	"github.com/calvinalkan/nodefs/pkg/fs"
	"github.com/calvinalkan/nodefs/pkg/nodefs"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal on it cancels the running command; watch and
// poll treat that as a normal exit.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("nodefs", flag.ContinueOnError)
	globals.SetOutput(io.Discard)
	globals.SetInterspersed(false)

	cwd := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	verbose := globals.BoolP("verbose", "v", false, "Log provider calls and chaos faults to stderr")
	encoding := globals.StringP("encoding", "e", "", "Default text `encoding` for cat and write")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	if err := globals.Parse(args); err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalFlags(errOut, globals)

		return 1
	}

	a := &app{in: in, env: env}
	commands := a.commands()
	rest := globals.Args()

	if *help || len(rest) == 0 {
		printUsage(out, globals, commands)

		return 0
	}

	var cmd *Command

	for _, c := range commands {
		if c.Matches(rest[0]) {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", rest[0])
		fprintln(errOut)
		printUsage(errOut, globals, commands)

		return 1
	}

	overrides := config.Overrides{Encoding: *encoding}
	if *verbose {
		overrides.LogLevel = logrus.DebugLevel.String()
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: *cwd,
		ConfigPath:      *configPath,
		Overrides:       overrides,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalFlags(errOut, globals)

		return 1
	}

	o := NewIO(out, errOut)

	a.open(cfg, o)
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if code := cmd.Run(ctx, o, rest[1:]); code != 0 {
		return code
	}

	return o.Finish()
}

// app is the state shared by the commands of one invocation.
type app struct {
	in  io.Reader
	env map[string]string

	cfg   config.Config
	log   *logrus.Logger
	fs    *nodefs.FS
	chaos *fs.Chaos
}

func (a *app) open(cfg config.Config, o *IO) {
	a.cfg = cfg

	a.log = logrus.New()
	a.log.SetOutput(o.ErrWriter())
	a.log.SetLevel(cfg.Level())
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	var provider fs.Provider = fs.NewReal(fs.RealOptions{AtomicWrites: cfg.AtomicWrites})

	if cfg.Chaos != nil {
		a.chaos = fs.NewChaos(provider, cfg.Chaos.Seed, cfg.Chaos.FSChaos())
		provider = a.chaos

		a.log.WithField("seed", cfg.Chaos.Seed).Debug("fault injection enabled")
	}

	a.fs = nodefs.New(provider, nodefs.Options{
		Logger:        a.log,
		PollInterval:  cfg.PollInterval(),
		HighWaterMark: cfg.HighWaterMark,
	})
}

func (a *app) close() {
	a.fs.Shutdown()

	if a.chaos == nil {
		return
	}

	entry := a.log.WithField("faults", a.chaos.TotalFaults())
	if a.log.IsLevelEnabled(logrus.DebugLevel) {
		if trace := a.chaos.Trace(); trace != "" {
			entry = entry.WithField("trace", trace)
		}
	}

	entry.Debug("fault injection summary")
}

// path resolves p against the effective working directory.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(a.cfg.EffectiveCwd, p)
}

// encoding returns the configured text encoding, or "" for raw bytes.
func (a *app) encoding() string {
	if a.cfg.Encoding == "buffer" {
		return ""
	}

	return a.cfg.Encoding
}

// commands builds a fresh command set. FlagSets keep parsed values, so
// every run needs its own.
func (a *app) commands() []*Command {
	return []*Command{
		a.catCmd(),
		a.writeCmd(),
		a.appendCmd(),
		a.statCmd(),
		a.lsCmd(),
		a.mkdirCmd(),
		a.rmCmd(),
		a.cpCmd(),
		a.mvCmd(),
		a.lnCmd(),
		a.realpathCmd(),
		a.truncateCmd(),
		a.touchCmd(),
		a.mktempCmd(),
		a.watchCmd(),
		a.pollCmd(),
		a.replCmd(),
		a.printConfigCmd(),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalFlags(w io.Writer, globals *flag.FlagSet) {
	fprintln(w, "Global flags:")

	var buf strings.Builder
	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(io.Discard)

	_, _ = io.WriteString(w, buf.String())
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, "nodefs - Node.js fs API over the host filesystem")
	fprintln(w)
	fprintln(w, "Usage: nodefs [flags] <command> [args]")
	fprintln(w)
	printGlobalFlags(w, globals)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}
