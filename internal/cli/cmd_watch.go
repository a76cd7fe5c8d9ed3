package cli

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/calvinalkan/nodefs/pkg/nodefs"
)

func (a *app) watchCmd() *Command {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)
	count := flags.IntP("count", "n", 0, "Stop each watcher after N events (0 = until interrupted)")
	timeout := flags.Duration("timeout", 0, "Stop after this long (0 = no limit)")

	return &Command{
		Flags: flags,
		Usage: "watch [-n N] <path>...",
		Short: "Print change events for files or directories",
		Args:  MinimumArgs(1),
		Long: `Watch each path for changes and print one line per event:

  <event>	<path>	<filename>

event is "rename" when an entry appeared or disappeared and "change" when
its contents changed. Runs until interrupted, --count or --timeout.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if *timeout > 0 {
				var cancel context.CancelFunc

				ctx, cancel = context.WithTimeout(ctx, *timeout)
				defer cancel()
			}

			g, gctx := errgroup.WithContext(ctx)

			for _, p := range args {
				g.Go(func() error { return a.watch(gctx, o, p, *count) })
			}

			return g.Wait()
		},
	}
}

// watch runs one watcher until it saw count events, failed or ctx ended.
func (a *app) watch(ctx context.Context, o *IO, name string, count int) error {
	done := make(chan error, 1)
	report := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	seen := 0 // loop-only

	w, err := a.fs.Watch(a.path(name), func(event, filename string) {
		o.Printf("%s\t%s\t%s\n", event, name, filename)

		seen++
		if count > 0 && seen >= count {
			report(nil)
		}
	})
	if err != nil {
		return err
	}

	defer w.Close()

	w.OnError(report)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (a *app) pollCmd() *Command {
	flags := flag.NewFlagSet("poll", flag.ContinueOnError)
	interval := flags.DurationP("interval", "i", 0, "Poll interval (default from config)")
	count := flags.IntP("count", "n", 0, "Stop after N changes in total (0 = until interrupted)")
	timeout := flags.Duration("timeout", 0, "Stop after this long (0 = no limit)")

	return &Command{
		Flags:   flags,
		Usage:   "poll [-i DUR] [-n N] <path>...",
		Aliases: []string{"watchfile"},
		Short:   "Poll files with stat and print modification changes",
		Args:    MinimumArgs(1),
		Long: `Poll each path with stat at a fixed interval and print a line whenever
its modification time changes. A path that vanishes prints as removed.
Unlike watch this works on any filesystem, including network mounts.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if *timeout > 0 {
				var cancel context.CancelFunc

				ctx, cancel = context.WithTimeout(ctx, *timeout)
				defer cancel()
			}

			return a.poll(ctx, o, args, nodefs.WatchFileOptions{Interval: *interval}, *count)
		},
	}
}

func (a *app) poll(ctx context.Context, o *IO, names []string, opts nodefs.WatchFileOptions, count int) error {
	reached := make(chan struct{})
	seen := 0 // loop-only

	for _, name := range names {
		_, err := a.fs.WatchFile(a.path(name), opts, func(curr, prev *nodefs.Stats) {
			if seen == count && count > 0 {
				return
			}

			if curr.MtimeMs == 0 && curr.Size == 0 && curr.Ino == 0 {
				o.Printf("removed\t%s\n", name)
			} else {
				o.Printf("change\t%s\t%s\t%s\n", name, humanize.Bytes(uint64(max(curr.Size, 0))), curr.Mtime.UTC().Format(time.RFC3339Nano))
			}

			seen++
			if seen == count {
				close(reached)
			}
		})
		if err != nil {
			return err
		}

		defer func() { _ = a.fs.UnwatchFile(a.path(name)) }()
	}

	select {
	case <-reached:
	case <-ctx.Done():
	}

	return nil
}
