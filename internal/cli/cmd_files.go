package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/nodefs/pkg/nodefs"
)

var errNoInput = errors.New("no input: pass text arguments or pipe data on stdin")

func (a *app) catCmd() *Command {
	flags := flag.NewFlagSet("cat", flag.ContinueOnError)
	start := flags.Int64("start", -1, "First byte to read")
	end := flags.Int64("end", -1, "Last byte to read, inclusive")
	hwm := flags.Int("chunk", 0, "Chunk size in bytes (default from config)")

	return &Command{
		Flags: flags,
		Usage: "cat [--start N] [--end N] <path>...",
		Short: "Stream files to stdout",
		Args:  MinimumArgs(1),
		Long: `Stream each file to stdout through a read stream.

--start and --end select an inclusive byte range. With --encoding the bytes
are decoded before printing; multi-byte characters are never split.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			opts := nodefs.ReadStreamOptions{Encoding: a.encoding(), HighWaterMark: *hwm}
			if *start >= 0 {
				opts.Start = start
			}

			if *end >= 0 {
				opts.End = end
			}

			for _, p := range args {
				if err := a.cat(ctx, o, a.path(p), opts); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func (a *app) cat(ctx context.Context, o *IO, path string, opts nodefs.ReadStreamOptions) error {
	rs, err := a.fs.CreateReadStream(path, opts)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	report := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	rs.OnError(report)
	rs.OnClose(func() { report(nil) })

	if opts.Encoding != "" {
		rs.OnText(func(text string) { o.Printf("%s", text) })
	} else {
		rs.OnData(func(chunk []byte) { _, _ = o.Write(chunk) })
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = rs.Close()

		return ctx.Err()
	}
}

func (a *app) writeCmd() *Command {
	flags := flag.NewFlagSet("write", flag.ContinueOnError)
	fileFlag := flags.String("flag", "w", "Open flag (w, wx, a, r+, ...)")
	mode := flags.String("mode", "0666", "File mode for created files, octal")
	stream := flags.Bool("stream", false, "Copy stdin through a write stream")
	start := flags.Int64("start", -1, "With --stream, write at this offset")

	return &Command{
		Flags:   flags,
		Usage:   "write [--flag F] [--stream] <path> [text...]",
		Aliases: []string{"writefile"},
		Short:   "Write text or stdin to a file",
		Args:    MinimumArgs(1),
		Long: `Replace the contents of a file.

Text arguments are joined with spaces and encoded with --encoding. Without
text, stdin is copied as raw bytes. --stream copies stdin chunk by chunk
through a write stream instead of buffering it.`,
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			perm, err := parseMode(*mode)
			if err != nil {
				return err
			}

			path := a.path(args[0])

			if *stream {
				opts := nodefs.WriteStreamOptions{Flags: *fileFlag, Mode: perm, Encoding: a.encoding()}
				if *start >= 0 {
					opts.Start = start
				}

				return a.streamWrite(ctx, path, opts)
			}

			data, err := a.payload(args[1:])
			if err != nil {
				return err
			}

			return a.fs.WriteFileSync(path, data, nodefs.WriteFileOptions{
				Encoding: a.encoding(),
				Flag:     *fileFlag,
				Mode:     perm,
			})
		},
	}
}

func (a *app) appendCmd() *Command {
	flags := flag.NewFlagSet("append", flag.ContinueOnError)

	return &Command{
		Flags:   flags,
		Usage:   "append <path> [text...]",
		Aliases: []string{"appendfile"},
		Short:   "Append text or stdin to a file",
		Args:    MinimumArgs(1),
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			data, err := a.payload(args[1:])
			if err != nil {
				return err
			}

			done := make(chan error, 1)

			err = a.fs.AppendFile(a.path(args[0]), data, nodefs.WriteFileOptions{Encoding: a.encoding()},
				func(err error) { done <- err })
			if err != nil {
				return err
			}

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// payload returns the text arguments as a string, or stdin as bytes.
func (a *app) payload(text []string) (any, error) {
	if len(text) > 0 {
		return strings.Join(text, " "), nil
	}

	if a.in == nil {
		return nil, errNoInput
	}

	data, err := io.ReadAll(a.in)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}

	return data, nil
}

func (a *app) streamWrite(ctx context.Context, path string, opts nodefs.WriteStreamOptions) error {
	if a.in == nil {
		return errNoInput
	}

	ws, err := a.fs.CreateWriteStream(path, opts)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	report := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	ws.OnError(report)
	ws.OnClose(func() { report(nil) })

	buf := make([]byte, a.cfg.HighWaterMark)

	for {
		n, rerr := a.in.Read(buf)
		if n > 0 {
			if err := ws.Write(bytes.Clone(buf[:n])); err != nil {
				_ = ws.Close()

				return err
			}
		}

		if errors.Is(rerr, io.EOF) {
			break
		}

		if rerr != nil {
			_ = ws.Close()

			return fmt.Errorf("reading stdin: %w", rerr)
		}
	}

	if err := ws.End(); err != nil {
		return err
	}

	select {
	case err := <-done:
		if err != nil {
			return err
		}

		a.log.WithField("bytes", ws.BytesWritten()).Debug("write stream finished")

		return nil
	case <-ctx.Done():
		_ = ws.Close()

		return ctx.Err()
	}
}

func (a *app) truncateCmd() *Command {
	flags := flag.NewFlagSet("truncate", flag.ContinueOnError)
	size := flags.Int64P("size", "s", 0, "New length in bytes")

	return &Command{
		Flags: flags,
		Usage: "truncate [-s N] <path>...",
		Short: "Shrink or extend files to a length",
		Args:  MinimumArgs(1),
		Exec: func(_ context.Context, o *IO, args []string) error {
			for _, p := range args {
				if err := a.fs.TruncateSync(a.path(p), *size); err != nil {
					o.Warn(p, err)
				}
			}

			return nil
		},
	}
}

func (a *app) touchCmd() *Command {
	flags := flag.NewFlagSet("touch", flag.ContinueOnError)
	date := flags.StringP("date", "d", "", "Timestamp to set: epoch seconds or a date string (default now)")

	return &Command{
		Flags:   flags,
		Usage:   "touch [-d TIME] <path>...",
		Short:   "Create files or set their access and modification times",
		Aliases: []string{"utimes"},
		Args:    MinimumArgs(1),
		Exec: func(_ context.Context, o *IO, args []string) error {
			var stamp any = time.Now()
			if *date != "" {
				stamp = *date
			}

			for _, p := range args {
				path := a.path(p)

				if !a.fs.ExistsSync(path) {
					if err := a.fs.AppendFileSync(path, []byte{}); err != nil {
						o.Warn(p, err)

						continue
					}
				}

				if err := a.fs.UtimesSync(path, stamp, stamp); err != nil {
					o.Warn(p, err)
				}
			}

			return nil
		},
	}
}

func (a *app) mktempCmd() *Command {
	flags := flag.NewFlagSet("mktemp", flag.ContinueOnError)

	return &Command{
		Flags:   flags,
		Usage:   "mktemp [prefix]",
		Aliases: []string{"mkdtemp"},
		Short:   "Create a unique directory and print its path",
		Long:    "Create a directory named prefix plus six random characters. The default prefix is nodefs- in the system temp directory.",
		Args:    MaximumArgs(1),
		Exec: func(_ context.Context, o *IO, args []string) error {
			prefix := filepath.Join(a.fs.TempDir(), "nodefs-")
			if len(args) > 0 {
				prefix = a.path(args[0])
			}

			dir, err := a.fs.MkdtempSync(prefix)
			if err != nil {
				return err
			}

			o.Println(dir)

			return nil
		},
	}
}

func (a *app) realpathCmd() *Command {
	flags := flag.NewFlagSet("realpath", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "realpath <path>...",
		Short: "Print canonical paths with symlinks resolved",
		Args:  MinimumArgs(1),
		Exec: func(_ context.Context, o *IO, args []string) error {
			for _, p := range args {
				resolved, err := a.fs.RealpathSync(a.path(p))
				if err != nil {
					o.Warn(p, err)

					continue
				}

				o.Println(resolved)
			}

			return nil
		},
	}
}

func parseMode(s string) (uint32, error) {
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: want octal like 0644", s)
	}

	return uint32(m), nil
}
