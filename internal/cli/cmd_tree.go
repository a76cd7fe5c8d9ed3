package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/nodefs/pkg/nodefs"
)

func (a *app) statCmd() *Command {
	flags := flag.NewFlagSet("stat", flag.ContinueOnError)
	lstat := flags.BoolP("no-dereference", "L", false, "Describe symlinks themselves (lstat)")

	return &Command{
		Flags: flags,
		Usage: "stat [-L] <path>...",
		Short: "Show file metadata",
		Args:  MinimumArgs(1),
		Exec: func(ctx context.Context, o *IO, args []string) error {
			for i, p := range args {
				path := a.path(p)

				call := a.fs.Promises().Stat
				if *lstat {
					call = a.fs.Promises().Lstat
				}

				st, err := call(path).Await(ctx)
				if err != nil {
					o.Warn(p, err)

					continue
				}

				if i > 0 {
					o.Println()
				}

				a.printStat(o, p, path, st.(*nodefs.Stats))
			}

			return nil
		},
	}
}

func (a *app) printStat(o *IO, name, path string, st *nodefs.Stats) {
	if st.IsSymbolicLink() {
		if target, err := a.fs.ReadlinkSync(path); err == nil {
			name += " -> " + target
		}
	}

	o.Printf("  File: %s\n", name)
	o.Printf("  Type: %s\n", typeName(st))
	o.Printf("  Size: %s (%d bytes)\n", humanize.Bytes(uint64(max(st.Size, 0))), st.Size)
	o.Printf("  Mode: %04o (%s)\n", st.Mode&0o7777, modeString(st))
	o.Printf(" Inode: %d  Links: %d  Uid: %d  Gid: %d\n", st.Ino, st.Nlink, st.UID, st.GID)
	o.Printf("Access: %s\n", formatTime(st.Atime))
	o.Printf("Modify: %s\n", formatTime(st.Mtime))
	o.Printf("Change: %s\n", formatTime(st.Ctime))
}

func formatTime(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format(time.RFC3339Nano), humanize.Time(t))
}

func typeName(st nodefs.FileStats) string {
	switch {
	case st.IsFile():
		return "regular file"
	case st.IsDirectory():
		return "directory"
	case st.IsSymbolicLink():
		return "symbolic link"
	case st.IsFIFO():
		return "fifo"
	case st.IsSocket():
		return "socket"
	case st.IsCharacterDevice():
		return "character device"
	case st.IsBlockDevice():
		return "block device"
	default:
		return "unknown"
	}
}

// modeString renders the type and permission bits like ls -l.
func modeString(st *nodefs.Stats) string {
	kind := "-"

	switch {
	case st.IsDirectory():
		kind = "d"
	case st.IsSymbolicLink():
		kind = "l"
	case st.IsFIFO():
		kind = "p"
	case st.IsSocket():
		kind = "s"
	case st.IsCharacterDevice():
		kind = "c"
	case st.IsBlockDevice():
		kind = "b"
	}

	return kind + os.FileMode(st.Mode & 0o777).String()[1:]
}

// typeSuffix marks directories and symlinks in short listings.
func typeSuffix(st nodefs.FileStats) string {
	switch {
	case st.IsDirectory():
		return "/"
	case st.IsSymbolicLink():
		return "@"
	default:
		return ""
	}
}

func (a *app) lsCmd() *Command {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	long := flags.BoolP("long", "l", false, "Show mode, size and modification time")

	return &Command{
		Flags:   flags,
		Usage:   "ls [-l] [dir...]",
		Aliases: []string{"readdir"},
		Short:   "List directory entries",
		Long: `List directory entries sorted by name. Directories end in / and symlinks
in @. With -l each entry is described by lstat.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			for i, p := range args {
				if len(args) > 1 {
					if i > 0 {
						o.Println()
					}

					o.Printf("%s:\n", p)
				}

				var err error
				if *long {
					err = a.listLong(o, a.path(p))
				} else {
					err = a.list(ctx, o, a.path(p))
				}

				if err != nil {
					o.Warn(p, err)
				}
			}

			return nil
		},
	}
}

func (a *app) list(ctx context.Context, o *IO, dir string) error {
	type result struct {
		entries []*nodefs.Dirent
		err     error
	}

	done := make(chan result, 1)

	err := a.fs.Readdir(dir, nodefs.ReaddirOptions{WithFileTypes: true}, func(err error, entries []*nodefs.Dirent) {
		done <- result{entries, err}
	})
	if err != nil {
		return err
	}

	select {
	case r := <-done:
		if r.err != nil {
			return r.err
		}

		for _, e := range r.entries {
			o.Println(e.Name + typeSuffix(e))
		}

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// listLong iterates with a Dir handle, so entries print as they are read.
// Dir yields in provider order.
func (a *app) listLong(o *IO, dir string) error {
	d, err := a.fs.OpendirSync(dir)
	if err != nil {
		return err
	}

	for e, err := range d.Entries() {
		if err != nil {
			return err
		}

		st, err := a.fs.LstatSync(filepath.Join(e.ParentPath, e.Name))
		if err != nil {
			o.Warn(e.Name, err)

			continue
		}

		s := st.(*nodefs.Stats)
		o.Printf("%s %8s %s %s%s\n",
			modeString(s), humanize.Bytes(uint64(max(s.Size, 0))),
			s.Mtime.Format("Jan _2 15:04"), e.Name, typeSuffix(s))
	}

	return nil
}

func (a *app) mkdirCmd() *Command {
	flags := flag.NewFlagSet("mkdir", flag.ContinueOnError)
	parents := flags.BoolP("parents", "p", false, "Create missing parents; no error if the directory exists")
	mode := flags.StringP("mode", "m", "0777", "Mode for created directories, octal")

	return &Command{
		Flags: flags,
		Usage: "mkdir [-p] [-m MODE] <dir>...",
		Short: "Create directories",
		Args:  MinimumArgs(1),
		Exec: func(_ context.Context, o *IO, args []string) error {
			perm, err := parseMode(*mode)
			if err != nil {
				return err
			}

			for _, p := range args {
				first, err := a.fs.MkdirSync(a.path(p), nodefs.MkdirOptions{Recursive: *parents, Mode: perm})
				if err != nil {
					o.Warn(p, err)

					continue
				}

				if first != "" {
					a.log.WithField("first", first).Debug("created directories")
				}
			}

			return nil
		},
	}
}

func (a *app) rmCmd() *Command {
	flags := flag.NewFlagSet("rm", flag.ContinueOnError)
	recursive := flags.BoolP("recursive", "r", false, "Remove directories and their contents")
	force := flags.BoolP("force", "f", false, "Ignore missing paths")

	return &Command{
		Flags: flags,
		Usage: "rm [-rf] <path>...",
		Short: "Remove files or directory trees",
		Args:  MinimumArgs(1),
		Exec: func(ctx context.Context, o *IO, args []string) error {
			for _, p := range args {
				_, err := a.fs.Promises().Rm(a.path(p), nodefs.RmOptions{Recursive: *recursive, Force: *force}).Await(ctx)
				if err != nil {
					o.Warn(p, err)
				}
			}

			return nil
		},
	}
}

func (a *app) cpCmd() *Command {
	flags := flag.NewFlagSet("cp", flag.ContinueOnError)
	noClobber := flags.BoolP("no-clobber", "n", false, "Fail if the destination exists")

	return &Command{
		Flags:   flags,
		Usage:   "cp [-n] <src> <dst>",
		Aliases: []string{"copyfile"},
		Short:   "Copy a file",
		Args:    ExactArgs(2),
		Exec: func(_ context.Context, _ *IO, args []string) error {
			mode := 0
			if *noClobber {
				mode = nodefs.COPYFILE_EXCL
			}

			return a.fs.CopyFileSync(a.path(args[0]), a.path(args[1]), mode)
		},
	}
}

func (a *app) mvCmd() *Command {
	flags := flag.NewFlagSet("mv", flag.ContinueOnError)

	return &Command{
		Flags:   flags,
		Usage:   "mv <src> <dst>",
		Aliases: []string{"rename"},
		Short:   "Rename a file or directory",
		Args:    ExactArgs(2),
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			_, err := a.fs.Promises().Rename(a.path(args[0]), a.path(args[1])).Await(ctx)

			return err
		},
	}
}

func (a *app) lnCmd() *Command {
	flags := flag.NewFlagSet("ln", flag.ContinueOnError)
	symbolic := flags.BoolP("symbolic", "s", false, "Create a symbolic link")

	return &Command{
		Flags: flags,
		Usage: "ln [-s] <target> <link>",
		Short: "Create a hard or symbolic link",
		Long:  "Create a link. A symbolic link stores <target> verbatim, so a relative target resolves from the link's directory.",
		Args:  ExactArgs(2),
		Exec: func(_ context.Context, _ *IO, args []string) error {
			if *symbolic {
				return a.fs.SymlinkSync(args[0], a.path(args[1]))
			}

			return a.fs.LinkSync(a.path(args[0]), a.path(args[1]))
		},
	}
}
