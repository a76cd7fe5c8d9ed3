package nodefs

import (
	"errors"
	"os"
	"path/filepath"
)

// =============================================================================
// mkdir
// =============================================================================

// MkdirSync creates a directory. Optional args: [mode int | MkdirOptions].
//
// With Recursive set, missing parents are created too, an existing
// directory is not an error, and the result is the first directory that was
// created ("" when none was).
func (f *FS) MkdirSync(path string, args ...any) (string, error) {
	l, err := syncArgs("mkdir", args)
	if err != nil {
		return "", err
	}

	opts, err := checkMkdir(path, l)
	if err != nil {
		return "", err
	}

	return f.mkdir(path, opts)
}

// Mkdir is the callback form of [FS.MkdirSync]. The continuation is a
// [Callback] or a [StringCallback] receiving the first created directory.
func (f *FS) Mkdir(path string, args ...any) error {
	l, err := splitArgs("mkdir", args)
	if err != nil {
		return err
	}

	opts, err := checkMkdir(path, l)
	if err != nil {
		return err
	}

	var deliver func(string, error)

	switch cb := l.cb.(type) {
	case nil:
	case Callback:
		deliver = func(_ string, err error) { cb(err) }
	case StringCallback:
		deliver = valueCallback(cb)
	default:
		return invalidArgType("callback", "func(error) or func(error, string)", l.cb)
	}

	return async(f, func() (string, error) { return f.mkdir(path, opts) }, deliver)
}

// Mkdir is the promise form of [FS.MkdirSync].
func (p *Promises) Mkdir(path string, args ...any) *Promise[string] {
	l, err := syncArgs("mkdir", args)
	if err != nil {
		return rejected[string](err)
	}

	opts, err := checkMkdir(path, l)
	if err != nil {
		return rejected[string](err)
	}

	return promise(p.f, func() (string, error) { return p.f.mkdir(path, opts) })
}

func checkMkdir(path string, l argList) (MkdirOptions, error) {
	if err := validatePath("path", path); err != nil {
		return MkdirOptions{}, err
	}

	return parseMkdir(l)
}

func (f *FS) mkdir(path string, opts MkdirOptions) (string, error) {
	if !opts.Recursive {
		return "", f.sys("mkdir", pathTarget(path), f.provider.Mkdir(path, opts.Mode, false))
	}

	first := f.firstMissing(path)

	if err := f.sys("mkdir", pathTarget(path), f.provider.Mkdir(path, opts.Mode, true)); err != nil {
		return "", err
	}

	return first, nil
}

// firstMissing returns the outermost ancestor of path (or path itself)
// that does not exist yet.
func (f *FS) firstMissing(path string) string {
	first := ""

	for p := filepath.Clean(path); ; {
		if _, err := f.provider.Stat(p); err == nil {
			break
		}

		first = p

		parent := filepath.Dir(p)
		if parent == p {
			break
		}

		p = parent
	}

	return first
}

// =============================================================================
// readdir
// =============================================================================

// ReaddirSync lists a directory, sorted by name. Optional args:
// [ReaddirOptions | encoding]. With WithFileTypes set the result carries
// [*Dirent] entries instead of names.
func (f *FS) ReaddirSync(path string, args ...any) (Listing, error) {
	l, err := syncArgs("readdir", args)
	if err != nil {
		return Listing{}, err
	}

	a, err := checkReaddir(path, l)
	if err != nil {
		return Listing{}, err
	}

	return f.readdir(path, a)
}

// Readdir is the callback form of [FS.ReaddirSync]. The continuation is a
// [NamesCallback], or a [DirentsCallback] which implies WithFileTypes.
func (f *FS) Readdir(path string, args ...any) error {
	l, err := splitArgs("readdir", args)
	if err != nil {
		return err
	}

	a, err := checkReaddir(path, l)
	if err != nil {
		return err
	}

	var deliver func(Listing, error)

	switch cb := l.cb.(type) {
	case NamesCallback:
		if cb != nil {
			deliver = func(ls Listing, err error) { cb(err, ls.Names) }
		}
	case DirentsCallback:
		if cb != nil {
			deliver = func(ls Listing, err error) { cb(err, ls.Entries) }
		}
	}

	return async(f, func() (Listing, error) { return f.readdir(path, a) }, deliver)
}

// Readdir is the promise form of [FS.ReaddirSync].
func (p *Promises) Readdir(path string, args ...any) *Promise[Listing] {
	l, err := syncArgs("readdir", args)
	if err != nil {
		return rejected[Listing](err)
	}

	a, err := checkReaddir(path, l)
	if err != nil {
		return rejected[Listing](err)
	}

	return promise(p.f, func() (Listing, error) { return p.f.readdir(path, a) })
}

func checkReaddir(path string, l argList) (readdirArgs, error) {
	if err := validatePath("path", path); err != nil {
		return readdirArgs{}, err
	}

	return parseReaddir(l)
}

func (f *FS) readdir(path string, a readdirArgs) (Listing, error) {
	names, err := f.provider.Readdir(path)
	if err := f.sys("scandir", pathTarget(path), err); err != nil {
		return Listing{}, err
	}

	if !a.withTypes {
		out := make([]string, len(names))
		for i, name := range names {
			out[i] = encodeName(name, a.enc)
		}

		return Listing{Names: out}, nil
	}

	entries := make([]*Dirent, len(names))
	for i, name := range names {
		entries[i] = f.newDirent(path, name, a.enc)
	}

	return Listing{Entries: entries}, nil
}

// =============================================================================
// rmdir / rm
// =============================================================================

// RmdirSync removes an empty directory. Optional args: [RmdirOptions];
// Recursive removes the whole tree.
func (f *FS) RmdirSync(path string, args ...any) error {
	l, err := syncArgs("rmdir", args)
	if err != nil {
		return err
	}

	opts, err := checkRmdir(path, l)
	if err != nil {
		return err
	}

	return f.rmdir(path, opts)
}

// Rmdir is the callback form of [FS.RmdirSync].
func (f *FS) Rmdir(path string, args ...any) error {
	l, err := splitArgs("rmdir", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	opts, err := checkRmdir(path, l)
	if err != nil {
		return err
	}

	return async(f, void(func() error { return f.rmdir(path, opts) }), voidCallback(cb))
}

// Rmdir is the promise form of [FS.RmdirSync].
func (p *Promises) Rmdir(path string, args ...any) *Promise[struct{}] {
	l, err := syncArgs("rmdir", args)
	if err != nil {
		return rejected[struct{}](err)
	}

	opts, err := checkRmdir(path, l)
	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.rmdir(path, opts) }))
}

func checkRmdir(path string, l argList) (RmdirOptions, error) {
	if err := validatePath("path", path); err != nil {
		return RmdirOptions{}, err
	}

	return parseRmdir(l)
}

func (f *FS) rmdir(path string, opts RmdirOptions) error {
	if opts.Recursive {
		return f.sys("rmdir", pathTarget(path), f.provider.Rm(path, true))
	}

	return f.sys("rmdir", pathTarget(path), f.provider.Rmdir(path))
}

// RmSync removes a file, or a directory tree with Recursive. Optional args:
// [RmOptions]. Force ignores a missing path.
func (f *FS) RmSync(path string, args ...any) error {
	l, err := syncArgs("rm", args)
	if err != nil {
		return err
	}

	opts, err := checkRm(path, l)
	if err != nil {
		return err
	}

	return f.rm(path, opts)
}

// Rm is the callback form of [FS.RmSync].
func (f *FS) Rm(path string, args ...any) error {
	l, err := splitArgs("rm", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	opts, err := checkRm(path, l)
	if err != nil {
		return err
	}

	return async(f, void(func() error { return f.rm(path, opts) }), voidCallback(cb))
}

// Rm is the promise form of [FS.RmSync].
func (p *Promises) Rm(path string, args ...any) *Promise[struct{}] {
	l, err := syncArgs("rm", args)
	if err != nil {
		return rejected[struct{}](err)
	}

	opts, err := checkRm(path, l)
	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.rm(path, opts) }))
}

func checkRm(path string, l argList) (RmOptions, error) {
	if err := validatePath("path", path); err != nil {
		return RmOptions{}, err
	}

	return parseRm(l)
}

func (f *FS) rm(path string, opts RmOptions) error {
	err := f.provider.Rm(path, opts.Recursive)
	if opts.Force && errors.Is(err, os.ErrNotExist) {
		err = nil
	}

	return f.sys("rm", pathTarget(path), err)
}

// =============================================================================
// opendir
// =============================================================================

// OpendirSync opens a directory cursor. Optional args: [OpendirOptions].
func (f *FS) OpendirSync(path string, args ...any) (*Dir, error) {
	l, err := syncArgs("opendir", args)
	if err != nil {
		return nil, err
	}

	enc, err := checkOpendir(path, l)
	if err != nil {
		return nil, err
	}

	return f.opendir(path, enc)
}

// Opendir is the callback form of [FS.OpendirSync]; the continuation is a
// [DirCallback].
func (f *FS) Opendir(path string, args ...any) error {
	l, err := splitArgs("opendir", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[DirCallback](l, "func(error, *Dir)")
	if err != nil {
		return err
	}

	enc, err := checkOpendir(path, l)
	if err != nil {
		return err
	}

	return async(f, func() (*Dir, error) { return f.opendir(path, enc) }, valueCallback(cb))
}

// Opendir is the promise form of [FS.OpendirSync].
func (p *Promises) Opendir(path string, args ...any) *Promise[*Dir] {
	l, err := syncArgs("opendir", args)
	if err != nil {
		return rejected[*Dir](err)
	}

	enc, err := checkOpendir(path, l)
	if err != nil {
		return rejected[*Dir](err)
	}

	return promise(p.f, func() (*Dir, error) { return p.f.opendir(path, enc) })
}

func checkOpendir(path string, l argList) (Encoding, error) {
	if err := validatePath("path", path); err != nil {
		return "", err
	}

	opts, err := parseOpendir(l)
	if err != nil {
		return "", err
	}

	return resolveEncoding(opts.Encoding)
}

func (f *FS) opendir(path string, enc Encoding) (*Dir, error) {
	it, err := f.provider.Opendir(path)
	if err := f.sys("opendir", pathTarget(path), err); err != nil {
		return nil, err
	}

	return &Dir{f: f, path: path, enc: enc, it: it}, nil
}
