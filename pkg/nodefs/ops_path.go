package nodefs

// =============================================================================
// access / exists
// =============================================================================

// AccessSync checks the accessibility of path. Optional args: [mode int],
// default F_OK.
func (f *FS) AccessSync(path string, args ...any) error {
	l, err := syncArgs("access", args)
	if err != nil {
		return err
	}

	mode, err := checkAccess(path, l)
	if err != nil {
		return err
	}

	return f.access(path, mode)
}

// Access is the callback form of [FS.AccessSync].
func (f *FS) Access(path string, args ...any) error {
	l, err := splitArgs("access", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	mode, err := checkAccess(path, l)
	if err != nil {
		return err
	}

	return async(f, void(func() error { return f.access(path, mode) }), voidCallback(cb))
}

// Access is the promise form of [FS.AccessSync].
func (p *Promises) Access(path string, args ...any) *Promise[struct{}] {
	l, err := syncArgs("access", args)
	if err != nil {
		return rejected[struct{}](err)
	}

	mode, err := checkAccess(path, l)
	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.access(path, mode) }))
}

func checkAccess(path string, l argList) (uint32, error) {
	if err := validatePath("path", path); err != nil {
		return 0, err
	}

	mode, err := parseIntTail(l, "mode", F_OK)
	if err != nil {
		return 0, err
	}

	if mode < 0 || mode > F_OK|R_OK|W_OK|X_OK {
		return 0, outOfRange("mode", "an integer >= 0 && <= 7", mode)
	}

	return uint32(mode), nil
}

func (f *FS) access(path string, mode uint32) error {
	return f.sys("access", pathTarget(path), f.provider.Access(path, mode))
}

// ExistsSync reports whether path is accessible. It never fails.
func (f *FS) ExistsSync(path string) bool {
	if validatePath("path", path) != nil {
		return false
	}

	return f.access(path, F_OK) == nil
}

// Exists is the callback form of [FS.ExistsSync]. The continuation receives
// only the result.
func (f *FS) Exists(path string, cb ExistsCallback) error {
	return f.post(func() {
		ok := f.ExistsSync(path)
		if cb != nil {
			cb(ok)
		}
	})
}

// =============================================================================
// stat / lstat
// =============================================================================

// StatSync returns the metadata of path, following symlinks. Optional
// args: [StatOptions]. The result is a [*Stats], or a [*BigIntStats] with
// BigInt set.
func (f *FS) StatSync(path string, args ...any) (FileStats, error) {
	return f.statSync("stat", path, args)
}

// Stat is the callback form of [FS.StatSync]. The continuation is a
// [StatsCallback], [BigIntStatsCallback] or [FileStatsCallback]; the
// BigInt variant implies BigInt.
func (f *FS) Stat(path string, args ...any) error {
	return f.statAsync("stat", path, args)
}

// Stat is the promise form of [FS.StatSync].
func (p *Promises) Stat(path string, args ...any) *Promise[FileStats] {
	return p.stat("stat", path, args)
}

// LstatSync is [FS.StatSync] without following a final symlink.
func (f *FS) LstatSync(path string, args ...any) (FileStats, error) {
	return f.statSync("lstat", path, args)
}

// Lstat is the callback form of [FS.LstatSync].
func (f *FS) Lstat(path string, args ...any) error {
	return f.statAsync("lstat", path, args)
}

// Lstat is the promise form of [FS.LstatSync].
func (p *Promises) Lstat(path string, args ...any) *Promise[FileStats] {
	return p.stat("lstat", path, args)
}

func (f *FS) statSync(op, path string, args []any) (FileStats, error) {
	l, err := syncArgs(op, args)
	if err != nil {
		return nil, err
	}

	opts, err := checkStat(path, l)
	if err != nil {
		return nil, err
	}

	return f.stat(op, path, opts.BigInt)
}

func (f *FS) statAsync(op, path string, args []any) error {
	l, err := splitArgs(op, args)
	if err != nil {
		return err
	}

	opts, err := checkStat(path, l)
	if err != nil {
		return err
	}

	return async(f, func() (FileStats, error) { return f.stat(op, path, opts.BigInt) }, statCallback(l.cb))
}

func (p *Promises) stat(op, path string, args []any) *Promise[FileStats] {
	l, err := syncArgs(op, args)
	if err != nil {
		return rejected[FileStats](err)
	}

	opts, err := checkStat(path, l)
	if err != nil {
		return rejected[FileStats](err)
	}

	return promise(p.f, func() (FileStats, error) { return p.f.stat(op, path, opts.BigInt) })
}

func checkStat(path string, l argList) (StatOptions, error) {
	if err := validatePath("path", path); err != nil {
		return StatOptions{}, err
	}

	return parseStat(l)
}

func (f *FS) stat(op, path string, bigint bool) (FileStats, error) {
	stat := f.provider.Stat
	if op == "lstat" {
		stat = f.provider.Lstat
	}

	rec, err := stat(path)
	if err := f.sys(op, pathTarget(path), err); err != nil {
		return nil, err
	}

	return project(rec, bigint), nil
}

// =============================================================================
// chmod / chown / utimes and their l-variants
// =============================================================================

// ChmodSync changes the permission bits of path.
func (f *FS) ChmodSync(path string, mode uint32) error {
	if err := validatePath("path", path); err != nil {
		return err
	}

	return f.chmod("chmod", path, mode)
}

// Chmod is the callback form of [FS.ChmodSync].
func (f *FS) Chmod(path string, mode uint32, cb Callback) error {
	return f.pathCall(path, cb, func() error { return f.chmod("chmod", path, mode) })
}

// Chmod is the promise form of [FS.ChmodSync].
func (p *Promises) Chmod(path string, mode uint32) *Promise[struct{}] {
	return p.pathCall(path, func() error { return p.f.chmod("chmod", path, mode) })
}

// LchmodSync changes the permission bits of a symlink itself. Linux
// usually rejects this with EOPNOTSUPP.
func (f *FS) LchmodSync(path string, mode uint32) error {
	if err := validatePath("path", path); err != nil {
		return err
	}

	return f.chmod("lchmod", path, mode)
}

// Lchmod is the callback form of [FS.LchmodSync].
func (f *FS) Lchmod(path string, mode uint32, cb Callback) error {
	return f.pathCall(path, cb, func() error { return f.chmod("lchmod", path, mode) })
}

// Lchmod is the promise form of [FS.LchmodSync].
func (p *Promises) Lchmod(path string, mode uint32) *Promise[struct{}] {
	return p.pathCall(path, func() error { return p.f.chmod("lchmod", path, mode) })
}

func (f *FS) chmod(op, path string, mode uint32) error {
	chmod := f.provider.Chmod
	if op == "lchmod" {
		chmod = f.provider.Lchmod
	}

	return f.sys(op, pathTarget(path), chmod(path, mode))
}

// ChownSync changes the owner of path.
func (f *FS) ChownSync(path string, uid, gid int) error {
	if err := validatePath("path", path); err != nil {
		return err
	}

	return f.chown("chown", path, uid, gid)
}

// Chown is the callback form of [FS.ChownSync].
func (f *FS) Chown(path string, uid, gid int, cb Callback) error {
	return f.pathCall(path, cb, func() error { return f.chown("chown", path, uid, gid) })
}

// Chown is the promise form of [FS.ChownSync].
func (p *Promises) Chown(path string, uid, gid int) *Promise[struct{}] {
	return p.pathCall(path, func() error { return p.f.chown("chown", path, uid, gid) })
}

// LchownSync changes the owner of a symlink itself.
func (f *FS) LchownSync(path string, uid, gid int) error {
	if err := validatePath("path", path); err != nil {
		return err
	}

	return f.chown("lchown", path, uid, gid)
}

// Lchown is the callback form of [FS.LchownSync].
func (f *FS) Lchown(path string, uid, gid int, cb Callback) error {
	return f.pathCall(path, cb, func() error { return f.chown("lchown", path, uid, gid) })
}

// Lchown is the promise form of [FS.LchownSync].
func (p *Promises) Lchown(path string, uid, gid int) *Promise[struct{}] {
	return p.pathCall(path, func() error { return p.f.chown("lchown", path, uid, gid) })
}

func (f *FS) chown(op, path string, uid, gid int) error {
	chown := f.provider.Chown
	if op == "lchown" {
		chown = f.provider.Lchown
	}

	return f.sys(op, pathTarget(path), chown(path, uid, gid))
}

// UtimesSync sets the access and modification times of path. Times are a
// [time.Time], seconds since the epoch, or a string; see
// [TimeToEpochSeconds].
func (f *FS) UtimesSync(path string, atime, mtime any) error {
	if err := validatePath("path", path); err != nil {
		return err
	}

	return f.utimes("utimes", path, TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime))
}

// Utimes is the callback form of [FS.UtimesSync].
func (f *FS) Utimes(path string, atime, mtime any, cb Callback) error {
	at, mt := TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime)

	return f.pathCall(path, cb, func() error { return f.utimes("utimes", path, at, mt) })
}

// Utimes is the promise form of [FS.UtimesSync].
func (p *Promises) Utimes(path string, atime, mtime any) *Promise[struct{}] {
	at, mt := TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime)

	return p.pathCall(path, func() error { return p.f.utimes("utimes", path, at, mt) })
}

// LutimesSync is [FS.UtimesSync] without following a final symlink.
func (f *FS) LutimesSync(path string, atime, mtime any) error {
	if err := validatePath("path", path); err != nil {
		return err
	}

	return f.utimes("lutimes", path, TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime))
}

// Lutimes is the callback form of [FS.LutimesSync].
func (f *FS) Lutimes(path string, atime, mtime any, cb Callback) error {
	at, mt := TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime)

	return f.pathCall(path, cb, func() error { return f.utimes("lutimes", path, at, mt) })
}

// Lutimes is the promise form of [FS.LutimesSync].
func (p *Promises) Lutimes(path string, atime, mtime any) *Promise[struct{}] {
	at, mt := TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime)

	return p.pathCall(path, func() error { return p.f.utimes("lutimes", path, at, mt) })
}

func (f *FS) utimes(op, path string, atime, mtime float64) error {
	utimes := f.provider.Utimes
	if op == "lutimes" {
		utimes = f.provider.Lutimes
	}

	return f.sys(op, pathTarget(path), utimes(path, atime, mtime))
}

// pathCall validates path and runs body on the loop.
func (f *FS) pathCall(path string, cb Callback, body func() error) error {
	if err := validatePath("path", path); err != nil {
		return err
	}

	return async(f, void(body), voidCallback(cb))
}

func (p *Promises) pathCall(path string, body func() error) *Promise[struct{}] {
	if err := validatePath("path", path); err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(body))
}

// =============================================================================
// link / unlink / rename
// =============================================================================

// LinkSync creates newPath as a hard link to existing.
func (f *FS) LinkSync(existing, newPath string) error {
	if err := validatePaths(existing, newPath); err != nil {
		return err
	}

	return f.link(existing, newPath)
}

// Link is the callback form of [FS.LinkSync].
func (f *FS) Link(existing, newPath string, cb Callback) error {
	if err := validatePaths(existing, newPath); err != nil {
		return err
	}

	return async(f, void(func() error { return f.link(existing, newPath) }), voidCallback(cb))
}

// Link is the promise form of [FS.LinkSync].
func (p *Promises) Link(existing, newPath string) *Promise[struct{}] {
	if err := validatePaths(existing, newPath); err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.link(existing, newPath) }))
}

func (f *FS) link(existing, newPath string) error {
	return f.sys("link", linkTarget(existing, newPath), f.provider.Link(existing, newPath))
}

// UnlinkSync removes a file or symlink.
func (f *FS) UnlinkSync(path string) error {
	if err := validatePath("path", path); err != nil {
		return err
	}

	return f.unlink(path)
}

// Unlink is the callback form of [FS.UnlinkSync].
func (f *FS) Unlink(path string, cb Callback) error {
	return f.pathCall(path, cb, func() error { return f.unlink(path) })
}

// Unlink is the promise form of [FS.UnlinkSync].
func (p *Promises) Unlink(path string) *Promise[struct{}] {
	return p.pathCall(path, func() error { return p.f.unlink(path) })
}

func (f *FS) unlink(path string) error {
	return f.sys("unlink", pathTarget(path), f.provider.Unlink(path))
}

// RenameSync moves oldPath to newPath.
func (f *FS) RenameSync(oldPath, newPath string) error {
	if err := validatePaths(oldPath, newPath); err != nil {
		return err
	}

	return f.rename(oldPath, newPath)
}

// Rename is the callback form of [FS.RenameSync].
func (f *FS) Rename(oldPath, newPath string, cb Callback) error {
	if err := validatePaths(oldPath, newPath); err != nil {
		return err
	}

	return async(f, void(func() error { return f.rename(oldPath, newPath) }), voidCallback(cb))
}

// Rename is the promise form of [FS.RenameSync].
func (p *Promises) Rename(oldPath, newPath string) *Promise[struct{}] {
	if err := validatePaths(oldPath, newPath); err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.rename(oldPath, newPath) }))
}

func (f *FS) rename(oldPath, newPath string) error {
	return f.sys("rename", linkTarget(oldPath, newPath), f.provider.Rename(oldPath, newPath))
}

func validatePaths(src, dst string) error {
	if err := validatePath("src", src); err != nil {
		return err
	}

	return validatePath("dest", dst)
}

// =============================================================================
// symlink / readlink / realpath / mkdtemp
// =============================================================================

// SymlinkSync creates path as a symlink to target. Optional args: [type
// string], one of "file", "dir" or "junction"; it is validated and
// otherwise ignored.
func (f *FS) SymlinkSync(target, path string, args ...any) error {
	l, err := syncArgs("symlink", args)
	if err != nil {
		return err
	}

	if err := checkSymlink(target, path, l); err != nil {
		return err
	}

	return f.symlink(target, path)
}

// Symlink is the callback form of [FS.SymlinkSync].
func (f *FS) Symlink(target, path string, args ...any) error {
	l, err := splitArgs("symlink", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	if err := checkSymlink(target, path, l); err != nil {
		return err
	}

	return async(f, void(func() error { return f.symlink(target, path) }), voidCallback(cb))
}

// Symlink is the promise form of [FS.SymlinkSync].
func (p *Promises) Symlink(target, path string, args ...any) *Promise[struct{}] {
	l, err := syncArgs("symlink", args)
	if err == nil {
		err = checkSymlink(target, path, l)
	}

	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.symlink(target, path) }))
}

func checkSymlink(target, path string, l argList) error {
	if err := validatePaths(target, path); err != nil {
		return err
	}

	return parseSymlinkType(l)
}

func (f *FS) symlink(target, path string) error {
	return f.sys("symlink", linkTarget(target, path), f.provider.Symlink(target, path))
}

// ReadlinkSync returns the target of a symlink. Optional args:
// [EncodingOptions | encoding].
func (f *FS) ReadlinkSync(path string, args ...any) (string, error) {
	return f.namedSync("readlink", path, args)
}

// Readlink is the callback form of [FS.ReadlinkSync]; the continuation is a
// [StringCallback].
func (f *FS) Readlink(path string, args ...any) error {
	return f.namedAsync("readlink", path, args)
}

// Readlink is the promise form of [FS.ReadlinkSync].
func (p *Promises) Readlink(path string, args ...any) *Promise[string] {
	return p.named("readlink", path, args)
}

// RealpathSync returns the canonical absolute path. Optional args:
// [EncodingOptions | encoding].
func (f *FS) RealpathSync(path string, args ...any) (string, error) {
	return f.namedSync("realpath", path, args)
}

// Realpath is the callback form of [FS.RealpathSync].
func (f *FS) Realpath(path string, args ...any) error {
	return f.namedAsync("realpath", path, args)
}

// Realpath is the promise form of [FS.RealpathSync].
func (p *Promises) Realpath(path string, args ...any) *Promise[string] {
	return p.named("realpath", path, args)
}

// MkdtempSync creates a directory named prefix plus random characters and
// returns its path. Optional args: [EncodingOptions | encoding].
func (f *FS) MkdtempSync(prefix string, args ...any) (string, error) {
	return f.namedSync("mkdtemp", prefix, args)
}

// Mkdtemp is the callback form of [FS.MkdtempSync].
func (f *FS) Mkdtemp(prefix string, args ...any) error {
	return f.namedAsync("mkdtemp", prefix, args)
}

// Mkdtemp is the promise form of [FS.MkdtempSync].
func (p *Promises) Mkdtemp(prefix string, args ...any) *Promise[string] {
	return p.named("mkdtemp", prefix, args)
}

// namedSync runs one of the operations returning a path.
func (f *FS) namedSync(op, path string, args []any) (string, error) {
	l, err := syncArgs(op, args)
	if err != nil {
		return "", err
	}

	enc, err := checkNamed(path, l)
	if err != nil {
		return "", err
	}

	return f.named(op, path, enc)
}

func (f *FS) namedAsync(op, path string, args []any) error {
	l, err := splitArgs(op, args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[StringCallback](l, "func(error, string)")
	if err != nil {
		return err
	}

	enc, err := checkNamed(path, l)
	if err != nil {
		return err
	}

	return async(f, func() (string, error) { return f.named(op, path, enc) }, valueCallback(cb))
}

func (p *Promises) named(op, path string, args []any) *Promise[string] {
	l, err := syncArgs(op, args)
	if err != nil {
		return rejected[string](err)
	}

	enc, err := checkNamed(path, l)
	if err != nil {
		return rejected[string](err)
	}

	return promise(p.f, func() (string, error) { return p.f.named(op, path, enc) })
}

func checkNamed(path string, l argList) (Encoding, error) {
	if err := validatePath("path", path); err != nil {
		return "", err
	}

	return parseEncodingOption(l)
}

func (f *FS) named(op, path string, enc Encoding) (string, error) {
	var call func(string) (string, error)

	switch op {
	case "readlink":
		call = f.provider.Readlink
	case "realpath":
		call = f.provider.Realpath
	default:
		call = f.provider.Mkdtemp
	}

	out, err := call(path)
	if err := f.sys(op, pathTarget(path), err); err != nil {
		return "", err
	}

	return encodeName(out, enc), nil
}

// =============================================================================
// truncate / copyFile
// =============================================================================

// TruncateSync truncates path. Optional args: [length int], default 0.
// Negative lengths truncate to 0.
func (f *FS) TruncateSync(path string, args ...any) error {
	l, err := syncArgs("truncate", args)
	if err != nil {
		return err
	}

	n, err := checkTruncate(path, l)
	if err != nil {
		return err
	}

	return f.truncate(path, n)
}

// Truncate is the callback form of [FS.TruncateSync].
func (f *FS) Truncate(path string, args ...any) error {
	l, err := splitArgs("truncate", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	n, err := checkTruncate(path, l)
	if err != nil {
		return err
	}

	return async(f, void(func() error { return f.truncate(path, n) }), voidCallback(cb))
}

// Truncate is the promise form of [FS.TruncateSync].
func (p *Promises) Truncate(path string, args ...any) *Promise[struct{}] {
	l, err := syncArgs("truncate", args)
	if err != nil {
		return rejected[struct{}](err)
	}

	n, err := checkTruncate(path, l)
	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.truncate(path, n) }))
}

func checkTruncate(path string, l argList) (int64, error) {
	if err := validatePath("path", path); err != nil {
		return 0, err
	}

	n, err := parseIntTail(l, "len", 0)

	return max(n, 0), err
}

func (f *FS) truncate(path string, n int64) error {
	return f.sys("truncate", pathTarget(path), f.provider.Truncate(path, n))
}

// CopyFileSync copies src to dst. Optional args: [mode int]; COPYFILE_EXCL
// fails when dst exists.
func (f *FS) CopyFileSync(src, dst string, args ...any) error {
	l, err := syncArgs("copyfile", args)
	if err != nil {
		return err
	}

	mode, err := checkCopyFile(src, dst, l)
	if err != nil {
		return err
	}

	return f.copyFile(src, dst, mode)
}

// CopyFile is the callback form of [FS.CopyFileSync].
func (f *FS) CopyFile(src, dst string, args ...any) error {
	l, err := splitArgs("copyfile", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	mode, err := checkCopyFile(src, dst, l)
	if err != nil {
		return err
	}

	return async(f, void(func() error { return f.copyFile(src, dst, mode) }), voidCallback(cb))
}

// CopyFile is the promise form of [FS.CopyFileSync].
func (p *Promises) CopyFile(src, dst string, args ...any) *Promise[struct{}] {
	l, err := syncArgs("copyfile", args)
	if err != nil {
		return rejected[struct{}](err)
	}

	mode, err := checkCopyFile(src, dst, l)
	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.copyFile(src, dst, mode) }))
}

func checkCopyFile(src, dst string, l argList) (int, error) {
	if err := validatePaths(src, dst); err != nil {
		return 0, err
	}

	mode, err := parseIntTail(l, "mode", 0)
	if err != nil {
		return 0, err
	}

	if mode < 0 || mode > COPYFILE_EXCL|COPYFILE_FICLONE|COPYFILE_FICLONE_FORCE {
		return 0, outOfRange("mode", "an integer >= 0 && <= 7", mode)
	}

	return int(mode), nil
}

func (f *FS) copyFile(src, dst string, mode int) error {
	return f.sys("copyfile", linkTarget(src, dst), f.provider.CopyFile(src, dst, mode))
}
