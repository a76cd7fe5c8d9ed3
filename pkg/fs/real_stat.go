//go:build linux

package fs

import (
	iofs "io/fs"

	"golang.org/x/sys/unix"
)

const statxMask = unix.STATX_BASIC_STATS | unix.STATX_BTIME

// Stat uses [unix.Statx] so birth time is reported where the filesystem
// records it.
func (r *Real) Stat(path string) (StatRecord, error) {
	return statx(unix.AT_FDCWD, path, 0, "stat")
}

// Lstat is [Real.Stat] without following a final symlink.
func (r *Real) Lstat(path string) (StatRecord, error) {
	return statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, "lstat")
}

// Fstat stats an open descriptor.
func (r *Real) Fstat(fd int) (StatRecord, error) {
	var stx unix.Statx_t

	if err := unix.Statx(fd, "", unix.AT_EMPTY_PATH, statxMask, &stx); err != nil {
		return StatRecord{}, fdError("fstat", fd, err)
	}

	return recordFromStatx(&stx), nil
}

func statx(dirfd int, path string, flags int, op string) (StatRecord, error) {
	var stx unix.Statx_t

	for {
		err := unix.Statx(dirfd, path, flags, statxMask, &stx)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return StatRecord{}, &iofs.PathError{Op: op, Path: path, Err: err}
		}

		return recordFromStatx(&stx), nil
	}
}

func recordFromStatx(stx *unix.Statx_t) StatRecord {
	rec := StatRecord{
		Dev:     unix.Mkdev(stx.Dev_major, stx.Dev_minor),
		Ino:     stx.Ino,
		Mode:    uint32(stx.Mode),
		Nlink:   uint64(stx.Nlink),
		UID:     stx.Uid,
		GID:     stx.Gid,
		Rdev:    unix.Mkdev(stx.Rdev_major, stx.Rdev_minor),
		Size:    int64(stx.Size),
		Blksize: int64(stx.Blksize),
		Blocks:  int64(stx.Blocks),

		AtimeMs: timestampMs(stx.Atime),
		MtimeMs: timestampMs(stx.Mtime),
		CtimeMs: timestampMs(stx.Ctime),
	}

	if stx.Mask&unix.STATX_BTIME != 0 {
		rec.BirthtimeMs = timestampMs(stx.Btime)
	} else {
		rec.BirthtimeMs = rec.CtimeMs
	}

	return rec
}

func timestampMs(ts unix.StatxTimestamp) float64 {
	return float64(ts.Sec)*1e3 + float64(ts.Nsec)/1e6
}
