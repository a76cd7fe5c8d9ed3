package nodefs

import (
	"math"
	"math/big"
	"time"

	"github.com/calvinalkan/nodefs/pkg/fs"
)

// FileStats is implemented by [*Stats] and [*BigIntStats].
//
// The type predicates compare (mode & S_IFMT) against one type constant, so
// at most one of them is true for any mode.
type FileStats interface {
	IsFile() bool
	IsDirectory() bool
	IsBlockDevice() bool
	IsCharacterDevice() bool
	IsSymbolicLink() bool
	IsFIFO() bool
	IsSocket() bool
}

// typeBits implements the [FileStats] predicates for a raw mode.
type typeBits uint32

func (m typeBits) is(t uint32) bool { return uint32(m)&S_IFMT == t }

func (m typeBits) IsFile() bool            { return m.is(S_IFREG) }
func (m typeBits) IsDirectory() bool       { return m.is(S_IFDIR) }
func (m typeBits) IsBlockDevice() bool     { return m.is(S_IFBLK) }
func (m typeBits) IsCharacterDevice() bool { return m.is(S_IFCHR) }
func (m typeBits) IsSymbolicLink() bool    { return m.is(S_IFLNK) }
func (m typeBits) IsFIFO() bool            { return m.is(S_IFIFO) }
func (m typeBits) IsSocket() bool          { return m.is(S_IFSOCK) }

// Stats is the number-typed view of a stat record.
type Stats struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint64
	UID     uint32
	GID     uint32
	Rdev    uint64
	Size    int64
	Blksize int64
	Blocks  int64

	AtimeMs     float64
	MtimeMs     float64
	CtimeMs     float64
	BirthtimeMs float64

	Atime     time.Time
	Mtime     time.Time
	Ctime     time.Time
	Birthtime time.Time
}

// NewStats projects rec into a [Stats].
func NewStats(rec fs.StatRecord) *Stats {
	return &Stats{
		Dev:     rec.Dev,
		Ino:     rec.Ino,
		Mode:    rec.Mode,
		Nlink:   rec.Nlink,
		UID:     rec.UID,
		GID:     rec.GID,
		Rdev:    rec.Rdev,
		Size:    rec.Size,
		Blksize: rec.Blksize,
		Blocks:  rec.Blocks,

		AtimeMs:     rec.AtimeMs,
		MtimeMs:     rec.MtimeMs,
		CtimeMs:     rec.CtimeMs,
		BirthtimeMs: rec.BirthtimeMs,

		Atime:     msToTime(rec.AtimeMs),
		Mtime:     msToTime(rec.MtimeMs),
		Ctime:     msToTime(rec.CtimeMs),
		Birthtime: msToTime(rec.BirthtimeMs),
	}
}

func (s *Stats) IsFile() bool            { return typeBits(s.Mode).IsFile() }
func (s *Stats) IsDirectory() bool       { return typeBits(s.Mode).IsDirectory() }
func (s *Stats) IsBlockDevice() bool     { return typeBits(s.Mode).IsBlockDevice() }
func (s *Stats) IsCharacterDevice() bool { return typeBits(s.Mode).IsCharacterDevice() }
func (s *Stats) IsSymbolicLink() bool    { return typeBits(s.Mode).IsSymbolicLink() }
func (s *Stats) IsFIFO() bool            { return typeBits(s.Mode).IsFIFO() }
func (s *Stats) IsSocket() bool          { return typeBits(s.Mode).IsSocket() }

// BigIntStats is the arbitrary-precision view of a stat record.
//
// The *Ns fields are the millisecond fields times 1,000,000; they carry no
// sub-millisecond precision.
type BigIntStats struct {
	Dev     *big.Int
	Ino     *big.Int
	Mode    *big.Int
	Nlink   *big.Int
	UID     *big.Int
	GID     *big.Int
	Rdev    *big.Int
	Size    *big.Int
	Blksize *big.Int
	Blocks  *big.Int

	AtimeMs     *big.Int
	MtimeMs     *big.Int
	CtimeMs     *big.Int
	BirthtimeMs *big.Int

	AtimeNs     *big.Int
	MtimeNs     *big.Int
	CtimeNs     *big.Int
	BirthtimeNs *big.Int

	Atime     time.Time
	Mtime     time.Time
	Ctime     time.Time
	Birthtime time.Time

	mode uint32
}

var nsPerMs = big.NewInt(1_000_000)

// NewBigIntStats projects rec into a [BigIntStats].
func NewBigIntStats(rec fs.StatRecord) *BigIntStats {
	ms := func(v float64) *big.Int { return big.NewInt(int64(math.Floor(v))) }
	ns := func(v float64) *big.Int { return new(big.Int).Mul(ms(v), nsPerMs) }

	return &BigIntStats{
		Dev:     new(big.Int).SetUint64(rec.Dev),
		Ino:     new(big.Int).SetUint64(rec.Ino),
		Mode:    big.NewInt(int64(rec.Mode)),
		Nlink:   new(big.Int).SetUint64(rec.Nlink),
		UID:     big.NewInt(int64(rec.UID)),
		GID:     big.NewInt(int64(rec.GID)),
		Rdev:    new(big.Int).SetUint64(rec.Rdev),
		Size:    big.NewInt(rec.Size),
		Blksize: big.NewInt(rec.Blksize),
		Blocks:  big.NewInt(rec.Blocks),

		AtimeMs:     ms(rec.AtimeMs),
		MtimeMs:     ms(rec.MtimeMs),
		CtimeMs:     ms(rec.CtimeMs),
		BirthtimeMs: ms(rec.BirthtimeMs),

		AtimeNs:     ns(rec.AtimeMs),
		MtimeNs:     ns(rec.MtimeMs),
		CtimeNs:     ns(rec.CtimeMs),
		BirthtimeNs: ns(rec.BirthtimeMs),

		Atime:     msToTime(rec.AtimeMs),
		Mtime:     msToTime(rec.MtimeMs),
		Ctime:     msToTime(rec.CtimeMs),
		Birthtime: msToTime(rec.BirthtimeMs),

		mode: rec.Mode,
	}
}

func (s *BigIntStats) IsFile() bool            { return typeBits(s.mode).IsFile() }
func (s *BigIntStats) IsDirectory() bool       { return typeBits(s.mode).IsDirectory() }
func (s *BigIntStats) IsBlockDevice() bool     { return typeBits(s.mode).IsBlockDevice() }
func (s *BigIntStats) IsCharacterDevice() bool { return typeBits(s.mode).IsCharacterDevice() }
func (s *BigIntStats) IsSymbolicLink() bool    { return typeBits(s.mode).IsSymbolicLink() }
func (s *BigIntStats) IsFIFO() bool            { return typeBits(s.mode).IsFIFO() }
func (s *BigIntStats) IsSocket() bool          { return typeBits(s.mode).IsSocket() }

func msToTime(ms float64) time.Time {
	sec := math.Floor(ms / 1e3)
	nsec := (ms - sec*1e3) * 1e6

	return time.Unix(int64(sec), int64(math.Round(nsec))).UTC()
}

var (
	_ FileStats = (*Stats)(nil)
	_ FileStats = (*BigIntStats)(nil)
	_ FileStats = typeBits(0)
)
