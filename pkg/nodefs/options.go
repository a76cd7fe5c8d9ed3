package nodefs

import "time"

// Continuation types accepted in the trailing position of callback-form
// calls. They are aliases so plain func literals match them.
//
// On failure an FdCallback receives fd -1, the value [FS.OpenSync] returns
// with an error.
type (
	Callback            = func(err error)
	FdCallback          = func(err error, fd int)
	ReadCallback        = func(err error, bytesRead int, buf []byte)
	WriteCallback       = func(err error, written int, buf []byte)
	WriteStringCallback = func(err error, written int, s string)
	StatsCallback       = func(err error, st *Stats)
	BigIntStatsCallback = func(err error, st *BigIntStats)
	FileStatsCallback   = func(err error, st FileStats)
	NamesCallback       = func(err error, names []string)
	DirentsCallback     = func(err error, entries []*Dirent)
	BytesCallback       = func(err error, data []byte)
	StringCallback      = func(err error, s string)
	ContentCallback     = func(err error, c Content)
	DirCallback         = func(err error, dir *Dir)
	VectorCallback      = func(err error, n int, bufs [][]byte)
	ExistsCallback      = func(exists bool)

	// WatchListener receives FSWatcher change notifications.
	WatchListener = func(event, filename string)
	// StatListenerFunc receives poll-watch notifications.
	StatListenerFunc = func(curr, prev *Stats)
)

// Ptr returns a pointer to v, for optional option fields.
func Ptr[T any](v T) *T { return &v }

// ReadOptions is the options bag of read calls.
type ReadOptions struct {
	// Buffer receives the data. Callback-form reads allocate one when nil.
	Buffer []byte
	// Offset is where in Buffer to start writing.
	Offset int
	// Length is how many bytes to read; nil means len(Buffer)-Offset.
	Length *int
	// Position is the file position; nil reads from the current offset.
	Position *int64
}

// StatOptions is the options bag of stat, lstat and fstat.
type StatOptions struct {
	// BigInt selects the [*BigIntStats] view.
	BigInt bool
}

// MkdirOptions is the options bag of mkdir.
type MkdirOptions struct {
	Recursive bool
	// Mode defaults to 0o777.
	Mode uint32
}

// ReaddirOptions is the options bag of readdir.
type ReaddirOptions struct {
	Encoding string
	// WithFileTypes returns [*Dirent] values instead of names.
	WithFileTypes bool
}

// RmdirOptions is the options bag of rmdir.
type RmdirOptions struct {
	// Recursive removes the whole tree.
	Recursive bool
}

// RmOptions is the options bag of rm.
type RmOptions struct {
	Recursive bool
	// Force ignores a missing path.
	Force bool
}

// ReadFileOptions is the options bag of readFile.
type ReadFileOptions struct {
	// Encoding makes string results decode with it.
	Encoding string
	// Flag defaults to "r".
	Flag any
}

// WriteFileOptions is the options bag of writeFile and appendFile.
type WriteFileOptions struct {
	// Encoding encodes string data; default utf8.
	Encoding string
	// Flag defaults to "w" for writeFile and "a" for appendFile.
	Flag any
	// Mode defaults to 0o666.
	Mode uint32
}

// EncodingOptions is the options bag of readlink, realpath and mkdtemp.
type EncodingOptions struct {
	Encoding string
}

// OpendirOptions is the options bag of opendir.
type OpendirOptions struct {
	Encoding string
	// BufferSize is accepted and ignored; entries are pulled one at a time.
	BufferSize int
}

// WatchOptions is the options bag of watch.
type WatchOptions struct {
	Encoding string
	// Persistent and Recursive are accepted and ignored.
	Persistent *bool
	Recursive  bool
}

// WatchFileOptions is the options bag of watchFile.
type WatchFileOptions struct {
	// Interval defaults to [Options.PollInterval].
	Interval time.Duration
	// Persistent is accepted and ignored.
	Persistent *bool
}

// ReadStreamOptions configures [FS.CreateReadStream].
type ReadStreamOptions struct {
	// Flags defaults to "r".
	Flags any
	// Encoding makes [ReadStream.OnText] listeners receive decoded chunks.
	Encoding string
	// Fd uses an already open descriptor; no open happens.
	Fd *int
	// Mode defaults to 0o666.
	Mode uint32
	// AutoClose defaults to true.
	AutoClose *bool
	// EmitClose defaults to true.
	EmitClose *bool
	// Start and End bound the byte window, both inclusive.
	Start *int64
	End   *int64
	// HighWaterMark is the chunk size; default [Options.HighWaterMark].
	HighWaterMark int
}

// WriteStreamOptions configures [FS.CreateWriteStream].
type WriteStreamOptions struct {
	// Flags defaults to "w".
	Flags any
	// Encoding encodes string chunks; default utf8.
	Encoding string
	Fd       *int
	// Mode defaults to 0o666.
	Mode uint32
	// AutoClose defaults to true.
	AutoClose *bool
	// EmitClose defaults to true.
	EmitClose *bool
	// Start writes at this offset and tracks the position locally.
	Start *int64
}
