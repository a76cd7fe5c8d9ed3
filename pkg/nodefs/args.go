package nodefs

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/calvinalkan/nodefs/pkg/fs"
)

// =============================================================================
// Call normalization
//
// Overloaded entry points take their optional arguments as `args ...any`.
// splitArgs peels the trailing function (the continuation) off the tail; a
// per-entry-point grammar then maps what remains to a canonical struct. The
// grammars are plain functions over argList so each shape can be tested
// without touching a provider.
//
// Absent trailing arguments and explicit nils are equivalent.
// =============================================================================

// argList is the optional tail of one call.
type argList struct {
	op   string
	args []any
	cb   any
}

// splitArgs separates the continuation from the rest of the tail. A function
// anywhere but last is rejected.
func splitArgs(op string, args []any) (argList, error) {
	l := argList{op: op, args: args}

	if n := len(args); n > 0 && isFunc(args[n-1]) {
		l.cb = args[n-1]
		l.args = args[:n-1]
	}

	for _, a := range l.args {
		if isFunc(a) {
			return l, invalidArgValue("callback", a, "must be the last argument")
		}
	}

	return l, nil
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

func (l argList) at(i int) any {
	if i < len(l.args) {
		return l.args[i]
	}

	return nil
}

// arity fails when more than n optional arguments were passed.
func (l argList) arity(n int) error {
	if len(l.args) > n {
		return invalidArgValue(l.op, l.args[n], "has too many arguments; extra argument")
	}

	return nil
}

// noCallback rejects a continuation on sync and promise call sites.
func (l argList) noCallback() error {
	if l.cb != nil {
		return invalidArgValue("callback", l.cb, "is not accepted by "+l.op)
	}

	return nil
}

// asOptions reports v as an options bag of type T, accepting T and *T.
func asOptions[T any](v any) (T, bool) {
	switch o := v.(type) {
	case T:
		return o, true
	case *T:
		if o == nil {
			var zero T

			return zero, true
		}

		return *o, true
	}

	var zero T

	return zero, false
}

// encodingArg reports v as an encoding shorthand.
func encodingArg(v any) (Encoding, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}

	return ParseEncoding(s)
}

// resolveEncoding validates an encoding option. Empty and "buffer" mean no
// encoding (raw bytes).
func resolveEncoding(name string) (Encoding, error) {
	if name == "" || strings.EqualFold(name, "buffer") {
		return "", nil
	}

	enc, ok := ParseEncoding(name)
	if !ok {
		return "", invalidArgValue("encoding", name, "is invalid encoding")
	}

	return enc, nil
}

func validatePath(name, path string) error {
	if strings.IndexByte(path, 0) >= 0 {
		return invalidArgValue(name, path, "must be a string without null bytes")
	}

	return nil
}

func validateFd(fd int) error {
	if fd < 0 || fd > math.MaxInt32 {
		return outOfRange("fd", ">= 0 && <= 2147483647", fd)
	}

	return nil
}

func intArg(name string, v any) (int64, error) {
	n, ok := asInt(v)
	if !ok {
		return 0, invalidArgType(name, "integer", v)
	}

	return n, nil
}

// parsePosition maps nil and -1 to [fs.CurrentPosition].
func parsePosition(v any) (int64, error) {
	switch p := v.(type) {
	case nil:
		return fs.CurrentPosition, nil
	case *int64:
		if p == nil {
			return fs.CurrentPosition, nil
		}

		v = *p
	}

	n, err := intArg("position", v)
	if err != nil {
		return 0, err
	}

	if n < -1 {
		return 0, outOfRange("position", ">= -1", v)
	}

	return n, nil
}

func checkWindow(size, off, length int) error {
	if off < 0 || off > size {
		return outOfRange("offset", ">= 0 && <= "+strconv.Itoa(size), off)
	}

	if length < 0 || length > size-off {
		return outOfRange("length", ">= 0 && <= "+strconv.Itoa(size-off), length)
	}

	return nil
}

// =============================================================================
// Grammars
// =============================================================================

type openArgs struct {
	flags int
	mode  uint32
}

// parseOpen: open(path, [flags], [mode], [cb]). Defaults "r" and 0o666.
func parseOpen(l argList) (openArgs, error) {
	a := openArgs{flags: O_RDONLY, mode: 0o666}

	if err := l.arity(2); err != nil {
		return a, err
	}

	if v := l.at(0); v != nil {
		flags, err := FlagsToBits(v)
		if err != nil {
			return a, err
		}

		a.flags = flags
	}

	if v := l.at(1); v != nil {
		mode, err := parseMode("mode", v)
		if err != nil {
			return a, err
		}

		a.mode = mode
	}

	return a, nil
}

type readArgs struct {
	buf    []byte
	off    int
	length int
	pos    int64
}

// parseRead: read(fd, ...) with tails
//
//	[]                         allocate defaultSize bytes
//	[ReadOptions]
//	[buf]
//	[buf, ReadOptions]
//	[buf, offset, [length, [position]]]
//
// defaultSize 0 makes a missing buffer an error (sync form).
func parseRead(l argList, defaultSize int) (readArgs, error) {
	if len(l.args) == 0 {
		return readFromOptions(ReadOptions{}, defaultSize)
	}

	if opts, ok := asOptions[ReadOptions](l.args[0]); ok {
		if err := l.arity(1); err != nil {
			return readArgs{}, err
		}

		return readFromOptions(opts, defaultSize)
	}

	buf, ok := l.args[0].([]byte)
	if !ok {
		return readArgs{}, invalidArgType("buffer", "[]byte", l.args[0])
	}

	if opts, ok := asOptions[ReadOptions](l.at(1)); ok && l.at(1) != nil {
		if err := l.arity(2); err != nil {
			return readArgs{}, err
		}

		opts.Buffer = buf

		return readFromOptions(opts, defaultSize)
	}

	if err := l.arity(4); err != nil {
		return readArgs{}, err
	}

	a := readArgs{buf: buf, pos: fs.CurrentPosition}

	if v := l.at(1); v != nil {
		off, err := intArg("offset", v)
		if err != nil {
			return a, err
		}

		a.off = int(off)
	}

	a.length = len(buf) - a.off

	if v := l.at(2); v != nil {
		n, err := intArg("length", v)
		if err != nil {
			return a, err
		}

		a.length = int(n)
	}

	pos, err := parsePosition(l.at(3))
	if err != nil {
		return a, err
	}

	a.pos = pos

	return a, checkWindow(len(buf), a.off, a.length)
}

func readFromOptions(opts ReadOptions, defaultSize int) (readArgs, error) {
	buf := opts.Buffer
	if buf == nil {
		if defaultSize <= 0 {
			return readArgs{}, invalidArgType("buffer", "[]byte", nil)
		}

		buf = make([]byte, defaultSize)
	}

	length := len(buf) - opts.Offset
	if opts.Length != nil {
		length = *opts.Length
	}

	pos, err := parsePosition(opts.Position)
	if err != nil {
		return readArgs{}, err
	}

	a := readArgs{buf: buf, off: opts.Offset, length: length, pos: pos}

	return a, checkWindow(len(buf), a.off, a.length)
}

type writeArgs struct {
	buf    []byte
	off    int
	length int
	pos    int64

	// text is set for string writes; buf then holds its encoded bytes.
	text     string
	isString bool
}

// parseWrite: write(fd, data, ...) with tails
//
//	bytes:  [offset, [length, [position]]]
//	string: [position, [encoding]] | [encoding]
func parseWrite(data any, l argList) (writeArgs, error) {
	switch d := data.(type) {
	case []byte:
		if err := l.arity(3); err != nil {
			return writeArgs{}, err
		}

		a := writeArgs{buf: d, pos: fs.CurrentPosition}

		if v := l.at(0); v != nil {
			off, err := intArg("offset", v)
			if err != nil {
				return a, err
			}

			a.off = int(off)
		}

		a.length = len(d) - a.off

		if v := l.at(1); v != nil {
			n, err := intArg("length", v)
			if err != nil {
				return a, err
			}

			a.length = int(n)
		}

		pos, err := parsePosition(l.at(2))
		if err != nil {
			return a, err
		}

		a.pos = pos

		return a, checkWindow(len(d), a.off, a.length)

	case string:
		if err := l.arity(2); err != nil {
			return writeArgs{}, err
		}

		a := writeArgs{text: d, isString: true, pos: fs.CurrentPosition}
		enc := UTF8

		if e, ok := encodingArg(l.at(0)); ok {
			if err := l.arity(1); err != nil {
				return a, err
			}

			enc = e
		} else {
			pos, err := parsePosition(l.at(0))
			if err != nil {
				return a, err
			}

			a.pos = pos

			if v := l.at(1); v != nil {
				name, _ := v.(string)

				e, err := resolveEncoding(name)
				if err != nil || e == "" {
					return a, invalidArgValue("encoding", v, "is invalid encoding")
				}

				enc = e
			}
		}

		a.buf = enc.Encode(d)
		a.length = len(a.buf)

		return a, nil
	}

	return writeArgs{}, invalidArgType("buffer", "string or []byte", data)
}

// parseStat: stat(path, [StatOptions], [cb]). The continuation type also
// selects the view: a [BigIntStatsCallback] implies BigInt.
func parseStat(l argList) (StatOptions, error) {
	if err := l.arity(1); err != nil {
		return StatOptions{}, err
	}

	opts := StatOptions{}

	if v := l.at(0); v != nil {
		o, ok := asOptions[StatOptions](v)
		if !ok {
			return opts, invalidArgType("options", "StatOptions", v)
		}

		opts = o
	}

	switch l.cb.(type) {
	case nil, FileStatsCallback:
	case BigIntStatsCallback:
		opts.BigInt = true
	case StatsCallback:
		if opts.BigInt {
			return opts, invalidArgType("callback", "func(error, *BigIntStats) when BigInt is set", l.cb)
		}
	default:
		return opts, invalidArgType("callback", "func(error, *Stats)", l.cb)
	}

	return opts, nil
}

// parseMkdir: mkdir(path, [mode | MkdirOptions], [cb]).
func parseMkdir(l argList) (MkdirOptions, error) {
	opts := MkdirOptions{Mode: 0o777}

	if err := l.arity(1); err != nil {
		return opts, err
	}

	v := l.at(0)
	if v == nil {
		return opts, nil
	}

	if o, ok := asOptions[MkdirOptions](v); ok {
		if o.Mode == 0 {
			o.Mode = 0o777
		}

		return o, nil
	}

	mode, err := parseMode("mode", v)
	if err != nil {
		return opts, err
	}

	opts.Mode = mode

	return opts, nil
}

type readdirArgs struct {
	enc       Encoding
	withTypes bool
}

// parseReaddir: readdir(path, [ReaddirOptions | encoding], [cb]). A
// [DirentsCallback] implies WithFileTypes.
func parseReaddir(l argList) (readdirArgs, error) {
	var a readdirArgs

	if err := l.arity(1); err != nil {
		return a, err
	}

	switch v := l.at(0); {
	case v == nil:
	default:
		if o, ok := asOptions[ReaddirOptions](v); ok {
			enc, err := resolveEncoding(o.Encoding)
			if err != nil {
				return a, err
			}

			a.enc, a.withTypes = enc, o.WithFileTypes

			break
		}

		enc, ok := encodingArg(v)
		if !ok {
			return a, invalidArgType("options", "ReaddirOptions or an encoding", v)
		}

		a.enc = enc
	}

	switch l.cb.(type) {
	case nil:
	case DirentsCallback:
		a.withTypes = true
	case NamesCallback:
		if a.withTypes {
			return a, invalidArgType("callback", "func(error, []*Dirent) when WithFileTypes is set", l.cb)
		}
	default:
		return a, invalidArgType("callback", "func(error, []string)", l.cb)
	}

	return a, nil
}

// parseRmdir: rmdir(path, [RmdirOptions], [cb]).
func parseRmdir(l argList) (RmdirOptions, error) {
	return optionsOnly[RmdirOptions](l, "RmdirOptions")
}

// parseRm: rm(path, [RmOptions], [cb]).
func parseRm(l argList) (RmOptions, error) {
	return optionsOnly[RmOptions](l, "RmOptions")
}

// parseOpendir: opendir(path, [OpendirOptions], [cb]).
func parseOpendir(l argList) (OpendirOptions, error) {
	return optionsOnly[OpendirOptions](l, "OpendirOptions")
}

func optionsOnly[T any](l argList, name string) (T, error) {
	var zero T

	if err := l.arity(1); err != nil {
		return zero, err
	}

	v := l.at(0)
	if v == nil {
		return zero, nil
	}

	o, ok := asOptions[T](v)
	if !ok {
		return zero, invalidArgType("options", name, v)
	}

	return o, nil
}

type readFileArgs struct {
	enc   Encoding
	flags int
}

// parseReadFile: readFile(path, [ReadFileOptions | encoding], [cb]).
func parseReadFile(l argList) (readFileArgs, error) {
	a := readFileArgs{flags: O_RDONLY}

	if err := l.arity(1); err != nil {
		return a, err
	}

	v := l.at(0)
	if v == nil {
		return a, nil
	}

	if o, ok := asOptions[ReadFileOptions](v); ok {
		enc, err := resolveEncoding(o.Encoding)
		if err != nil {
			return a, err
		}

		flags, err := FlagsToBits(o.Flag)
		if err != nil {
			return a, err
		}

		a.enc, a.flags = enc, flags

		return a, nil
	}

	enc, ok := encodingArg(v)
	if !ok {
		return a, invalidArgType("options", "ReadFileOptions or an encoding", v)
	}

	a.enc = enc

	return a, nil
}

type writeFileArgs struct {
	enc   Encoding
	flags int
	mode  uint32
	// flagSet records an explicit flag, which routes writeFile through
	// open/write/close instead of the provider's whole-file write.
	flagSet bool
}

// parseWriteFile: writeFile/appendFile(file, data, [WriteFileOptions |
// encoding], [cb]). defaultFlag is "w" or "a".
func parseWriteFile(l argList, defaultFlag string) (writeFileArgs, error) {
	flags, _ := FlagsToBits(defaultFlag)
	a := writeFileArgs{enc: UTF8, flags: flags, mode: 0o666}

	if err := l.arity(1); err != nil {
		return a, err
	}

	v := l.at(0)
	if v == nil {
		return a, nil
	}

	if o, ok := asOptions[WriteFileOptions](v); ok {
		if o.Encoding != "" {
			enc, err := resolveEncoding(o.Encoding)
			if err != nil {
				return a, err
			}

			if enc != "" {
				a.enc = enc
			}
		}

		if o.Flag != nil {
			flags, err := FlagsToBits(o.Flag)
			if err != nil {
				return a, err
			}

			a.flags, a.flagSet = flags, true
		}

		if o.Mode != 0 {
			a.mode = o.Mode
		}

		return a, nil
	}

	enc, ok := encodingArg(v)
	if !ok {
		return a, invalidArgType("options", "WriteFileOptions or an encoding", v)
	}

	a.enc = enc

	return a, nil
}

// parseIntTail: copyFile/access/truncate-style [n], [cb] with a default.
func parseIntTail(l argList, name string, def int64) (int64, error) {
	if err := l.arity(1); err != nil {
		return 0, err
	}

	v := l.at(0)
	if v == nil {
		return def, nil
	}

	return intArg(name, v)
}

// parseSymlinkType: symlink(target, path, [type], [cb]). The type is
// validated and otherwise ignored.
func parseSymlinkType(l argList) error {
	if err := l.arity(1); err != nil {
		return err
	}

	switch v := l.at(0).(type) {
	case nil:
		return nil
	case string:
		switch v {
		case "file", "dir", "junction":
			return nil
		}

		return invalidArgValue("type", v, "must be one of: 'dir', 'file', 'junction'")
	default:
		return invalidArgType("type", "string", v)
	}
}

// parseEncodingOption: readlink/realpath/mkdtemp(path, [EncodingOptions |
// encoding], [cb]).
func parseEncodingOption(l argList) (Encoding, error) {
	if err := l.arity(1); err != nil {
		return "", err
	}

	v := l.at(0)
	if v == nil {
		return "", nil
	}

	if o, ok := asOptions[EncodingOptions](v); ok {
		return resolveEncoding(o.Encoding)
	}

	if enc, ok := encodingArg(v); ok {
		return enc, nil
	}

	if s, ok := v.(string); ok {
		return resolveEncoding(s)
	}

	return "", invalidArgType("options", "EncodingOptions or an encoding", v)
}

// parseVectorPosition: readv/writev(fd, bufs, [position], [cb]).
func parseVectorPosition(l argList) (int64, error) {
	if err := l.arity(1); err != nil {
		return 0, err
	}

	return parsePosition(l.at(0))
}

// parseWatch: watch(path, [WatchOptions | encoding], [listener]).
func parseWatch(l argList) (WatchOptions, WatchListener, error) {
	var opts WatchOptions

	if err := l.arity(1); err != nil {
		return opts, nil, err
	}

	if v := l.at(0); v != nil {
		if o, ok := asOptions[WatchOptions](v); ok {
			opts = o
		} else if enc, ok := encodingArg(v); ok {
			opts.Encoding = string(enc)
		} else {
			return opts, nil, invalidArgType("options", "WatchOptions or an encoding", v)
		}
	}

	if _, err := resolveEncoding(opts.Encoding); err != nil {
		return opts, nil, err
	}

	switch cb := l.cb.(type) {
	case nil:
		return opts, nil, nil
	case WatchListener:
		return opts, cb, nil
	default:
		return opts, nil, invalidArgType("listener", "func(event, filename string)", l.cb)
	}
}

// parseWatchFile: watchFile(path, [WatchFileOptions], listener). The
// listener is required.
func parseWatchFile(l argList, defaultInterval time.Duration) (WatchFileOptions, StatListenerFunc, error) {
	opts, err := optionsOnly[WatchFileOptions](l, "WatchFileOptions")
	if err != nil {
		return opts, nil, err
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}

	listener, ok := l.cb.(StatListenerFunc)
	if !ok {
		return opts, nil, invalidArgType("listener", "func(curr, prev *Stats)", l.cb)
	}

	return opts, listener, nil
}

// parseReadStream: createReadStream(path, [ReadStreamOptions | encoding]).
func parseReadStream(l argList) (ReadStreamOptions, error) {
	if err := l.noCallback(); err != nil {
		return ReadStreamOptions{}, err
	}

	if enc, ok := encodingArg(l.at(0)); ok {
		if err := l.arity(1); err != nil {
			return ReadStreamOptions{}, err
		}

		return ReadStreamOptions{Encoding: string(enc)}, nil
	}

	opts, err := optionsOnly[ReadStreamOptions](l, "ReadStreamOptions or an encoding")
	if err != nil {
		return opts, err
	}

	if _, err := resolveEncoding(opts.Encoding); err != nil {
		return opts, err
	}

	if opts.Start != nil && *opts.Start < 0 {
		return opts, outOfRange("start", ">= 0", *opts.Start)
	}

	if opts.End != nil && opts.Start != nil && *opts.End < *opts.Start {
		return opts, outOfRange("start", "<= \"end\" (here: "+strconv.FormatInt(*opts.End, 10)+")", *opts.Start)
	}

	return opts, nil
}

// parseWriteStream: createWriteStream(path, [WriteStreamOptions | encoding]).
func parseWriteStream(l argList) (WriteStreamOptions, error) {
	if err := l.noCallback(); err != nil {
		return WriteStreamOptions{}, err
	}

	if enc, ok := encodingArg(l.at(0)); ok {
		if err := l.arity(1); err != nil {
			return WriteStreamOptions{}, err
		}

		return WriteStreamOptions{Encoding: string(enc)}, nil
	}

	opts, err := optionsOnly[WriteStreamOptions](l, "WriteStreamOptions or an encoding")
	if err != nil {
		return opts, err
	}

	if _, err := resolveEncoding(opts.Encoding); err != nil {
		return opts, err
	}

	if opts.Start != nil && *opts.Start < 0 {
		return opts, outOfRange("start", ">= 0", *opts.Start)
	}

	return opts, nil
}
