package nodefs

import (
	"github.com/calvinalkan/nodefs/pkg/fs"
)

// =============================================================================
// readFile
// =============================================================================

// ReadFileSync returns the contents of path. Optional args:
// [ReadFileOptions | encoding]. The [Content] remembers the requested
// encoding for [Content.String].
func (f *FS) ReadFileSync(path string, args ...any) (Content, error) {
	l, err := syncArgs("readFile", args)
	if err != nil {
		return Content{}, err
	}

	a, err := checkReadFile(path, l)
	if err != nil {
		return Content{}, err
	}

	return f.readFile(path, a)
}

// ReadFile is the callback form of [FS.ReadFileSync]. The continuation is a
// [BytesCallback], a [StringCallback] (decoded with the requested encoding,
// utf8 by default) or a [ContentCallback].
func (f *FS) ReadFile(path string, args ...any) error {
	l, err := splitArgs("readFile", args)
	if err != nil {
		return err
	}

	a, err := checkReadFile(path, l)
	if err != nil {
		return err
	}

	var deliver func(Content, error)

	switch cb := l.cb.(type) {
	case nil:
	case BytesCallback:
		deliver = func(c Content, err error) { cb(err, c.Bytes()) }
	case StringCallback:
		deliver = func(c Content, err error) {
			if err != nil {
				cb(err, "")

				return
			}

			cb(nil, c.String())
		}
	case ContentCallback:
		deliver = valueCallback(cb)
	default:
		return invalidArgType("callback", "func(error, []byte), func(error, string) or func(error, Content)", l.cb)
	}

	return async(f, func() (Content, error) { return f.readFile(path, a) }, deliver)
}

// ReadFile is the promise form of [FS.ReadFileSync].
func (p *Promises) ReadFile(path string, args ...any) *Promise[Content] {
	l, err := syncArgs("readFile", args)
	if err != nil {
		return rejected[Content](err)
	}

	a, err := checkReadFile(path, l)
	if err != nil {
		return rejected[Content](err)
	}

	return promise(p.f, func() (Content, error) { return p.f.readFile(path, a) })
}

func checkReadFile(path string, l argList) (readFileArgs, error) {
	if err := validatePath("path", path); err != nil {
		return readFileArgs{}, err
	}

	return parseReadFile(l)
}

func (f *FS) readFile(path string, a readFileArgs) (Content, error) {
	if a.flags == O_RDONLY {
		data, err := f.provider.ReadFile(path)
		if err := f.sys("open", pathTarget(path), err); err != nil {
			return Content{}, err
		}

		return Content{data: data, enc: a.enc}, nil
	}

	fd, err := f.open(path, openArgs{flags: a.flags, mode: 0o666})
	if err != nil {
		return Content{}, err
	}

	data, rerr := f.readAll(fd)
	cerr := f.closeFd(fd)

	if rerr != nil {
		return Content{}, rerr
	}

	if cerr != nil {
		return Content{}, cerr
	}

	return Content{data: data, enc: a.enc}, nil
}

// readAll reads fd from its current offset to end of file.
func (f *FS) readAll(fd int) ([]byte, error) {
	var out []byte

	buf := make([]byte, f.opts.ReadBufferSize)

	for {
		n, err := f.read(fd, readArgs{buf: buf, length: len(buf), pos: fs.CurrentPosition})
		if err != nil {
			return nil, err
		}

		if n == 0 {
			return out, nil
		}

		out = append(out, buf[:n]...)
	}
}

// =============================================================================
// writeFile / appendFile
// =============================================================================

// WriteFileSync replaces the contents of path with data ([]byte or string).
// Optional args: [WriteFileOptions | encoding].
//
// Without a Flag or Mode option the provider's whole-file write is used;
// otherwise the file is opened with them, written and closed.
func (f *FS) WriteFileSync(path string, data any, args ...any) error {
	l, err := syncArgs("writeFile", args)
	if err != nil {
		return err
	}

	a, b, err := checkWriteFile(path, data, l, "w")
	if err != nil {
		return err
	}

	return f.writeFile(path, b, a)
}

// WriteFile is the callback form of [FS.WriteFileSync].
func (f *FS) WriteFile(path string, data any, args ...any) error {
	l, err := splitArgs("writeFile", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	a, b, err := checkWriteFile(path, data, l, "w")
	if err != nil {
		return err
	}

	return async(f, void(func() error { return f.writeFile(path, b, a) }), voidCallback(cb))
}

// WriteFile is the promise form of [FS.WriteFileSync].
func (p *Promises) WriteFile(path string, data any, args ...any) *Promise[struct{}] {
	l, err := syncArgs("writeFile", args)
	if err != nil {
		return rejected[struct{}](err)
	}

	a, b, err := checkWriteFile(path, data, l, "w")
	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.writeFile(path, b, a) }))
}

func checkWriteFile(path string, data any, l argList, flag string) (writeFileArgs, []byte, error) {
	if err := validatePath("path", path); err != nil {
		return writeFileArgs{}, nil, err
	}

	a, err := parseWriteFile(l, flag)
	if err != nil {
		return a, nil, err
	}

	b, err := toBytes("data", data, a.enc)

	return a, b, err
}

func (f *FS) writeFile(path string, data []byte, a writeFileArgs) error {
	if !a.flagSet && a.mode == 0o666 {
		return f.sys("open", pathTarget(path), f.provider.WriteFile(path, data))
	}

	return f.writeVia(path, data, a)
}

// writeVia opens path with the requested flags and mode, writes data and
// closes. A write failure wins over a close failure.
func (f *FS) writeVia(path string, data []byte, a writeFileArgs) error {
	fd, err := f.open(path, openArgs{flags: a.flags, mode: a.mode})
	if err != nil {
		return err
	}

	werr := f.writeAll(fd, data)
	cerr := f.closeFd(fd)

	if werr != nil {
		return werr
	}

	return cerr
}

// writeAll writes data at the current offset of fd, continuing after short
// writes.
func (f *FS) writeAll(fd int, data []byte) error {
	for len(data) > 0 {
		n, err := f.write(fd, writeArgs{buf: data, length: len(data), pos: fs.CurrentPosition})
		if err != nil {
			return err
		}

		if n == 0 {
			return negativeTransfer("write", fd, 0)
		}

		data = data[n:]
	}

	return nil
}

// AppendFileSync appends data to file, which is a path or a descriptor.
// Optional args: [WriteFileOptions | encoding].
//
// A path is opened with Flag (default "a") and Mode (default 0o666),
// written and closed. A descriptor is written at its current offset and
// left open.
func (f *FS) AppendFileSync(file, data any, args ...any) error {
	l, err := syncArgs("appendFile", args)
	if err != nil {
		return err
	}

	t, a, b, err := checkAppendFile(file, data, l)
	if err != nil {
		return err
	}

	return f.appendFile(t, b, a)
}

// AppendFile is the callback form of [FS.AppendFileSync].
func (f *FS) AppendFile(file, data any, args ...any) error {
	l, err := splitArgs("appendFile", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	t, a, b, err := checkAppendFile(file, data, l)
	if err != nil {
		return err
	}

	return async(f, void(func() error { return f.appendFile(t, b, a) }), voidCallback(cb))
}

// AppendFile is the promise form of [FS.AppendFileSync].
func (p *Promises) AppendFile(file, data any, args ...any) *Promise[struct{}] {
	l, err := syncArgs("appendFile", args)
	if err != nil {
		return rejected[struct{}](err)
	}

	t, a, b, err := checkAppendFile(file, data, l)
	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.appendFile(t, b, a) }))
}

func checkAppendFile(file, data any, l argList) (target, writeFileArgs, []byte, error) {
	var t target

	switch v := file.(type) {
	case string:
		if err := validatePath("path", v); err != nil {
			return t, writeFileArgs{}, nil, err
		}

		t = pathTarget(v)
	default:
		fd, ok := asInt(file)
		if !ok {
			return t, writeFileArgs{}, nil, invalidArgType("path", "string or a file descriptor", file)
		}

		if err := validateFd(int(fd)); err != nil {
			return t, writeFileArgs{}, nil, err
		}

		t = fdTarget(int(fd))
	}

	a, err := parseWriteFile(l, "a")
	if err != nil {
		return t, a, nil, err
	}

	b, err := toBytes("data", data, a.enc)

	return t, a, b, err
}

func (f *FS) appendFile(t target, data []byte, a writeFileArgs) error {
	if t.isFd() {
		return f.writeAll(t.fd, data)
	}

	return f.writeVia(t.path, data, a)
}
