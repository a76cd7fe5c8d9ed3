package nodefs

import (
	"iter"
	"sync"

	"github.com/calvinalkan/nodefs/pkg/fs"
)

// DirentCallback receives one entry from [Dir.Read]; a nil entry means the
// directory is exhausted.
type DirentCallback = func(err error, entry *Dirent)

// Dir is an open directory cursor returned by [FS.OpendirSync].
//
// Entries are resolved lazily, one per read, with the same type policy as
// readdir with file types. Reading or closing a closed Dir fails with
// ERR_DIR_CLOSED.
type Dir struct {
	f    *FS
	path string
	enc  Encoding

	mu     sync.Mutex
	it     fs.DirIterator
	closed bool
}

// Path returns the path the directory was opened with.
func (d *Dir) Path() string { return d.path }

// ReadSync returns the next entry, or nil at the end.
func (d *Dir) ReadSync() (*Dirent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, closedError(CodeDirClosed, "Directory handle was closed")
	}

	name, ok, err := d.it.Next()
	if err := d.f.sys("readdir", pathTarget(d.path), err); err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	return d.f.newDirent(d.path, name, d.enc), nil
}

// Read is the callback form of [Dir.ReadSync].
func (d *Dir) Read(cb DirentCallback) error {
	return async(d.f, d.ReadSync, valueCallback(cb))
}

// CloseSync releases the cursor.
func (d *Dir) CloseSync() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return closedError(CodeDirClosed, "Directory handle was closed")
	}

	d.closed = true

	return d.f.sys("closedir", pathTarget(d.path), d.it.Close())
}

// Close is the callback form of [Dir.CloseSync].
func (d *Dir) Close(cb Callback) error {
	return async(d.f, void(d.CloseSync), voidCallback(cb))
}

// Entries iterates the remaining entries and closes the Dir when the loop
// ends, whether by exhaustion, error or break. A read error is yielded once
// and ends the iteration.
func (d *Dir) Entries() iter.Seq2[*Dirent, error] {
	return func(yield func(*Dirent, error) bool) {
		defer func() {
			d.mu.Lock()
			open := !d.closed
			d.mu.Unlock()

			if open {
				_ = d.CloseSync()
			}
		}()

		for {
			entry, err := d.ReadSync()
			if err != nil {
				yield(nil, err)

				return
			}

			if entry == nil || !yield(entry, nil) {
				return
			}
		}
	}
}
