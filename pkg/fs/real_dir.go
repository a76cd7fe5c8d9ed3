//go:build linux

package fs

import (
	"errors"
	"io"
	"os"
)

// dirBatch is how many names [realDir] pulls from the kernel per refill.
const dirBatch = 32

// realDir is a lazy [DirIterator] over an open directory.
type realDir struct {
	f       *os.File
	pending []string
	eof     bool
	closed  bool
}

func (d *realDir) Next() (string, bool, error) {
	if d.closed {
		return "", false, os.ErrClosed
	}

	for len(d.pending) == 0 {
		if d.eof {
			return "", false, nil
		}

		names, err := d.f.Readdirnames(dirBatch)
		if errors.Is(err, io.EOF) {
			d.eof = true

			continue
		}

		if err != nil {
			return "", false, err
		}

		d.pending = names
	}

	name := d.pending[0]
	d.pending = d.pending[1:]

	return name, true, nil
}

func (d *realDir) Close() error {
	if d.closed {
		return nil
	}

	d.closed = true

	return d.f.Close()
}
