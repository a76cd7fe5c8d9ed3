package nodefs

import (
	"path/filepath"
)

// Dirent is a directory entry with its file type.
//
// The type comes from lstat of ParentPath/Name when the entry was listed. If
// the entry vanished between listing and lstat, the mode is 0 and every
// predicate reports false.
type Dirent struct {
	Name       string
	ParentPath string

	mode uint32
}

func (d *Dirent) IsFile() bool            { return typeBits(d.mode).IsFile() }
func (d *Dirent) IsDirectory() bool       { return typeBits(d.mode).IsDirectory() }
func (d *Dirent) IsBlockDevice() bool     { return typeBits(d.mode).IsBlockDevice() }
func (d *Dirent) IsCharacterDevice() bool { return typeBits(d.mode).IsCharacterDevice() }
func (d *Dirent) IsSymbolicLink() bool    { return typeBits(d.mode).IsSymbolicLink() }
func (d *Dirent) IsFIFO() bool            { return typeBits(d.mode).IsFIFO() }
func (d *Dirent) IsSocket() bool          { return typeBits(d.mode).IsSocket() }

// newDirent resolves the type of name inside parent. enc re-encodes the
// name for non-UTF-8 encodings.
func (f *FS) newDirent(parent, name string, enc Encoding) *Dirent {
	var mode uint32

	if rec, err := f.provider.Lstat(filepath.Join(parent, name)); err == nil {
		mode = rec.Mode & S_IFMT
	} else {
		f.log.WithError(err).WithField("entry", name).Debug("dirent: entry vanished during listing")
	}

	return &Dirent{Name: encodeName(name, enc), ParentPath: parent, mode: mode}
}

// encodeName renders a name returned by the provider in enc. Names are
// UTF-8 on the wire, so utf8 and the empty encoding are the identity.
func encodeName(name string, enc Encoding) string {
	if enc == "" || enc == UTF8 {
		return name
	}

	return enc.Decode([]byte(name))
}

var _ FileStats = (*Dirent)(nil)
