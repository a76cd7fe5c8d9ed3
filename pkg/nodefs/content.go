package nodefs

// Content is the result of a readFile call. It holds the raw bytes and the
// encoding requested by the caller; with no encoding the caller asked for
// bytes.
type Content struct {
	data []byte
	enc  Encoding
}

// Bytes returns the file contents.
func (c Content) Bytes() []byte { return c.data }

// String decodes the contents with the requested encoding, or UTF-8 when
// none was requested.
func (c Content) String() string { return c.enc.Decode(c.data) }

// Encoding returns the requested encoding, or "" for raw bytes.
func (c Content) Encoding() Encoding { return c.enc }

// IsText reports whether an encoding was requested.
func (c Content) IsText() bool { return c.enc != "" }

// Listing is the result of a readdir call. Exactly one of Names and Entries
// is set, matching whether file types were requested.
type Listing struct {
	Names   []string
	Entries []*Dirent
}

// Len returns the number of entries.
func (l Listing) Len() int {
	if l.Entries != nil {
		return len(l.Entries)
	}

	return len(l.Names)
}
