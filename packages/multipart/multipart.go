// Package multipart encodes multipart/form-data bodies.
//
// Parts are written in insertion order. Values are opaque bytes; nothing is
// transcoded.
package multipart

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"

	"github.com/abdul-hamid-achik/hitrack/packages/token"
	"github.com/hashicorp/go-multierror"
)

// DefaultContentType is used when a filename has no known extension.
const DefaultContentType = "application/octet-stream"

// MimeLookup maps a file extension (with leading dot) to a content type,
// returning def when the extension is unknown. Tests may replace it.
var MimeLookup = func(ext, def string) string {
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return def
}

// GuessContentType returns the content type for filename's extension.
func GuessContentType(filename string) string {
	return MimeLookup(filepath.Ext(filename), DefaultContentType)
}

// File is what AddFile consumes. *os.File satisfies it.
type File interface {
	io.ReadCloser
	Name() string
}

// Part is a single form-data entry.
type Part struct {
	Name        string
	Value       []byte
	Filename    string
	ContentType string
}

// Builder accumulates parts and renders them with a fixed boundary.
type Builder struct {
	boundary string
	parts    []Part
}

// New returns a Builder using boundary, or a generated one when it is empty.
func New(boundary string) *Builder {
	if boundary == "" {
		boundary = token.New()
	}
	return &Builder{boundary: boundary}
}

// Boundary returns the boundary token.
func (b *Builder) Boundary() string {
	return b.boundary
}

// Parts returns the accumulated parts in insertion order.
func (b *Builder) Parts() []Part {
	return b.parts
}

// Len returns the number of parts.
func (b *Builder) Len() int {
	return len(b.parts)
}

// Add appends a text part. When filename is set and contentType is empty the
// content type is guessed from the filename.
func (b *Builder) Add(name, value, filename, contentType string) *Builder {
	return b.AddBytes(name, []byte(value), filename, contentType)
}

// AddBytes is Add for binary values.
func (b *Builder) AddBytes(name string, value []byte, filename, contentType string) *Builder {
	if filename != "" && contentType == "" {
		contentType = GuessContentType(filename)
	}
	b.parts = append(b.parts, Part{
		Name:        name,
		Value:       value,
		Filename:    filename,
		ContentType: contentType,
	})
	return b
}

// AddFile reads f to the end and adds it as a file part named after f's base
// name. f is always closed, also when reading fails.
func (b *Builder) AddFile(name string, f File, contentType string) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("close %s: %w", f.Name(), cerr)).ErrorOrNil()
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Name(), err)
	}

	filename := filepath.Base(f.Name())
	if contentType == "" {
		contentType = GuessContentType(filename)
	}
	b.AddBytes(name, data, filename, contentType)
	return nil
}

// Bytes renders the multipart body.
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	for _, p := range b.parts {
		buf.WriteString("--" + b.boundary + "\r\n")
		if p.Filename != "" {
			fmt.Fprintf(&buf, "Content-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\n", p.Name, p.Filename)
		} else {
			fmt.Fprintf(&buf, "Content-Disposition: form-data; name=\"%s\"\r\n", p.Name)
		}
		if p.ContentType != "" {
			buf.WriteString("Content-Type: " + p.ContentType + "\r\n")
		}
		buf.WriteString("\r\n")
		buf.Write(p.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("--" + b.boundary + "--\r\n")
	return buf.Bytes()
}

// String renders the multipart body as a string.
func (b *Builder) String() string {
	return string(b.Bytes())
}

// Source produces a Builder for a request body.
type Source interface {
	Build() (*Builder, error)
}

// Build returns b itself.
func (b *Builder) Build() (*Builder, error) {
	return b, nil
}

// Field is one entry of Fields.
type Field struct {
	Name  string
	Value any
}

// Fields builds parts in the order listed. File values become file parts,
// []byte values are added verbatim and anything else goes through fmt.Sprint.
type Fields []Field

// Build encodes the fields with a generated boundary.
func (fs Fields) Build() (*Builder, error) {
	b := New("")
	if err := fs.AppendTo(b); err != nil {
		return nil, err
	}
	return b, nil
}

// AppendTo adds the fields to b. After a failure the files of the remaining
// fields are closed unread.
func (fs Fields) AppendTo(b *Builder) error {
	for i, f := range fs {
		if err := b.addValue(f.Name, f.Value); err != nil {
			closeFiles(fs[i+1:])
			return err
		}
	}
	return nil
}

// Map is Fields keyed by name, added in sorted key order.
type Map map[string]any

// Build encodes the map with a generated boundary.
func (m Map) Build() (*Builder, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fs := make(Fields, 0, len(keys))
	for _, k := range keys {
		fs = append(fs, Field{Name: k, Value: m[k]})
	}
	return fs.Build()
}

func (b *Builder) addValue(name string, v any) error {
	switch x := v.(type) {
	case File:
		return b.AddFile(name, x, "")
	case []byte:
		b.AddBytes(name, x, "", "")
	default:
		b.Add(name, fmt.Sprint(x), "", "")
	}
	return nil
}

// closeFiles releases files that will no longer be read.
func closeFiles(fs Fields) {
	for _, f := range fs {
		if file, ok := f.Value.(File); ok {
			_ = file.Close()
		}
	}
}
