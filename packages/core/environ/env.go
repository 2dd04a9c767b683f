package environ

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"
)

// Protocol keys live under ReservedPrefix and pass through a base env
// unchecked.
const (
	ReservedPrefix = "hitrack."

	KeyVersion      = "hitrack.version"
	KeyInput        = "hitrack.input"
	KeyErrors       = "hitrack.errors"
	KeyMultithread  = "hitrack.multithread"
	KeyMultiprocess = "hitrack.multiprocess"
	KeyRunOnce      = "hitrack.run_once"
	KeyURLScheme    = "hitrack.url_scheme"

	KeyRequestMethod = "REQUEST_METHOD"
	KeyServerName    = "SERVER_NAME"
	KeyServerPort    = "SERVER_PORT"
	KeyQueryString   = "QUERY_STRING"
	KeyPathInfo      = "PATH_INFO"
	KeyHTTPS         = "HTTPS"
	KeyScriptName    = "SCRIPT_NAME"
	KeyContentLength = "CONTENT_LENGTH"
	KeyContentType   = "CONTENT_TYPE"
	KeyCookie        = "HTTP_COOKIE"

	HeaderPrefix = "HTTP_"
)

// Version is the protocol version stored under KeyVersion.
var Version = []int{1, 3}

// Env is an insertion-ordered map of environment entries. The zero value is
// not usable; use New.
type Env struct {
	keys   []string
	values map[string]any
}

// New returns an empty Env.
func New() *Env {
	return &Env{values: make(map[string]any)}
}

// FromMap returns an Env holding m's entries in sorted key order.
func FromMap(m map[string]string) *Env {
	e := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		e.Set(k, m[k])
	}
	return e
}

// Set stores v under k. A new key is appended; an existing one keeps its
// position.
func (e *Env) Set(k string, v any) *Env {
	if _, ok := e.values[k]; !ok {
		e.keys = append(e.keys, k)
	}
	e.values[k] = v
	return e
}

// Get returns the value stored under k.
func (e *Env) Get(k string) (any, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.values[k]
	return v, ok
}

// String returns the value under k if it is a string, "" otherwise.
func (e *Env) String(k string) string {
	v, _ := e.Get(k)
	s, _ := v.(string)
	return s
}

// Has reports whether k is present.
func (e *Env) Has(k string) bool {
	_, ok := e.Get(k)
	return ok
}

// Delete removes k.
func (e *Env) Delete(k string) {
	if _, ok := e.values[k]; !ok {
		return
	}
	delete(e.values, k)
	e.keys = slices.DeleteFunc(e.keys, func(s string) bool { return s == k })
}

// Keys returns the keys in insertion order.
func (e *Env) Keys() []string {
	if e == nil {
		return nil
	}
	return slices.Clone(e.keys)
}

// Len returns the number of entries.
func (e *Env) Len() int {
	if e == nil {
		return 0
	}
	return len(e.keys)
}

// All iterates over the entries in insertion order.
func (e *Env) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if e == nil {
			return
		}
		for _, k := range e.keys {
			if !yield(k, e.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy.
func (e *Env) Clone() *Env {
	c := New()
	for k, v := range e.All() {
		c.Set(k, v)
	}
	return c
}

// Merge returns a copy of e with other's entries applied on top.
func (e *Env) Merge(other *Env) *Env {
	c := e.Clone()
	for k, v := range other.All() {
		c.Set(k, v)
	}
	return c
}

// Map returns the entries as a plain map.
func (e *Env) Map() map[string]any {
	m := make(map[string]any, e.Len())
	for k, v := range e.All() {
		m[k] = v
	}
	return m
}

// Input returns the request body reader, or nil.
func (e *Env) Input() *bytes.Reader {
	v, _ := e.Get(KeyInput)
	r, _ := v.(*bytes.Reader)
	return r
}

// Body returns the whole request body regardless of how much of the input
// has been read.
func (e *Env) Body() []byte {
	return readerBytes(e.Input())
}

func readerBytes(r *bytes.Reader) []byte {
	if r == nil || r.Size() == 0 {
		return nil
	}
	buf := make([]byte, r.Size())
	n, _ := r.ReadAt(buf, 0)
	return buf[:n]
}

// MarshalJSON renders the entries as an object in insertion order. The input
// and error streams are rendered as their text.
func (e *Env) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(e.Display(k))
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Display returns a printable form of the value under k.
func (e *Env) Display(k string) any {
	v, _ := e.Get(k)
	switch x := v.(type) {
	case *bytes.Reader:
		return string(readerBytes(x))
	case *bytes.Buffer:
		return x.String()
	default:
		return v
	}
}
