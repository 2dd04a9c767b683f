package http

import (
	"bytes"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
)

// Headers are response headers. Several Set-Cookie values are joined with
// "\n".
type Headers map[string]string

// Body is a lazily produced sequence of byte chunks. It is read once.
type Body = iter.Seq[[]byte]

// Handler serves a request env and returns status, headers and body.
type Handler interface {
	ServeEnv(e *environ.Env) (int, Headers, Body, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(e *environ.Env) (int, Headers, Body, error)

// ServeEnv calls f(e).
func (f HandlerFunc) ServeEnv(e *environ.Env) (int, Headers, Body, error) {
	return f(e)
}

// FromHTTPHandler runs a standard library handler against a response
// recorder.
func FromHTTPHandler(h http.Handler) Handler {
	return HandlerFunc(func(e *environ.Env) (int, Headers, Body, error) {
		req, err := e.Request()
		if err != nil {
			return 0, nil, nil, err
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		res := rec.Result()

		headers := make(Headers, len(res.Header))
		for k, values := range res.Header {
			sep := ", "
			if k == "Set-Cookie" {
				sep = "\n"
			}
			headers[k] = strings.Join(values, sep)
		}
		return res.StatusCode, headers, BodyReader(res.Body), nil
	})
}

// BodyBytes returns a Body yielding chunks.
func BodyBytes(chunks ...[]byte) Body {
	return func(yield func([]byte) bool) {
		for _, c := range chunks {
			if !yield(c) {
				return
			}
		}
	}
}

// BodyString returns a Body yielding the given strings.
func BodyString(chunks ...string) Body {
	return func(yield func([]byte) bool) {
		for _, c := range chunks {
			if !yield([]byte(c)) {
				return
			}
		}
	}
}

// BodyReader returns a Body reading r in chunks. r is closed once it is
// drained when it implements io.Closer.
func BodyReader(r io.Reader) Body {
	return func(yield func([]byte) bool) {
		if c, ok := r.(io.Closer); ok {
			defer c.Close()
		}
		buf := make([]byte, 32*1024)
		for {
			n, err := r.Read(buf)
			if n > 0 && !yield(bytes.Clone(buf[:n])) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}
