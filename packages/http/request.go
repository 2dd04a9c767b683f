package http

import (
	"maps"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/abdul-hamid-achik/hitrack/packages/multipart"
	"github.com/abdul-hamid-achik/hitrack/packages/query"
)

type Request struct {
	Method  string
	Path    string
	Options environ.Options
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method: strings.ToUpper(method),
		Path:   path,
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Options.Headers == nil {
		r.Options.Headers = make(map[string]string)
	}
	r.Options.Headers[key] = value
	return r
}

func (r *Request) SetHeaders(headers map[string]string) *Request {
	for k, v := range headers {
		r.SetHeader(k, v)
	}
	return r
}

func (r *Request) SetQuery(q query.Query) *Request {
	r.Options.Query = q
	return r
}

func (r *Request) SetForm(q query.Query) *Request {
	r.Options.Form = q
	return r
}

func (r *Request) SetJSON(v any) *Request {
	r.Options.JSON = v
	return r
}

func (r *Request) SetMultipart(src multipart.Source) *Request {
	r.Options.Multipart = src
	return r
}

// SetInput sets a raw body. It is ignored when a form, JSON or multipart
// body is also set.
func (r *Request) SetInput(body []byte) *Request {
	r.Options.Input = body
	return r
}

func (r *Request) SetCookies(c cookie.Cookies) *Request {
	r.Options.Cookies = c
	return r
}

// SetEnv sets extra env entries applied after the standard keys.
func (r *Request) SetEnv(e *environ.Env) *Request {
	r.Options.Env = e
	return r
}

// options returns a copy of the request options with defaults and base
// applied underneath.
func (r *Request) options(defaults map[string]string, base *environ.Env) *environ.Options {
	opts := r.Options

	headers := maps.Clone(defaults)
	if headers == nil {
		headers = make(map[string]string)
	}
	for k, v := range r.Options.Headers {
		for d := range headers {
			if environ.HeaderKey(d) == environ.HeaderKey(k) {
				delete(headers, d)
			}
		}
		headers[k] = v
	}
	opts.Headers = headers

	if base.Len() > 0 {
		opts.Env = base.Merge(r.Options.Env)
	}
	return &opts
}
