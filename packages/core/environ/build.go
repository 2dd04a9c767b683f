package environ

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/abdul-hamid-achik/hitrack/packages/multipart"
	"github.com/abdul-hamid-achik/hitrack/packages/query"
)

var (
	// ErrInvalidArgument covers malformed headers, env keys and queries.
	ErrInvalidArgument = query.ErrInvalidArgument
	// ErrConflictingArguments is returned when mutually exclusive options
	// are combined.
	ErrConflictingArguments = errors.New("conflicting arguments")
	// ErrInvalidMultipartFormat is returned when no boundary can be read
	// back from an encoded multipart body.
	ErrInvalidMultipartFormat = errors.New("invalid multipart format")
)

const (
	FormContentType      = "application/x-www-form-urlencoded"
	JSONContentType      = "application/json"
	MultipartContentType = "multipart/form-data"

	DefaultServerName = "localhost"
)

var (
	headerNamePattern = regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)
	envKeyPattern     = regexp.MustCompile(`^[A-Z]+(_[A-Z0-9]+)*$`)
	boundaryPattern   = regexp.MustCompile(`\A--(\S+)\r\n`)
)

// Options describes a request. Form, JSON and Multipart are mutually
// exclusive; Input is used only when none of them is set.
type Options struct {
	Query     query.Query
	Form      query.Query
	Multipart multipart.Source
	// JSON is sent as is when it is a string, []byte or json.RawMessage and
	// marshaled otherwise.
	JSON    any
	Input   []byte
	Headers map[string]string
	Cookies cookie.Cookies
	// Env is merged into the result after the standard keys.
	Env *Env
}

// Build assembles the environment for method and path.
func Build(method, path string, opts *Options) (*Env, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := validate(path, opts); err != nil {
		return nil, err
	}

	base := opts.Env
	https := base.String(KeyURLScheme) == "https" || base.String(KeyHTTPS) == "on"

	var queryString string
	if opts.Query != nil {
		qs, _, err := query.Encode(opts.Query)
		if err != nil {
			return nil, err
		}
		queryString = qs
	} else {
		path, queryString, _ = strings.Cut(path, "?")
	}

	body, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}

	scheme, port, httpsFlag := "http", "80", "off"
	if https {
		scheme, port, httpsFlag = "https", "443", "on"
	}

	e := New()
	e.Set(KeyVersion, slices.Clone(Version))
	e.Set(KeyInput, bytes.NewReader(body))
	e.Set(KeyErrors, &bytes.Buffer{})
	e.Set(KeyMultithread, true)
	e.Set(KeyMultiprocess, true)
	e.Set(KeyRunOnce, false)
	e.Set(KeyURLScheme, scheme)
	e.Set(KeyRequestMethod, method)
	e.Set(KeyServerName, DefaultServerName)
	e.Set(KeyServerPort, port)
	e.Set(KeyQueryString, queryString)
	e.Set(KeyPathInfo, path)
	e.Set(KeyHTTPS, httpsFlag)
	e.Set(KeyScriptName, "")
	e.Set(KeyContentLength, strconv.Itoa(len(body)))
	if len(body) > 0 {
		e.Set(KeyContentType, contentType)
	}

	for _, name := range sortedHeaderNames(opts.Headers) {
		e.Set(HeaderKey(name), opts.Headers[name])
	}

	for k, v := range base.All() {
		e.Set(k, v)
	}

	if opts.Cookies != nil {
		e.Set(KeyCookie, cookie.Append(e.String(KeyCookie), cookie.Header(opts.Cookies)))
	}

	return e, nil
}

// HeaderKey maps a header name to its env key: "X-Requested-With" becomes
// "HTTP_X_REQUESTED_WITH". Content-Length and Content-Type are not prefixed.
func HeaderKey(name string) string {
	k := strings.ReplaceAll(strings.ToUpper(name), "-", "_")
	if k == KeyContentLength || k == KeyContentType {
		return k
	}
	return HeaderPrefix + k
}

func validate(path string, opts *Options) error {
	if opts.Query != nil && strings.Contains(path, "?") {
		return conflict("query string in path", "query")
	}
	if opts.Form != nil && opts.JSON != nil {
		return conflict("form", "json")
	}
	if opts.JSON != nil && opts.Multipart != nil {
		return conflict("json", "multipart")
	}
	if opts.Multipart != nil && opts.Form != nil {
		return conflict("multipart", "form")
	}

	for name := range opts.Headers {
		if !headerNamePattern.MatchString(name) {
			return fmt.Errorf("%w: invalid http header name: %q", ErrInvalidArgument, name)
		}
	}

	for k, v := range opts.Env.All() {
		switch {
		case strings.HasPrefix(k, ReservedPrefix):
		case envKeyPattern.MatchString(k):
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%w: env value for %s should be a string but got %T", ErrInvalidArgument, k, v)
			}
		default:
			return fmt.Errorf("%w: invalid context key: %q", ErrInvalidArgument, k)
		}
	}
	return nil
}

func conflict(a, b string) error {
	return fmt.Errorf("%w: not allowed both %s and '%s' at a time", ErrConflictingArguments, a, b)
}

// encodeBody resolves the body mode and returns the body with its content
// type.
func encodeBody(opts *Options) ([]byte, string, error) {
	switch {
	case opts.Form != nil:
		s, _, err := query.Encode(opts.Form)
		if err != nil {
			return nil, "", err
		}
		return []byte(s), FormContentType, nil

	case opts.JSON != nil:
		b, err := encodeJSON(opts.JSON)
		if err != nil {
			return nil, "", err
		}
		return b, JSONContentType, nil

	case opts.Multipart != nil:
		mb, err := opts.Multipart.Build()
		if err != nil {
			return nil, "", fmt.Errorf("multipart: %w", err)
		}
		b := mb.Bytes()
		m := boundaryPattern.FindSubmatch(b)
		if m == nil {
			return nil, "", ErrInvalidMultipartFormat
		}
		return b, MultipartContentType + "; boundary=" + string(m[1]), nil

	case opts.Input != nil:
		return opts.Input, inputContentType(opts), nil
	}
	return nil, "", nil
}

// inputContentType falls back from an explicit header to the base env to the
// form content type. Among several spellings of Content-Type the last in
// sorted order wins, as it does when the headers are installed.
func inputContentType(opts *Options) string {
	var ct string
	for _, name := range sortedHeaderNames(opts.Headers) {
		if strings.EqualFold(name, "Content-Type") {
			ct = opts.Headers[name]
		}
	}
	if ct != "" {
		return ct
	}
	if ct := opts.Env.String(KeyContentType); ct != "" {
		return ct
	}
	return FormContentType
}

func encodeJSON(v any) ([]byte, error) {
	switch x := v.(type) {
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case json.RawMessage:
		return x, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrInvalidArgument, err)
	}
	return b, nil
}

func sortedHeaderNames(h map[string]string) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
