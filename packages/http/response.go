package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	ErrMissingContentType = errors.New("missing 'Content-Type' header")
	ErrMissingCharset     = errors.New("missing 'charset' in 'Content-Type' header")
	ErrUnknownCharset     = errors.New("unknown charset")
	ErrSchemaMismatch     = errors.New("schema validation failed")
)

var charsetPattern = regexp.MustCompile(`(?i);\s*charset=(\w[-\w]*)`)

type Response struct {
	StatusCode int
	Status     string
	Headers    Headers
	Cookies    cookie.Jar
	Duration   time.Duration

	body     Body
	bodyRead bool
	bodyData []byte
}

// NewResponse wraps a handler result. The Set-Cookie header is parsed right
// away; a malformed cookie fails the whole response.
func NewResponse(status int, headers Headers, body Body) (*Response, error) {
	if headers == nil {
		headers = Headers{}
	}
	r := &Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Headers:    headers,
		Cookies:    cookie.Jar{},
		body:       body,
	}

	if raw, ok := r.HeaderValue("Set-Cookie"); ok {
		jar, err := cookie.ParseJar(raw)
		if err != nil {
			return nil, err
		}
		r.Cookies = jar
	}
	return r, nil
}

// BodyBinary drains the body on first call and returns the cached bytes
// afterwards.
func (r *Response) BodyBinary() []byte {
	if r.bodyRead {
		return r.bodyData
	}
	r.bodyRead = true

	var buf bytes.Buffer
	if r.body != nil {
		for chunk := range r.body {
			buf.Write(chunk)
		}
	}
	r.bodyData = buf.Bytes()
	return r.bodyData
}

// BodyString returns the body bytes as a string without any decoding.
func (r *Response) BodyString() string {
	return string(r.BodyBinary())
}

// BodyText decodes the body using the charset of the Content-Type header.
// application/json without a charset is read as UTF-8.
func (r *Response) BodyText() (string, error) {
	ctype := r.ContentType()
	if ctype == "" {
		return "", ErrMissingContentType
	}

	var charset string
	if m := charsetPattern.FindStringSubmatch(ctype); m != nil {
		charset = m[1]
	} else if ctype == "application/json" {
		charset = "utf-8"
	} else {
		return "", fmt.Errorf("%w: %s", ErrMissingCharset, ctype)
	}

	return decode(r.BodyBinary(), charset)
}

func decode(data []byte, charset string) (string, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "utf8":
		return string(data), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownCharset, charset)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", charset, err)
	}
	return string(out), nil
}

// BodyJSON parses BodyText as JSON.
func (r *Response) BodyJSON() (any, error) {
	text, err := r.BodyText()
	if err != nil {
		return nil, err
	}
	var result any
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get looks up a gjson path in the body, e.g. "items.0.id".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.BodyBinary(), path)
}

// ValidateJSONSchema checks the body against a JSON schema document.
func (r *Response) ValidateJSONSchema(schema []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(r.BodyBinary()),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(errs, "; "))
}

// HeaderValue looks up a header case-insensitively.
func (r *Response) HeaderValue(key string) (string, bool) {
	if v, ok := r.Headers[key]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func (r *Response) Header(key string) string {
	v, _ := r.HeaderValue(key)
	return v
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// ContentLength returns the parsed Content-Length header. The boolean is
// false when the header is absent.
func (r *Response) ContentLength() (int, bool, error) {
	v, ok := r.HeaderValue("Content-Length")
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, true, fmt.Errorf("invalid Content-Length %q: %w", v, err)
	}
	return n, true, nil
}

func (r *Response) Location() string {
	return r.Header("Location")
}

// CookieValue returns the value of a cookie set by the response.
func (r *Response) CookieValue(name string) (string, bool) {
	return r.Cookies.Value(name)
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
