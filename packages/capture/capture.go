package capture

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/http"
	"github.com/tidwall/gjson"
)

// Source is where a capture reads its value from.
type Source int

const (
	SourceBody Source = iota
	SourceHeader
	SourceCookie
	SourceStatus
	SourceDuration
)

func (s Source) String() string {
	switch s {
	case SourceBody:
		return "body"
	case SourceHeader:
		return "header"
	case SourceCookie:
		return "cookie"
	case SourceStatus:
		return "status"
	case SourceDuration:
		return "duration"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// ErrInvalidSubject is returned by Parse for subjects it cannot read.
var ErrInvalidSubject = errors.New("invalid capture subject")

// Capture names one value to extract.
type Capture struct {
	Name   string
	Source Source
	Path   string
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// Parse reads a capture subject like "header Location" or "body.items[0].id".
func Parse(name, subject string) (*Capture, error) {
	subject = strings.TrimSpace(subject)
	c := &Capture{Name: name}

	switch {
	case subject == "status":
		c.Source = SourceStatus
	case subject == "duration":
		c.Source = SourceDuration
	case strings.HasPrefix(subject, "header "):
		c.Source = SourceHeader
		c.Path = strings.TrimSpace(strings.TrimPrefix(subject, "header "))
	case strings.HasPrefix(subject, "cookie "):
		c.Source = SourceCookie
		c.Path = strings.TrimSpace(strings.TrimPrefix(subject, "cookie "))
	case subject == "body":
		c.Source = SourceBody
	case strings.HasPrefix(subject, "body.") || strings.HasPrefix(subject, "body["):
		c.Source = SourceBody
		c.Path = convertBracketNotation(strings.TrimPrefix(subject, "body"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubject, subject)
	}

	if (c.Source == SourceHeader || c.Source == SourceCookie) && c.Path == "" {
		return nil, fmt.Errorf("%w: %s needs a name", ErrInvalidSubject, c.Source)
	}
	return c, nil
}

// convertBracketNotation converts array bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", ".items[0].tags[1]" -> "items.0.tags.1"
func convertBracketNotation(path string) string {
	result := bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(result, ".")
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if body := resp.BodyBinary(); gjson.ValidBytes(body) {
		e.bodyJSON = gjson.ParseBytes(body)
	}
	return e
}

func (e *Extractor) Extract(capture *Capture) (any, bool) {
	switch capture.Source {
	case SourceBody:
		return e.extractFromBody(capture.Path)
	case SourceHeader:
		return e.response.HeaderValue(capture.Path)
	case SourceCookie:
		return e.response.CookieValue(capture.Path)
	case SourceStatus:
		return e.response.StatusCode, true
	case SourceDuration:
		return e.response.DurationMs(), true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" {
			return e.response.BodyString(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// ExtractAll returns the values of the captures that were found, keyed by
// capture name.
func ExtractAll(resp *http.Response, captures []*Capture) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for _, c := range captures {
		if value, ok := extractor.Extract(c); ok {
			results[c.Name] = value
		}
	}

	return results
}

// Headers turns string captures into request headers, using each capture's
// name as the header name. Non-string values are formatted with %v.
func Headers(values map[string]any) map[string]string {
	headers := make(map[string]string, len(values))
	for name, v := range values {
		if s, ok := v.(string); ok {
			headers[name] = s
			continue
		}
		headers[name] = fmt.Sprint(v)
	}
	return headers
}
