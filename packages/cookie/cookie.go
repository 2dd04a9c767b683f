// Package cookie parses Set-Cookie headers and renders Cookie request headers.
package cookie

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/query"
)

var (
	ErrAttributeValueUnexpected = errors.New("unexpected attribute value")
	ErrAttributeValueMissing    = errors.New("attribute value expected but not specified")
	ErrInvalidAttributeValue    = errors.New("invalid attribute value")
	ErrUnknownAttribute         = errors.New("unknown cookie attribute")
)

// Attributes is one parsed Set-Cookie entry.
type Attributes struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Domain   string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Expires  string `json:"expires,omitempty" yaml:"expires,omitempty"`
	MaxAge   *int   `json:"max_age,omitempty" yaml:"max_age,omitempty"`
	Secure   bool   `json:"secure,omitempty" yaml:"secure,omitempty"`
	HTTPOnly bool   `json:"http_only,omitempty" yaml:"http_only,omitempty"`
}

type attribute int

const (
	attrPath attribute = iota
	attrDomain
	attrExpires
	attrMaxAge
	attrHTTPOnly
	attrSecure
)

// attributes is keyed by the lowercased attribute name.
var attributes = map[string]attribute{
	"path":     attrPath,
	"domain":   attrDomain,
	"expires":  attrExpires,
	"max-age":  attrMaxAge,
	"httponly": attrHTTPOnly,
	"secure":   attrSecure,
}

var digits = regexp.MustCompile(`^\d+$`)

// ParseSetCookie parses a single Set-Cookie header value.
func ParseSetCookie(raw string) (*Attributes, error) {
	segments := strings.Split(raw, ";")

	name, value, _ := strings.Cut(strings.TrimSpace(segments[0]), "=")
	c := &Attributes{Name: name, Value: value}

	for _, seg := range segments[1:] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		k, v, hasValue := strings.Cut(seg, "=")

		attr, ok := attributes[strings.ToLower(k)]
		if !ok {
			return nil, fmt.Errorf("%s: %w", seg, ErrUnknownAttribute)
		}

		switch attr {
		case attrSecure, attrHTTPOnly:
			if hasValue {
				return nil, fmt.Errorf("%s: %w", seg, ErrAttributeValueUnexpected)
			}
			if attr == attrSecure {
				c.Secure = true
			} else {
				c.HTTPOnly = true
			}
			continue
		}

		if !hasValue {
			return nil, fmt.Errorf("%s: %w", k, ErrAttributeValueMissing)
		}

		switch attr {
		case attrPath:
			c.Path = v
		case attrDomain:
			c.Domain = v
		case attrExpires:
			c.Expires = v
		case attrMaxAge:
			if !digits.MatchString(v) {
				return nil, fmt.Errorf("%s: positive integer expected: %w", seg, ErrInvalidAttributeValue)
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", seg, ErrInvalidAttributeValue)
			}
			c.MaxAge = &n
		}
	}

	return c, nil
}

// Jar maps cookie names to their parsed attributes.
type Jar map[string]*Attributes

// ParseJar parses a Set-Cookie header holding one cookie per line. A later
// line overwrites an earlier one with the same name.
func ParseJar(header string) (Jar, error) {
	jar := make(Jar)
	for _, line := range strings.Split(header, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		c, err := ParseSetCookie(line)
		if err != nil {
			return nil, err
		}
		jar[c.Name] = c
	}
	return jar, nil
}

// Value returns the value of the named cookie.
func (j Jar) Value(name string) (string, bool) {
	c, ok := j[name]
	if !ok {
		return "", false
	}
	return c.Value, true
}

// Cookies is one of Raw, Values or Jar.
type Cookies interface {
	isCookies()
}

// Raw is a preformatted Cookie header value, used verbatim.
type Raw string

// Values maps cookie names to plain values.
type Values map[string]string

func (Raw) isCookies()    {}
func (Values) isCookies() {}
func (Jar) isCookies()    {}

// Header renders c as a Cookie header value. Names and values of the map
// variants are percent-encoded and emitted in sorted name order.
func Header(c Cookies) string {
	switch v := c.(type) {
	case Raw:
		return string(v)
	case Values:
		parts := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			parts = append(parts, pair(k, v[k]))
		}
		return strings.Join(parts, "; ")
	case Jar:
		parts := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			val := ""
			if v[k] != nil {
				val = v[k].Value
			}
			parts = append(parts, pair(k, val))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// Append joins add onto an existing Cookie header value.
func Append(existing, add string) string {
	if existing == "" {
		return add
	}
	if add == "" {
		return existing
	}
	return existing + "; " + add
}

func pair(name, value string) string {
	return query.PercentEncode(name) + "=" + query.PercentEncode(value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
