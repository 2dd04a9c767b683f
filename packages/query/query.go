// Package query builds percent-encoded query strings and form bodies.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidArgument is returned for values that cannot be turned into a query.
var ErrInvalidArgument = errors.New("invalid argument")

// Query is one of String, Pairs, Map or Values.
type Query interface {
	isQuery()
}

// String is an already encoded query string. It is used verbatim.
type String string

// Pair is a single key/value entry of Pairs.
type Pair struct {
	Key   string
	Value any
}

// Pairs keeps keys in the order given, duplicates included.
type Pairs []Pair

// Map is encoded in sorted key order.
type Map map[string]any

// Values is encoded in sorted key order, one pair per value.
type Values url.Values

func (String) isQuery() {}
func (Pairs) isQuery()  {}
func (Map) isQuery()    {}
func (Values) isQuery() {}

// PercentEncode encodes s as a form-urlencoded component. Spaces become '+'.
func PercentEncode(s string) string {
	return url.QueryEscape(s)
}

// PercentDecode is the inverse of PercentEncode.
func PercentDecode(s string) (string, error) {
	return url.QueryUnescape(s)
}

// Encode renders q as a query string. The boolean is false when q is nil.
func Encode(q Query) (string, bool, error) {
	switch v := q.(type) {
	case nil:
		return "", false, nil
	case String:
		return string(v), true, nil
	case Pairs:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, pair(p.Key, p.Value))
		}
		return strings.Join(parts, "&"), true, nil
	case Map:
		parts := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			parts = append(parts, pair(k, v[k]))
		}
		return strings.Join(parts, "&"), true, nil
	case Values:
		var parts []string
		for _, k := range sortedKeys(v) {
			for _, val := range v[k] {
				parts = append(parts, pair(k, val))
			}
		}
		return strings.Join(parts, "&"), true, nil
	default:
		return "", false, fmt.Errorf("%w: query of type %T not supported", ErrInvalidArgument, q)
	}
}

// From converts loosely typed input into a Query. Accepted types are string,
// map[string]string, map[string]any, url.Values, [][2]string and the Query
// variants themselves; anything else fails with ErrInvalidArgument.
func From(v any) (Query, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Query:
		return x, nil
	case string:
		return String(x), nil
	case map[string]string:
		m := make(Map, len(x))
		for k, val := range x {
			m[k] = val
		}
		return m, nil
	case map[string]any:
		return Map(x), nil
	case url.Values:
		return Values(x), nil
	case [][2]string:
		p := make(Pairs, 0, len(x))
		for _, kv := range x {
			p = append(p, Pair{Key: kv[0], Value: kv[1]})
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: map or pair list expected but got %T", ErrInvalidArgument, v)
	}
}

func pair(k string, v any) string {
	return PercentEncode(k) + "=" + PercentEncode(fmt.Sprint(v))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
