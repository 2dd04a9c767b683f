package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/abdul-hamid-achik/hitrack/packages/http"
	"github.com/abdul-hamid-achik/hitrack/packages/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func buildEnv(t *testing.T) *environ.Env {
	t.Helper()
	e, err := environ.Build("POST", "/items", &environ.Options{
		Form:    query.String("a=1"),
		Headers: map[string]string{"X-Trace": "7"},
	})
	require.NoError(t, err)
	return e
}

func sampleResponse(t *testing.T) *http.Response {
	t.Helper()
	resp, err := http.NewResponse(201, http.Headers{
		"Content-Type": "application/json",
		"Set-Cookie":   "sid=abc; Path=/; HttpOnly",
	}, http.BodyString(`{"id":1}`))
	require.NoError(t, err)
	return resp
}

func TestConsoleFormatter_FormatEnv(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatEnv(buildEnv(t))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "POST /items\n"))
	assert.Contains(t, out, `"a=1"`)
	assert.Contains(t, out, "HTTP_X_TRACE")
	assert.Less(t, strings.Index(out, environ.KeyRequestMethod), strings.Index(out, "HTTP_X_TRACE"))
}

func TestConsoleFormatter_FormatCookies(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	jar, err := cookie.ParseJar("b=2; Secure\na=1; Path=/; Max-Age=10")
	require.NoError(t, err)
	f.FormatCookies(jar)

	assert.Equal(t, "a=1 path=/ max-age=10\nb=2 secure\n", buf.String())
}

func TestConsoleFormatter_FormatResponse(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatResponse(sampleResponse(t))

	out := buf.String()
	assert.Contains(t, out, "201 Created")
	assert.Contains(t, out, "Content-Type: application/json")
	assert.Contains(t, out, "Set-Cookie: sid=abc; Path=/; HttpOnly")
	assert.Contains(t, out, `{"id":1}`)
}

func TestConsoleFormatter_Truncates(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	resp, err := http.NewResponse(200, nil, http.BodyString(strings.Repeat("x", 500)))
	require.NoError(t, err)
	f.FormatResponse(resp)
	assert.Contains(t, buf.String(), strings.Repeat("x", 200)+"...")

	buf.Reset()
	f = NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))
	resp, err = http.NewResponse(200, nil, http.BodyString(strings.Repeat("x", 500)))
	require.NoError(t, err)
	f.FormatResponse(resp)
	assert.NotContains(t, buf.String(), "...")
}

func TestConsoleFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatError(errors.New("bad input"))
	assert.Equal(t, "Error: bad input\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatEnv(buildEnv(t))
	f.FormatResponse(sampleResponse(t))
	f.FormatError(errors.New("oops"))
	require.NoError(t, f.Flush())

	var doc struct {
		Env      map[string]any `json:"env"`
		Response struct {
			StatusCode int                       `json:"statusCode"`
			Body       string                    `json:"body"`
			Cookies    map[string]map[string]any `json:"cookies"`
		} `json:"response"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "a=1", doc.Env[environ.KeyInput])
	assert.Equal(t, "POST", doc.Env[environ.KeyRequestMethod])
	assert.Equal(t, 201, doc.Response.StatusCode)
	assert.Equal(t, `{"id":1}`, doc.Response.Body)
	assert.Equal(t, "abc", doc.Response.Cookies["sid"]["value"])
	assert.Equal(t, []string{"oops"}, doc.Errors)

	// env keys keep their build order
	assert.Less(t, strings.Index(buf.String(), environ.KeyVersion), strings.Index(buf.String(), environ.KeyRequestMethod))
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewYAMLFormatter(YAMLWithWriter(&buf))

	jar, err := cookie.ParseJar("sid=abc; Max-Age=5")
	require.NoError(t, err)

	f.FormatEnv(buildEnv(t))
	f.FormatCookies(jar)
	require.NoError(t, f.Flush())

	var doc struct {
		Env     map[string]any               `yaml:"env"`
		Cookies map[string]cookie.Attributes `yaml:"cookies"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "7", doc.Env["HTTP_X_TRACE"])
	assert.Equal(t, "3", doc.Env[environ.KeyContentLength])
	assert.Equal(t, []any{1, 3}, doc.Env[environ.KeyVersion])
	require.NotNil(t, doc.Cookies["sid"].MaxAge)
	assert.Equal(t, 5, *doc.Cookies["sid"].MaxAge)

	out := buf.String()
	assert.Less(t, strings.Index(out, environ.KeyRequestMethod), strings.Index(out, environ.KeyQueryString))
}
