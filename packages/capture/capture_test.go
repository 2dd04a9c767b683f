package capture

import (
	"testing"

	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/abdul-hamid-achik/hitrack/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(t *testing.T, headers http.Headers, body string) *http.Response {
	t.Helper()
	resp, err := http.NewResponse(200, headers, http.BodyString(body))
	require.NoError(t, err)
	return resp
}

func TestParse(t *testing.T) {
	tests := []struct {
		subject string
		source  Source
		path    string
	}{
		{subject: "status", source: SourceStatus},
		{subject: "duration", source: SourceDuration},
		{subject: "header X-Csrf-Token", source: SourceHeader, path: "X-Csrf-Token"},
		{subject: "cookie sid", source: SourceCookie, path: "sid"},
		{subject: "body", source: SourceBody},
		{subject: "body.items[0].id", source: SourceBody, path: "items.0.id"},
		{subject: "body[1].tags[0]", source: SourceBody, path: "1.tags.0"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			c, err := Parse("v", tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.source, c.Source)
			assert.Equal(t, tt.path, c.Path)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, subject := range []string{"", "jsonpath $.a", "header ", "cookie", "bodyx"} {
		_, err := Parse("v", subject)
		assert.ErrorIs(t, err, ErrInvalidSubject, subject)
	}
}

func TestExtractAll(t *testing.T) {
	resp := newResponse(t, http.Headers{
		"Content-Type": "application/json",
		"X-Request-Id": "r-1",
		"Set-Cookie":   "sid=abc; HttpOnly",
	}, `{"items":[{"id":7}],"token":"t0k"}`)

	var captures []*Capture
	for name, subject := range map[string]string{
		"id":      "body.items[0].id",
		"token":   "body.token",
		"request": "header x-request-id",
		"session": "cookie sid",
		"code":    "status",
		"missing": "body.nope",
		"absent":  "header X-Nope",
	} {
		c, err := Parse(name, subject)
		require.NoError(t, err)
		captures = append(captures, c)
	}

	got := ExtractAll(resp, captures)
	assert.Equal(t, map[string]any{
		"id":      float64(7),
		"token":   "t0k",
		"request": "r-1",
		"session": "abc",
		"code":    200,
	}, got)
}

func TestExtract_NonJSONBody(t *testing.T) {
	resp := newResponse(t, http.Headers{"Content-Type": "text/html; charset=utf-8"}, "<p>hi</p>")
	e := NewExtractor(resp)

	v, ok := e.Extract(&Capture{Source: SourceBody})
	assert.True(t, ok)
	assert.Equal(t, "<p>hi</p>", v)

	_, ok = e.Extract(&Capture{Source: SourceBody, Path: "a"})
	assert.False(t, ok)
}

func TestHeaders_FeedDerivedClient(t *testing.T) {
	var seen *environ.Env
	handler := http.HandlerFunc(func(e *environ.Env) (int, http.Headers, http.Body, error) {
		seen = e
		if e.String(environ.KeyPathInfo) == "/form" {
			return 200, http.Headers{"Content-Type": "application/json"}, http.BodyString(`{"csrf":"x1"}`), nil
		}
		return 204, nil, nil, nil
	})
	client := http.NewClient(handler)

	resp, err := client.Get("/form", nil)
	require.NoError(t, err)

	c, err := Parse("X-Csrf-Token", "body.csrf")
	require.NoError(t, err)
	derived, err := client.With(Headers(ExtractAll(resp, []*Capture{c})), nil, nil)
	require.NoError(t, err)

	_, err = derived.Post("/submit", nil)
	require.NoError(t, err)
	assert.Equal(t, "x1", seen.String("HTTP_X_CSRF_TOKEN"))
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "cookie", SourceCookie.String())
	assert.Equal(t, "Source(42)", Source(42).String())
}
