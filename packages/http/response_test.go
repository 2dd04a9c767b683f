package http

import (
	"testing"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponse_ParsesCookies(t *testing.T) {
	resp, err := NewResponse(200, Headers{
		"set-cookie": "session=abc; Path=/; HttpOnly\nsession=def\ntheme=dark; Max-Age=60",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "200 OK", resp.Status)
	v, ok := resp.CookieValue("session")
	assert.True(t, ok)
	assert.Equal(t, "def", v, "later entries win")
	require.Contains(t, resp.Cookies, "theme")
	require.NotNil(t, resp.Cookies["theme"].MaxAge)
	assert.Equal(t, 60, *resp.Cookies["theme"].MaxAge)

	_, ok = resp.CookieValue("missing")
	assert.False(t, ok)
}

func TestNewResponse_InvalidCookie(t *testing.T) {
	_, err := NewResponse(200, Headers{"Set-Cookie": "a=1; Secure=yes"}, nil)
	assert.ErrorIs(t, err, cookie.ErrAttributeValueUnexpected)
}

func TestResponse_BodyBinaryCaches(t *testing.T) {
	calls := 0
	body := func(yield func([]byte) bool) {
		calls++
		if !yield([]byte("hello ")) {
			return
		}
		yield([]byte("world"))
	}

	resp, err := NewResponse(200, nil, body)
	require.NoError(t, err)

	assert.Equal(t, "hello world", string(resp.BodyBinary()))
	assert.Equal(t, "hello world", resp.BodyString())
	assert.Equal(t, 1, calls)
}

func TestResponse_BodyText(t *testing.T) {
	tests := []struct {
		name    string
		ctype   string
		body    []byte
		want    string
		wantErr error
	}{
		{name: "utf-8", ctype: "text/plain; charset=utf-8", body: []byte("héllo"), want: "héllo"},
		{name: "upper case charset", ctype: "text/plain; Charset=UTF-8", body: []byte("ok"), want: "ok"},
		{name: "latin1", ctype: "text/plain; charset=ISO-8859-1", body: []byte{'c', 'a', 'f', 0xe9}, want: "café"},
		{name: "json without charset", ctype: "application/json", body: []byte(`{}`), want: "{}"},
		{name: "missing content type", body: []byte("x"), wantErr: ErrMissingContentType},
		{name: "missing charset", ctype: "text/html", body: []byte("x"), wantErr: ErrMissingCharset},
		{name: "json with params but no charset", ctype: "application/json; version=2", body: []byte("x"), wantErr: ErrMissingCharset},
		{name: "unknown charset", ctype: "text/plain; charset=klingon", body: []byte("x"), wantErr: ErrUnknownCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := Headers{}
			if tt.ctype != "" {
				headers["Content-Type"] = tt.ctype
			}
			resp, err := NewResponse(200, headers, BodyBytes(tt.body))
			require.NoError(t, err)

			got, err := resp.BodyText()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponse_BodyJSON(t *testing.T) {
	resp, err := NewResponse(200, Headers{"Content-Type": "application/json"}, BodyString(`{"msg":"x"}`))
	require.NoError(t, err)

	got, err := resp.BodyJSON()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"msg": "x"}, got)
}

func TestResponse_BodyJSONInvalid(t *testing.T) {
	resp, err := NewResponse(200, Headers{"Content-Type": "application/json"}, BodyString(`{`))
	require.NoError(t, err)

	_, err = resp.BodyJSON()
	assert.Error(t, err)
}

func TestResponse_Get(t *testing.T) {
	resp, err := NewResponse(200, Headers{"Content-Type": "application/json"},
		BodyString(`{"items":[{"id":7,"tags":["a","b"]}]}`))
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.Get("items.0.id").Int())
	assert.Equal(t, "b", resp.Get("items.0.tags.1").String())
	assert.False(t, resp.Get("items.1").Exists())
}

func TestResponse_ValidateJSONSchema(t *testing.T) {
	schema := []byte(`{
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer"}}
	}`)

	ok, err := NewResponse(200, nil, BodyString(`{"id": 1}`))
	require.NoError(t, err)
	assert.NoError(t, ok.ValidateJSONSchema(schema))

	bad, err := NewResponse(200, nil, BodyString(`{"id": "one"}`))
	require.NoError(t, err)
	assert.ErrorIs(t, bad.ValidateJSONSchema(schema), ErrSchemaMismatch)
}

func TestResponse_HeaderAccessors(t *testing.T) {
	resp, err := NewResponse(302, Headers{
		"content-type":   "text/html; charset=utf-8",
		"Content-Length": "42",
		"LOCATION":       "/login",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "text/html; charset=utf-8", resp.ContentType())
	assert.Equal(t, "/login", resp.Location())
	assert.Equal(t, "", resp.Header("X-Missing"))

	n, ok, err := resp.ContentLength()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	assert.True(t, resp.IsRedirect())
	assert.False(t, resp.IsSuccess())
	assert.False(t, resp.IsJSON())
}

func TestResponse_ContentLength(t *testing.T) {
	resp, err := NewResponse(200, nil, nil)
	require.NoError(t, err)
	_, ok, err := resp.ContentLength()
	require.NoError(t, err)
	assert.False(t, ok)

	resp, err = NewResponse(200, Headers{"Content-Length": "lots"}, nil)
	require.NoError(t, err)
	_, ok, err = resp.ContentLength()
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		status                             int
		success, redirect, client, server bool
	}{
		{status: 200, success: true},
		{status: 204, success: true},
		{status: 301, redirect: true},
		{status: 404, client: true},
		{status: 503, server: true},
	}
	for _, tt := range tests {
		resp, err := NewResponse(tt.status, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.success, resp.IsSuccess(), tt.status)
		assert.Equal(t, tt.redirect, resp.IsRedirect(), tt.status)
		assert.Equal(t, tt.client, resp.IsClientError(), tt.status)
		assert.Equal(t, tt.server, resp.IsServerError(), tt.status)
	}
}
