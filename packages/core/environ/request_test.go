package environ

import (
	"io"
	"testing"

	"github.com/abdul-hamid-achik/hitrack/packages/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv_Request(t *testing.T) {
	e, err := Build("POST", "/api/items?page=2", &Options{
		Form:    query.Map{"name": "widget"},
		Headers: map[string]string{"X-Request-Id": "abc", "Host": "api.test"},
	})
	require.NoError(t, err)

	req, err := e.Request()
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/api/items", req.URL.Path)
	assert.Equal(t, "2", req.URL.Query().Get("page"))
	assert.Equal(t, "/api/items?page=2", req.RequestURI)
	assert.Equal(t, "api.test", req.Host)
	assert.Equal(t, "abc", req.Header.Get("X-Request-Id"))
	assert.Equal(t, FormContentType, req.Header.Get("Content-Type"))
	assert.Equal(t, int64(11), req.ContentLength)
	assert.Nil(t, req.TLS)

	require.NoError(t, req.ParseForm())
	assert.Equal(t, "widget", req.PostForm.Get("name"))
}

func TestEnv_RequestHTTPS(t *testing.T) {
	e, err := Build("GET", "/", &Options{Env: New().Set(KeyHTTPS, "on")})
	require.NoError(t, err)

	req, err := e.Request()
	require.NoError(t, err)
	assert.NotNil(t, req.TLS)
	assert.Equal(t, "https", req.URL.Scheme)
	assert.Equal(t, "localhost", req.URL.Host)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestEnv_RequestCustomPort(t *testing.T) {
	e, err := Build("GET", "/", &Options{Env: New().Set(KeyServerPort, "8080")})
	require.NoError(t, err)

	req, err := e.Request()
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", req.Host)
}

func TestEnv_RequestInvalidMethod(t *testing.T) {
	e, err := Build("BAD METHOD", "/", nil)
	require.NoError(t, err)

	_, err = e.Request()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
