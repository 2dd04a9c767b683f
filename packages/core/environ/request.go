package environ

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// Request converts the environment into a server-side *http.Request, so a
// standard library handler can serve it.
func (e *Env) Request() (*http.Request, error) {
	scheme := e.String(KeyURLScheme)
	if scheme == "" {
		scheme = "http"
	}

	target := e.String(KeyScriptName) + e.String(KeyPathInfo)
	if target == "" {
		target = "/"
	}
	if qs := e.String(KeyQueryString); qs != "" {
		target += "?" + qs
	}

	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, fmt.Errorf("%w: request target %q: %v", ErrInvalidArgument, target, err)
	}
	u.Scheme = scheme
	u.Host = e.hostPort(scheme)

	body := e.Body()
	req, err := http.NewRequest(e.String(KeyRequestMethod), u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	req.URL = u
	req.RequestURI = target
	req.Host = u.Host
	req.RemoteAddr = "127.0.0.1:0"
	req.ContentLength = int64(len(body))

	for k, v := range e.All() {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case k == KeyContentType:
			req.Header.Set("Content-Type", s)
		case k == KeyContentLength:
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				req.ContentLength = n
			}
		case k == "HTTP_HOST":
			req.Host = s
		case strings.HasPrefix(k, HeaderPrefix):
			name := textproto.CanonicalMIMEHeaderKey(strings.ReplaceAll(k[len(HeaderPrefix):], "_", "-"))
			req.Header.Set(name, s)
		}
	}

	if scheme == "https" {
		req.TLS = &tls.ConnectionState{HandshakeComplete: true, ServerName: e.String(KeyServerName)}
	}
	return req, nil
}

func (e *Env) hostPort(scheme string) string {
	host := e.String(KeyServerName)
	if host == "" {
		host = DefaultServerName
	}
	port := e.String(KeyServerPort)
	if port == "" || (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		return host
	}
	return net.JoinHostPort(host, port)
}
