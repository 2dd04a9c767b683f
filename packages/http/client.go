package http

import (
	"log/slog"
	"maps"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/abdul-hamid-achik/hitrack/packages/core/config"
	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
)

// Client dispatches requests to a Handler. It records the env of the last
// request and is not safe for concurrent use.
type Client struct {
	handler        Handler
	env            *environ.Env
	defaultHeaders map[string]string
	logger         *slog.Logger
	lastEnv        *environ.Env
}

type ClientOption func(*Client)

func NewClient(handler Handler, opts ...ClientOption) *Client {
	c := &Client{
		handler:        handler,
		defaultHeaders: make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// WithEnv sets the persistent env merged under every request's own env.
func WithEnv(e *environ.Env) ClientOption {
	return func(c *Client) {
		c.env = e.Clone()
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		maps.Copy(c.defaultHeaders, headers)
	}
}

// WithConfig applies the base env, default headers and log level of cfg.
// An explicit WithLogger wins over the configured level.
func WithConfig(cfg *config.Config) ClientOption {
	return func(c *Client) {
		c.env = c.env.Merge(cfg.BaseEnv())
		maps.Copy(c.defaultHeaders, cfg.Headers)

		if c.logger != nil {
			return
		}
		if level, ok, err := cfg.SlogLevel(); err == nil && ok {
			c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		}
	}
}

// Env returns a copy of the persistent env.
func (c *Client) Env() *environ.Env {
	return c.env.Clone()
}

// LastEnv returns the env built by the most recent request, or nil.
func (c *Client) LastEnv() *environ.Env {
	return c.lastEnv
}

func (c *Client) Do(req *Request) (*Response, error) {
	opts := req.options(c.defaultHeaders, c.env)

	e, err := environ.Build(req.Method, req.Path, opts)
	if err != nil {
		c.logger.Warn("build request env failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, err
	}
	c.lastEnv = e

	c.logger.Debug("dispatching request",
		"method", req.Method,
		"path", e.String(environ.KeyPathInfo),
		"query", e.String(environ.KeyQueryString),
		"content_length", e.String(environ.KeyContentLength),
	)

	start := time.Now()
	status, headers, body, err := c.handler.ServeEnv(e)
	if err != nil {
		c.logger.Warn("handler failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, err
	}

	resp, err := NewResponse(status, headers, body)
	if err != nil {
		return nil, err
	}
	resp.Duration = time.Since(start)

	c.logger.Debug("handler responded", "status", status, "duration", resp.Duration)
	return resp, nil
}

// Request builds and dispatches method and path with opts.
func (c *Client) Request(method, path string, opts *environ.Options) (*Response, error) {
	req := NewRequest(method, path)
	if opts != nil {
		req.Options = *opts
	}
	return c.Do(req)
}

func (c *Client) Get(path string, opts *environ.Options) (*Response, error) {
	return c.Request(http.MethodGet, path, opts)
}

func (c *Client) Post(path string, opts *environ.Options) (*Response, error) {
	return c.Request(http.MethodPost, path, opts)
}

func (c *Client) Put(path string, opts *environ.Options) (*Response, error) {
	return c.Request(http.MethodPut, path, opts)
}

func (c *Client) Delete(path string, opts *environ.Options) (*Response, error) {
	return c.Request(http.MethodDelete, path, opts)
}

func (c *Client) Head(path string, opts *environ.Options) (*Response, error) {
	return c.Request(http.MethodHead, path, opts)
}

func (c *Client) Patch(path string, opts *environ.Options) (*Response, error) {
	return c.Request(http.MethodPatch, path, opts)
}

func (c *Client) Options(path string, opts *environ.Options) (*Response, error) {
	return c.Request(http.MethodOptions, path, opts)
}

func (c *Client) Trace(path string, opts *environ.Options) (*Response, error) {
	return c.Request(http.MethodTrace, path, opts)
}

// With returns a client sharing the handler whose persistent env also
// carries the HTTP_* entries built from headers, cookies and env. A new
// Cookie header replaces the one c sends. c is left unchanged.
func (c *Client) With(headers map[string]string, cookies cookie.Cookies, env *environ.Env) (*Client, error) {
	e, err := environ.Build(http.MethodGet, "/", &environ.Options{
		Headers: headers,
		Cookies: cookies,
		Env:     env,
	})
	if err != nil {
		return nil, err
	}

	next := c.env.Clone()
	for k, v := range e.All() {
		if strings.HasPrefix(k, environ.HeaderPrefix) {
			next.Set(k, v)
		}
	}

	return &Client{
		handler:        c.handler,
		env:            next,
		defaultHeaders: maps.Clone(c.defaultHeaders),
		logger:         c.logger,
	}, nil
}

// WithResponseCookies carries the cookies set by resp into a new client.
func (c *Client) WithResponseCookies(resp *Response) (*Client, error) {
	var cookies cookie.Cookies
	if len(resp.Cookies) > 0 {
		cookies = resp.Cookies
	}
	return c.With(nil, cookies, nil)
}
