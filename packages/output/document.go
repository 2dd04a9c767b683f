package output

import (
	"encoding/json"
	"fmt"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/abdul-hamid-achik/hitrack/packages/http"
	"gopkg.in/yaml.v3"
)

// Document is what the JSON and YAML formatters write.
type Document struct {
	Env      *Env          `json:"env,omitempty" yaml:"env,omitempty"`
	Cookies  cookie.Jar    `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	Response *ResponseInfo `json:"response,omitempty" yaml:"response,omitempty"`
	Errors   []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ResponseInfo represents response details
type ResponseInfo struct {
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Status     string            `json:"status" yaml:"status"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Cookies    cookie.Jar        `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	Body       string            `json:"body,omitempty" yaml:"body,omitempty"`
	Duration   float64           `json:"duration" yaml:"duration"`
}

func newResponseInfo(resp *http.Response) *ResponseInfo {
	body, err := resp.BodyText()
	if err != nil {
		body = resp.BodyString()
	}
	info := &ResponseInfo{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Headers,
		Body:       body,
		Duration:   float64(resp.DurationMs()),
	}
	if len(resp.Cookies) > 0 {
		info.Cookies = resp.Cookies
	}
	return info
}

// Env keeps insertion order when an env is encoded.
type Env struct {
	env *environ.Env
}

func (e *Env) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.env)
}

func (e *Env) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for k := range e.env.All() {
		var value yaml.Node
		if err := value.Encode(e.env.Display(k)); err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}
	return node, nil
}

// collector accumulates a Document for the flushing formatters.
type collector struct {
	doc Document
}

func (c *collector) FormatEnv(e *environ.Env) {
	c.doc.Env = &Env{env: e}
}

func (c *collector) FormatCookies(jar cookie.Jar) {
	if c.doc.Cookies == nil {
		c.doc.Cookies = cookie.Jar{}
	}
	for name, a := range jar {
		c.doc.Cookies[name] = a
	}
}

func (c *collector) FormatResponse(resp *http.Response) {
	c.doc.Response = newResponseInfo(resp)
}

func (c *collector) FormatError(err error) {
	c.doc.Errors = append(c.doc.Errors, err.Error())
}

func (c *collector) FormatHeader(version string) {
	// No header needed for document output
}
