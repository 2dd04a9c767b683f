// Package environ builds the request environment handed to an in-process
// handler.
//
// An Env is an ordered map in the spirit of a CGI environment:
//
//	e, err := environ.Build("POST", "/api/entry?x=1", &environ.Options{
//		JSON: map[string]any{"x": 1},
//	})
//	e.String(environ.KeyPathInfo)    // "/api/entry"
//	e.String(environ.KeyQueryString) // "x=1"
//	e.String(environ.KeyContentType) // "application/json"
//
// Build validates every option before it assembles anything, so an error
// means nothing was consumed except multipart file handles, which are always
// closed.
package environ
