// Package http dispatches synthesized requests to in-process handlers.
//
// It mirrors an HTTP client without a network:
//   - Building the request env from methods, paths and body options
//   - Calling a Handler, or a net/http handler through FromHTTPHandler
//   - Wrapping status, headers and body in a Response
//   - Charset-aware body decoding, JSON paths and schema validation
//   - Carrying cookies and headers forward with Client.With
package http
