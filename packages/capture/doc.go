// Package capture extracts values from responses for use in subsequent requests.
//
// A capture is named by a subject:
//   - status, duration
//   - header <Name>
//   - cookie <name>
//   - body, or body.<path> for a JSON path such as body.items[0].id
//
// Captured values typically feed the headers or cookies of a derived client,
// e.g. a CSRF token read from a login page.
package capture
