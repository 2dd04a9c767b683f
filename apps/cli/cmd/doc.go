// Package cmd implements the hitrack CLI commands using Cobra.
//
// Available commands:
//   - env: Build a request env and print it without calling a handler
//   - cookie: Parse Set-Cookie values and print their attributes
//   - multipart: Encode form fields and files as a multipart body
//   - version: Show hitrack version information
//
// Output can be rendered as colored console text, JSON or YAML.
package cmd
