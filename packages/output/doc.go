// Package output renders request envs, cookie jars and responses.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON documents
//   - YAML: The same documents as YAML
//
// The JSON and YAML formatters accumulate what they are given and write a
// single document on Flush.
package output
