// Package config handles configuration loading and management for hitrack.
//
// It provides functionality for:
//   - Loading configuration from .hitrack.yaml, .hitrack.yml or .hitrack.json files
//   - Loading a .env file next to the configuration
//   - HITRACK_* environment variable overrides
//   - Turning the configuration into a base request env
package config
