// Package config loads, validates, and hot-reloads the agent's YAML
// configuration.
//
// Load() parses the file, applies defaults, and validates structural
// constraints (known source modes and auth modes, required endpoints,
// positive intervals). Watch() re-loads the file on fsnotify write/create
// events, keeping the previous config when a reload fails.
//
// Secrets (API keys, tokens, passwords) are referenced by environment
// variable name in the file and resolved at use time via the AuthConfig
// accessor methods.
package config
