// Package mcp provides an MCP (Model Context Protocol) server adapter for coursecheck.
// It lets AI assistants submit candidate courses and inspect the corpus.
package mcp

import "errors"

// ErrMissingOverlapService is returned when the overlap service is not provided.
var ErrMissingOverlapService = errors.New("mcp: overlap service is required")
