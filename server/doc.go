// Package server exposes question answering over HTTP.
//
// Routes:
//
//	POST /api/v1/ask        {"question": "..."} -> answer with its resolution
//	GET  /api/v1/documents  stored document summaries
//	GET  /check/healthy     liveness check
//
// Errors are rendered as {"code", "error"}; request validation failures as
// {"status": 422, "errors": {field: reason}}.
package server
