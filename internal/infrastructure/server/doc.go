// Package server hosts the diagnostics HTTP endpoints (/metrics,
// /debug/objects, /health) for long-running object runtime processes such as
// cmd/objstress.
package server
