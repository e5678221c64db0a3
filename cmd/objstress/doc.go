// Package main is the entry point for objstress, a soak tool for the object
// runtime.
//
// It runs the weak-race, broadcast-storm and collection-churn scenarios
// concurrently, verifies the lifetime invariants after each, and prints a
// JSON report. With a metrics address it also serves /metrics,
// /debug/objects and /health and keeps running until interrupted.
//
// Configuration:
//   - Environment variables (OBJMGR_*)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# One-shot soak
//	./objstress -workers 16 -iterations 100000
//
//	# Soak, then keep diagnostics up for scraping
//	./objstress -metrics-addr :9090 -trace -dev
//
// Signals:
//   - SIGINT, SIGTERM: cancel the run and shut down gracefully
package main
