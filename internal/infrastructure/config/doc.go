// Package config provides 12-factor configuration for the object runtime
// tooling.
//
// Configuration is loaded from OBJMGR_-prefixed environment variables with
// defaults. Command-line flags of cmd/objstress override the loaded values.
//
// Configuration Sections:
//   - Logging: log level and output format
//   - Metrics: Prometheus observer, diagnostics server, broadcast tracing
//   - Stress: soak scenario sizing
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	logger, err := logging.New(cfg.LoggerConfig())
//
// Environment Variables:
//   - OBJMGR_LOG_LEVEL, OBJMGR_LOG_DEV
//   - OBJMGR_METRICS_ENABLED, OBJMGR_METRICS_NAMESPACE, OBJMGR_METRICS_ADDR,
//     OBJMGR_TRACE_BROADCASTS
//   - OBJMGR_STRESS_WORKERS, OBJMGR_STRESS_ITERATIONS, OBJMGR_STRESS_CLIENTS,
//     OBJMGR_STRESS_BROADCAST_RPS
package config
