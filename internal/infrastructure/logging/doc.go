// Package logging builds the zap loggers used by the object runtime and the
// stress tool.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: coloured console output
//
// The runtime itself logs through the *zap.Logger installed with
// object.SetLogger and stays silent until one is installed:
//
//	logger := logging.NewDevelopment()
//	object.SetLogger(logger.Logger)
//	logger.Info("soak started", logging.Run(run))
package logging
