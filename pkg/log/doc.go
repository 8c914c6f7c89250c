// Package log provides the structured logging system used by the admin panel
// server and CLI.
//
// Loggers are constructed explicitly and passed by dependency injection;
// there is no global default. Records flow through a slog bridge into a
// formatter (text or JSON) and one or more outputs.
//
// Example:
//
//	logger := log.NewLogger(
//		log.WithLevel(log.InfoLevel),
//		log.WithFormatter(&log.TextFormatter{}),
//		log.WithOutput(log.NewConsoleOutput()),
//	)
//	logger.Info("panel mounted", log.Str("base_path", "/bull-admin"))
package log
