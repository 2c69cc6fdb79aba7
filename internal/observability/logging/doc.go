// Package logging wraps log/slog with the handlers and context helpers the
// rest of the service uses.
//
// Every binary builds its logger through NewLogger, so log output is JSON
// everywhere and LOG_LEVEL=debug works uniformly. FromContext and WithLogger
// carry request- or job-scoped loggers through call chains that only receive
// a context.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//	logger.Info("worker started", slog.String("schedule", cfg.CleanupSchedule))
package logging
