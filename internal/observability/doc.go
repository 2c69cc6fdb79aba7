// Package observability holds the logging, metrics and SLO subpackages the
// binaries share.
//
// logging builds the JSON slog loggers and carries them through contexts.
// metrics owns the Prometheus collectors for the material pipeline, served
// by the worker's /metrics endpoint. slo tracks the processing success
// ratio against its target.
//
// Nothing at this level is importable on its own; import the subpackage
// for the concern at hand.
package observability
