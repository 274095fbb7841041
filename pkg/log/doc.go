/*
Package log provides structured logging for colony using zerolog.

The log package wraps zerolog to give every colony package JSON-structured
logging with component-specific child loggers, a configurable severity
threshold, and small helpers for the handful of logging patterns that
recur across the keystore, datastore, graphstore, and podmanager packages.

# Usage

Initializing the logger:

	import "github.com/colonylib/colony/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple logging:

	log.Info("configuration pod bootstrapped")
	log.Debug("checking update queue")
	log.Warn("additional scratchpad fetch failed, continuing")
	log.Error("upload_all aborted")

Structured logging:

	log.Logger.Info().
		Str("pod", podAddress).
		Int("scratchpads", len(sps)).
		Msg("processed pod data")

Component and context loggers:

	podLog := log.WithComponent("podmanager")
	podLog.Info().Msg("starting upload_all")

	opLog := log.WithOperation(operationID)
	opLog.Warn().Err(err).Str("pod", addr).Msg("fetch failed, skipping")

# Severity

	Debug - verbose, development and troubleshooting only
	Info  - normal decisions: pod added, upload succeeded, fork resolved
	Warn  - recoverable anomalies: a best-effort fetch failed, a fork
	        candidate was skipped
	Error - propagated failures: an operation returned an error to its caller

# Context loggers

WithComponent tags every log line from one package ("keystore",
"graphstore", "podmanager"). WithPod, WithAddress, and WithOperation add a
single correlating field, the same way; WithOperation's operation_id
field is what ties together every log line emitted by one concurrent
fan-out (upload_all, refresh_cache, refresh_ref) across its goroutines.
*/
package log
