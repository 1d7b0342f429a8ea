/*
Package log provides structured logging for the lithoglyph Engine using
zerolog.

The package wraps zerolog with a global Logger, Init(Config) for setting
level/format/output, and component loggers for the Engine's main actors
(commit coordinator, journal replay, verifier registry).

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	log.Info("database opened")

	commitLog := log.WithComponent("commit")
	commitLog.Debug().Uint64("sequence", seq).Msg("phase 2: journal synced")

# Design Patterns

Global logger, initialized once at process start and read from any
package without threading a logger through every constructor. Always use
.Err(err) rather than string-formatting an error into the message.
*/
package log
