// Package log builds the slog loggers used by warcsift.
//
// Archived HTTP traffic routinely carries cookies, bearer tokens and very
// long bodies. The RedactingHandler wraps any slog.Handler and, before a
// record reaches it:
//   - masks attributes whose key names a credential (cookie, authorization, token)
//   - masks string values that look like bearer or basic credentials
//   - truncates string values longer than MaxValueLength
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("record skipped", "url", u, "set-cookie", h.Get("Set-Cookie"))
//
// Use NewJSONLogger for machine-readable output.
package log
