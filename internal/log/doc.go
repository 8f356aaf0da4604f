// Package log provides structured logging for kbreplace on top of log/slog.
//
// SecureHandler wraps any slog.Handler and masks credentials before they
// reach the output:
//   - attributes whose key names a secret (authorization, cookie, password, token)
//   - bearer and basic authorization values
//   - user:password userinfo embedded in proxy addresses and URLs, which
//     is replaced while the host part is kept
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("using proxy", "proxy", "alice:s3cret@127.0.0.1:1080")
//	// proxy=***REDACTED***@127.0.0.1:1080
package log
