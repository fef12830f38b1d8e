package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/broady/tyclient"
)

// sensitiveParams are matched case-insensitively as substrings of query
// parameter names.
var sensitiveParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"auth",
	"secret",
	"key",
	"credential",
}

// LoggingInterceptor creates an interceptor that logs operation calls using slog.
// It logs the start and end of each call, including duration, status and
// error. Credentials in the URL are redacted.
func LoggingInterceptor(logger *slog.Logger) tyclient.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(req *http.Request, info *tyclient.CallInfo, next tyclient.Invoker) (*http.Response, error) {
		ctx := req.Context()
		start := time.Now()
		target := sanitizeURL(req.URL)

		logger.InfoContext(ctx, "request started",
			slog.String("endpoint", info.EndpointID()),
			slog.String("method", req.Method),
			slog.String("url", target),
		)

		resp, err := next(req)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "request failed",
				slog.String("endpoint", info.EndpointID()),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.InfoContext(ctx, "request completed",
				slog.String("endpoint", info.EndpointID()),
				slog.Int("status", resp.StatusCode),
				slog.Duration("duration", duration),
			)
		}

		return resp, err
	}
}

// sanitizeURL renders u without user info and with sensitive query values
// replaced by [REDACTED].
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	safe := *u
	if safe.User != nil {
		safe.User = url.User("[REDACTED]")
	}
	if safe.RawQuery == "" {
		return safe.String()
	}

	q := safe.Query()
	changed := false
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, "[REDACTED]")
			changed = true
		}
	}
	if changed {
		safe.RawQuery = q.Encode()
	}
	return safe.String()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
