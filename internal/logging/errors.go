package logging

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code and context.
// For standard errors, it logs the error string.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if c := oopsErr.Context(); len(c) > 0 {
			attrs = append(attrs, "context", c)
		}
		logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	logger.ErrorContext(ctx, msg, "error", err)
}
