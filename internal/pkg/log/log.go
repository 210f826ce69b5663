package log

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// WithRequestID adds request ID to context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestID returns the request ID stored in ctx, or "" when absent
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func formatLog(requestID string, format string, a ...interface{}) string {
	msg := fmt.Sprintf(format, a...)
	if requestID != "" {
		return fmt.Sprintf("[req_id=%s] %s", requestID, msg)
	}
	return msg
}

var (
	infoBadge  = color.New(color.FgWhite, color.BgGreen).SprintFunc()
	warnBadge  = color.New(color.FgWhite, color.BgYellow).SprintFunc()
	errorBadge = color.New(color.FgRed).SprintFunc()
)

// Info log information
func Info(format string, a ...interface{}) {
	fmt.Printf("%s %s\n", infoBadge("[INFO] "), fmt.Sprintf(format, a...))
}

// InfoWithContext logs information with the request ID from ctx
func InfoWithContext(ctx context.Context, format string, a ...interface{}) {
	fmt.Printf("%s %s\n", infoBadge("[INFO] "), formatLog(RequestID(ctx), format, a...))
}

// Warn log warning
func Warn(format string, a ...interface{}) {
	fmt.Printf("%s %s\n", warnBadge("[WARN] "), fmt.Sprintf(format, a...))
}

// WarnWithContext logs a warning with the request ID from ctx
func WarnWithContext(ctx context.Context, format string, a ...interface{}) {
	fmt.Printf("%s %s\n", warnBadge("[WARN] "), formatLog(RequestID(ctx), format, a...))
}

// Error log error
func Error(format string, a ...interface{}) {
	fmt.Printf("%s %s\n", errorBadge("[Error]"), fmt.Sprintf(format, a...))
}

// ErrorWithContext logs an error with the request ID from ctx
func ErrorWithContext(ctx context.Context, format string, a ...interface{}) {
	fmt.Printf("%s %s\n", errorBadge("[Error]"), formatLog(RequestID(ctx), format, a...))
}

// Debug dumps values with their types, used when DEBUG is enabled.
func Debug(a ...interface{}) {
	fmt.Printf("%s %s", infoBadge("[DEBUG]"), spew.Sdump(a...))
}
