package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/charlesng35/botspace/pkg/errors"
	"github.com/charlesng35/botspace/pkg/logger"
)

// InternalErrorMessage replaces messages that would leak storage details.
const InternalErrorMessage = "Internal server error"

var storageErrorPattern = regexp.MustCompile(`(?i)database|connection|constraint|sql|gorm`)

// Result is the uniform outcome of a service operation. On failure Data is the zero value
// and Error holds a client-safe message.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`

	err *apperrors.AppError
}

// Err returns the client-safe application error for a failed result, nil on success.
func (r Result[T]) Err() *apperrors.AppError {
	if r.Success {
		return nil
	}
	if r.err == nil {
		return apperrors.ErrInternalServer
	}
	return r.err
}

// Execute runs fn and folds its outcome into a Result. Errors mentioning storage internals
// become InternalErrorMessage. Application errors report their code, other errors their
// text, and label stands in for an empty message.
func Execute[T any](ctx context.Context, label string, fn func(ctx context.Context) (T, error)) Result[T] {
	log := logger.WithModule("services")
	start := time.Now()

	data, err := fn(ctx)
	if err == nil {
		log.Debug("action completed", zap.String("action", label), zap.Duration("duration", time.Since(start)))
		return Result[T]{Success: true, Data: data}
	}

	message, appErr := classifyError(err, label)
	log.Warn("action failed",
		zap.String("action", label),
		zap.String("message", message),
		zap.Error(err),
	)

	var zero T
	return Result[T]{Success: false, Data: zero, Error: message, err: appErr}
}

func classifyError(err error, label string) (string, *apperrors.AppError) {
	if storageErrorPattern.MatchString(err.Error()) {
		return InternalErrorMessage, apperrors.ErrInternalServer
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code != "" {
			return appErr.Code, appErr
		}
	}

	message := err.Error()
	if message == "" {
		message = label
	}
	return message, apperrors.New(label, message, apperrors.ErrBadRequest.StatusCode)
}
