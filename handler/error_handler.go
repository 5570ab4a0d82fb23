package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/biportal/pkg/logger"
)

// ErrorMapper translates domain errors into HTTP errors. It returns false for
// errors it does not know.
type ErrorMapper func(err error) (HTTPError, bool)

// MapErrors builds an ErrorMapper from sentinel errors to status codes. The
// client sees the sentinel's message as the error key.
func MapErrors(codes map[error]int) ErrorMapper {
	return func(err error) (HTTPError, bool) {
		for sentinel, code := range codes {
			if errors.Is(err, sentinel) {
				return HTTPError{Code: code, Key: sentinel.Error(), Err: err}, true
			}
		}
		return HTTPError{}, false
	}
}

// NewErrorHandler returns an ErrorHandler that maps err, logs it at a level
// matching its status and renders the JSON error body.
func NewErrorHandler[C Context](log *slog.Logger, mappers ...ErrorMapper) ErrorHandler[C] {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx C, err error) {
		he := classify(err, mappers)

		level := slog.LevelError
		if he.Code < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", he.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		_ = JSONError(he).Render(ctx.ResponseWriter(), r)
	}
}

func classify(err error, mappers []ErrorMapper) HTTPError {
	var he HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, m := range mappers {
		if he, ok := m(err); ok {
			return he
		}
	}
	return HTTPError{Code: http.StatusInternalServerError, Key: ErrInternal.Key, Err: err}
}
