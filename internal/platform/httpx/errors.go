package httpx

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Kind classifies an API error for status-code mapping.
type Kind int

const (
	KindValidation Kind = iota // missing/malformed parameter or field
	KindReferenceMismatch      // hospital/service reference does not resolve or disagrees
	KindNotFound               // entity lookup with no match
	KindDuplicate              // uniqueness constraint hit outside the upsert path
	KindInternal               // storage or unexpected runtime failure
)

func (k Kind) status() int {
	switch k {
	case KindValidation, KindReferenceMismatch, KindDuplicate:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the typed API error carried from services and the ingestion
// normalizer up to the boundary handler.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func ValidationDetails(msg string, details interface{}) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func ReferenceMismatch(msg string) *Error {
	return &Error{Kind: KindReferenceMismatch, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Duplicate(msg string) *Error {
	return &Error{Kind: KindDuplicate, Message: msg}
}

func Internal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// ErrorHandler returns the central echo error handler. Every error ends up as
// a `{success:false, error, details?}` envelope; internal causes are exposed
// only in development mode.
func ErrorHandler(logger zerolog.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal server error"
		var details interface{}

		var apiErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
			code = apiErr.Kind.status()
			msg = apiErr.Message
			details = apiErr.Details
			if apiErr.Kind == KindInternal {
				logger.Error().Err(apiErr.Err).Str("path", c.Path()).Msg("internal error")
				if !dev {
					msg = "internal server error"
					details = nil
				} else if apiErr.Err != nil {
					details = apiErr.Err.Error()
				}
			}
		case errors.As(err, &httpErr):
			code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				msg = m
			}
		default:
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			if dev {
				details = err.Error()
			}
		}

		body := echo.Map{"success": false, "error": msg}
		if details != nil {
			body["details"] = details
		}
		_ = c.JSON(code, body)
	}
}
