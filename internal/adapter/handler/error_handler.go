package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	DocumentID      string `json:"documentId,omitempty"`
	StagedTermCount *int   `json:"stagedTermCount,omitempty"`
}

var transportMessages = map[int]string{
	http.StatusNotFound:              "Not found",
	http.StatusMethodNotAllowed:      "Method not allowed",
	http.StatusRequestEntityTooLarge: "Request body too large",
	http.StatusTooManyRequests:       "Rate limit exceeded",
	http.StatusUnsupportedMediaType:  "Unsupported media type",
}

// ErrorHandler renders every error as the {status, message} envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := msgInternalError

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = httpErrorMessage(he)
	}

	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"status", code,
			"error", err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, Response{Status: "error", Message: message})
	}
	if writeErr != nil {
		slog.ErrorContext(c.Request().Context(), "failed to write error response", "error", writeErr)
	}
}

func httpErrorMessage(he *echo.HTTPError) string {
	msg, ok := he.Message.(string)
	if !ok {
		msg = fmt.Sprint(he.Message)
	}
	// echo's own errors carry the bare status text.
	if msg == "" || msg == http.StatusText(he.Code) {
		if m, ok := transportMessages[he.Code]; ok {
			return m
		}
		if he.Code >= http.StatusInternalServerError {
			return msgInternalError
		}
		return http.StatusText(he.Code)
	}
	return msg
}
