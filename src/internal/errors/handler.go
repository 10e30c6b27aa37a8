package errors

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ErrorResponse represents a standardized error response body
type ErrorResponse struct {
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Path       string            `json:"path,omitempty"`
	StatusCode int               `json:"status_code"`
}

// HTTPErrorHandler returns an echo.HTTPErrorHandler that maps application
// errors onto structured JSON responses. Validation and conflict errors map
// to 400, not-found to 404; everything unexpected is logged and returned as
// a bare 500 without internals.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := ErrorResponse{
			Error:      string(ErrorTypeServer),
			Message:    "internal server error",
			Timestamp:  time.Now().UTC(),
			Path:       c.Request().URL.Path,
			StatusCode: http.StatusInternalServerError,
		}

		var appErr *AppError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			resp.Error = string(appErr.Type)
			resp.Message = appErr.Message
			resp.Fields = appErr.Fields
			resp.StatusCode = appErr.StatusCode
			if appErr.Type == ErrorTypeDatabase || appErr.Type == ErrorTypeServer {
				logger.Error("request failed", "path", resp.Path, "error", err)
				resp.Message = "internal server error"
			}
		case errors.As(err, &httpErr):
			resp.StatusCode = httpErr.Code
			resp.Error = http.StatusText(httpErr.Code)
			if msg, ok := httpErr.Message.(string); ok {
				resp.Message = msg
			} else {
				resp.Message = http.StatusText(httpErr.Code)
			}
		default:
			logger.Error("unhandled error", "path", resp.Path, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(resp.StatusCode)
			return
		}
		_ = c.JSON(resp.StatusCode, resp)
	}
}
