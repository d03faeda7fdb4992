package middleware

import (
	"errors"
	"fmt"
	"myUserCatalog/pkg/logger"
	"myUserCatalog/pkg/response"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors that escaped a handler as {"error": message}.
// Anything that is not an *echo.HTTPError becomes a logged 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case error:
			message = m.Error()
		default:
			message = fmt.Sprint(m)
		}
		if code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
			message = response.DefaultNotFoundMessage
		}
	} else {
		logger.Error("Unhandled error",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = response.Error(c, message, code)
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", "error", writeErr)
	}
}
