package rest

import (
	"myUserCatalog/pkg/logger"
	"myUserCatalog/pkg/response"
	"myUserCatalog/pkg/validation"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Internal server error"
	msgDataRetrieved = "Data retrieved successfully"
	msgDataUpdated   = "Data updated successfully"
)

// parseID reads the :id path param. Anything that is not a positive integer
// is reported as not ok and treated by callers as an absent resource.
func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindError answers a failed c.Bind. A value of the wrong JSON type is a
// field error; anything else is a malformed body.
func bindError(c echo.Context, err error) error {
	logger.Debug("Invalid request body", "error", err)

	if errs, ok := validation.TypeMismatch(err); ok {
		return response.ValidationError(c, errs)
	}
	return response.Error(c, msgInvalidBody, http.StatusBadRequest)
}
