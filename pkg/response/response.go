// Package response builds the JSON envelopes shared by every endpoint.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	DefaultNotFoundMessage = "Resource not found"
	ValidationMessage      = "Validation errors"
)

type SuccessBody struct {
	Success bool        `json:"success"`
	Message *string     `json:"message"`
	Data    interface{} `json:"data"`
}

type TokenBody struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

type ValidationBody struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Success writes {success, message, data}. An empty message is rendered as null.
func Success(c echo.Context, data interface{}, message string, code int) error {
	body := SuccessBody{Success: true, Data: data}
	if message != "" {
		body.Message = &message
	}

	return c.JSON(code, body)
}

func Token(c echo.Context, token string, code int) error {
	return c.JSON(code, TokenBody{Success: true, Token: token})
}

func Error(c echo.Context, message string, code int) error {
	return c.JSON(code, ErrorBody{Error: message})
}

func NotFound(c echo.Context, message string) error {
	if message == "" {
		message = DefaultNotFoundMessage
	}

	return Error(c, message, http.StatusNotFound)
}

func ValidationError(c echo.Context, errs map[string][]string) error {
	return c.JSON(http.StatusUnprocessableEntity, ValidationBody{
		Success: false,
		Message: ValidationMessage,
		Errors:  errs,
	})
}
