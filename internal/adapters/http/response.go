package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chordcraft/core/internal/domain/entities"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status string `json:"status"`
}

// decodePayload binds the JSON request body into dst. Malformed or
// mistyped bodies are reported as validation errors for kind.
func decodePayload(c echo.Context, kind entities.Kind, dst any) error {
	if c.Request().ContentLength == 0 {
		return entities.NewValidationError(kind, errors.New("request body is required"))
	}

	err := c.Bind(dst)
	if err == nil {
		return nil
	}

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	if httpErr.Code == http.StatusUnsupportedMediaType {
		return httpErr
	}
	return entities.NewValidationError(kind, describeBindError(httpErr))
}

func describeBindError(httpErr *echo.HTTPError) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(httpErr.Internal, io.EOF):
		return errors.New("request body is required")
	case errors.As(httpErr.Internal, &typeErr) && typeErr.Field != "":
		return fmt.Errorf("%s must be %s", typeErr.Field, typeErr.Type)
	case httpErr.Internal != nil:
		return fmt.Errorf("invalid JSON body: %v", httpErr.Internal)
	default:
		return fmt.Errorf("invalid JSON body: %v", httpErr.Message)
	}
}

// bindPayload decodes and validates the request body through the echo validator
func bindPayload(c echo.Context, kind entities.Kind, dst any) error {
	if err := decodePayload(c, kind, dst); err != nil {
		return err
	}
	if err := c.Validate(dst); err != nil {
		return entities.NewValidationError(kind, err)
	}
	return nil
}
