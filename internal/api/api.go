package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cafe-pos/internal/entity"
)

// errorResponse maps the core error taxonomy onto HTTP statuses.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidTransition):
		status = http.StatusConflict
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// actorID reads the acting user from the X-Actor-ID header. Every
// mutating endpoint requires it; there is no default identity.
func actorID(c echo.Context) (int, error) {
	raw := c.Request().Header.Get("X-Actor-ID")
	if raw == "" {
		return 0, fmt.Errorf("X-Actor-ID header required: %w", entity.ErrValidation)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid X-Actor-ID header: %w", entity.ErrValidation)
	}
	return id, nil
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, fmt.Errorf("invalid id: %w", entity.ErrValidation)
	}
	return id, nil
}
