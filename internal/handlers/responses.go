package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func notFound(c echo.Context) error {
	return c.String(http.StatusNotFound, "404 Not Found")
}

func unprocessableEntity(c echo.Context, message string) error {
	return c.String(http.StatusUnprocessableEntity, message)
}

func serverError(c echo.Context) error {
	return c.String(http.StatusInternalServerError, "internal server error")
}
