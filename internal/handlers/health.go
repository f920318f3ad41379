package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Healthz отвечает "ok", пустой строкой и текущим временем сервера.
func Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok\n\n"+time.Now().UTC().Format(time.RFC3339Nano))
}
