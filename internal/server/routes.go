package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/ko-tokenizer/internal/handlers"
)

const (
	PathHealthz  = "/healthz"
	PathTokenize = "/tokenize"
	PathMetrics  = "/metrics"
)

func registerRoutes(
	e *echo.Echo,
	tokenizeHandler *handlers.TokenizeHandler,
	metricsHandler http.Handler,
) {
	e.GET(PathHealthz, handlers.Healthz)
	// Метод проверяется в обработчике: на любой метод, кроме POST, отвечаем 404.
	e.Any(PathTokenize, tokenizeHandler.Tokenize)

	if metricsHandler != nil {
		e.GET(PathMetrics, echo.WrapHandler(metricsHandler))
	}
}
