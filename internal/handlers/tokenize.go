package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/ko-tokenizer/internal/metrics"
	"example.com/ko-tokenizer/internal/models"
	"example.com/ko-tokenizer/internal/tokenizer"
)

const TokenizeKey = "string"

// ErrMalformedRequest — тело запроса не JSON или в нем нет строкового поля "string".
var ErrMalformedRequest = errors.New("malformed request")

type TokenizeHandler struct {
	Tokenizer tokenizer.Tokenizer
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewTokenizeHandler создает обработчик токенизации. metrics может быть nil.
func NewTokenizeHandler(tok tokenizer.Tokenizer, m *metrics.Metrics, logger *slog.Logger) *TokenizeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenizeHandler{Tokenizer: tok, Metrics: m, Logger: logger}
}

// Tokenize разбирает строку из тела запроса на морфемы.
func (h *TokenizeHandler) Tokenize(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return notFound(c)
	}

	req, err := decodeTokenizeRequest(c)
	if err != nil {
		return unprocessableEntity(c, "Invalid JSON or key not found: "+TokenizeKey)
	}

	ctx := c.Request().Context()
	start := time.Now()
	tokens, err := h.Tokenizer.Tokenize(ctx, *req.String)
	if h.Metrics != nil {
		h.Metrics.ObserveTokenize(time.Since(start), len(tokens), err)
	}
	if err != nil {
		h.Logger.LogAttrs(ctx, slog.LevelError, "tokenize failed",
			slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			slog.Int("input_length", len(*req.String)),
			slog.String("error", err.Error()),
		)
		return serverError(c)
	}

	if tokens == nil {
		tokens = []models.Token{}
	}

	return c.JSON(http.StatusOK, models.TokenizeResponse{Tokens: tokens})
}

// decodeTokenizeRequest читает JSON независимо от Content-Type запроса.
func decodeTokenizeRequest(c echo.Context) (models.TokenizeRequest, error) {
	var req models.TokenizeRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if err := c.Validate(&req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	return req, nil
}
