package tokenizer

import (
	"context"
	"errors"

	"example.com/ko-tokenizer/internal/models"
)

// ErrTokenizationFailed оборачивает любые сбои морфологического анализатора.
var ErrTokenizationFailed = errors.New("tokenization failed")

// Tokenizer разбивает текст на морфемы в порядке их следования.
type Tokenizer interface {
	Tokenize(ctx context.Context, text string) ([]models.Token, error)
}

// Func позволяет использовать обычную функцию как Tokenizer.
type Func func(ctx context.Context, text string) ([]models.Token, error)

func (f Func) Tokenize(ctx context.Context, text string) ([]models.Token, error) {
	return f(ctx, text)
}
