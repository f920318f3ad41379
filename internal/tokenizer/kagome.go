package tokenizer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	ko "github.com/ikawaha/kagome-dict-ko"
	"github.com/ikawaha/kagome-dict/dict"
	kagome "github.com/ikawaha/kagome/v2/tokenizer"

	"example.com/ko-tokenizer/internal/models"
)

const unknownPOS = "UNKNOWN"

// Analyzer вызывает kagome со словарем mecab-ko-dic.
type Analyzer struct {
	dict func() *dict.Dict
}

// NewAnalyzer создает анализатор со встроенным корейским словарем.
func NewAnalyzer() *Analyzer {
	return &Analyzer{dict: ko.Dict}
}

// Tokenize создает новый экземпляр kagome на каждый вызов и возвращает морфемы.
func (a *Analyzer) Tokenize(ctx context.Context, text string) (tokens []models.Token, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrTokenizationFailed)
	}

	defer func() {
		if r := recover(); r != nil {
			tokens = nil
			err = fmt.Errorf("%w: analyzer panic: %v", ErrTokenizationFailed, r)
		}
	}()

	t, err := kagome.New(a.dict(), kagome.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("%w: create analyzer: %v", ErrTokenizationFailed, err)
	}

	return convert(t.Tokenize(text)), nil
}

// convert переводит токены kagome в models.Token, сохраняя их порядок и позиции.
// Start и End у kagome уже заданы в символах входной строки.
func convert(analyzed []kagome.Token) []models.Token {
	tokens := make([]models.Token, 0, len(analyzed))
	for _, tok := range analyzed {
		if tok.Class == kagome.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}

		tokens = append(tokens, models.Token{
			Morph:      tok.Surface,
			POS:        partOfSpeech(tok.Features()),
			BeginIndex: tok.Start,
			EndIndex:   tok.End,
		})
	}

	return tokens
}

func partOfSpeech(features []string) string {
	if len(features) == 0 || features[0] == "" || features[0] == "*" {
		return unknownPOS
	}
	return features[0]
}
