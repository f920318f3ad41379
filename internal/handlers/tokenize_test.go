package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"example.com/ko-tokenizer/internal/metrics"
	"example.com/ko-tokenizer/internal/models"
	"example.com/ko-tokenizer/internal/tokenizer"
)

type structValidator struct {
	validator *validator.Validate
}

func (v structValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func sampleTokenizer() tokenizer.Tokenizer {
	return tokenizer.Func(func(_ context.Context, text string) ([]models.Token, error) {
		switch text {
		case "":
			return nil, nil
		case "대한민국은":
			return []models.Token{
				{Morph: "대한민국", POS: "NNP", BeginIndex: 0, EndIndex: 4},
				{Morph: "은", POS: "JX", BeginIndex: 4, EndIndex: 5},
			}, nil
		default:
			return nil, errors.New("unexpected input")
		}
	})
}

func newTestEcho(tok tokenizer.Tokenizer, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.Validator = structValidator{validator: validator.New()}
	h := NewTokenizeHandler(tok, m, nil)
	e.GET("/healthz", Healthz)
	e.Any("/tokenize", h.Tokenize)
	return e
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// TestHealthz проверяет формат ответа проверки здоровья.
func TestHealthz(t *testing.T) {
	rec := doRequest(newTestEcho(sampleTokenizer(), nil), http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type: %s", ct)
	}

	parts := strings.SplitN(rec.Body.String(), "\n", 3)
	if len(parts) != 3 || parts[0] != "ok" || parts[1] != "" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
	if _, err := time.Parse(time.RFC3339Nano, parts[2]); err != nil {
		t.Fatalf("expected timestamp, got %q: %v", parts[2], err)
	}
}

// TestTokenize проверяет успешную токенизацию и точный JSON ответа.
func TestTokenize(t *testing.T) {
	m, err := metrics.New()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	rec := doRequest(newTestEcho(sampleTokenizer(), m), http.MethodPost, "/tokenize", `{ "string": "대한민국은" }`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Fatalf("unexpected content type: %s", ct)
	}

	var got, want map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	expected := `{"tokens":[{"pos":"NNP","endIndex":4,"beginIndex":0,"morph":"대한민국"},{"pos":"JX","endIndex":5,"beginIndex":4,"morph":"은"}]}`
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		t.Fatalf("invalid expected json: %v", err)
	}
	if !jsonEqual(got, want) {
		t.Fatalf("expected %s, got %s", expected, rec.Body.String())
	}
}

// TestTokenizeEmptyString проверяет пустую строку.
func TestTokenizeEmptyString(t *testing.T) {
	rec := doRequest(newTestEcho(sampleTokenizer(), nil), http.MethodPost, "/tokenize", `{"string": ""}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"tokens":[]}` {
		t.Fatalf("expected empty tokens, got %s", body)
	}
}

// TestTokenizeMalformed проверяет ответ 422 на неверное тело запроса.
func TestTokenizeMalformed(t *testing.T) {
	e := newTestEcho(sampleTokenizer(), nil)

	bodies := []string{
		`{"text": "대한민국은"}`,
		`{"string": null}`,
		`{"string": 42}`,
		`not json`,
		`["대한민국은"]`,
		``,
	}
	for _, body := range bodies {
		rec := doRequest(e, http.MethodPost, "/tokenize", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422 for %q, got %d", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), TokenizeKey) {
			t.Fatalf("expected message to name key, got %q", rec.Body.String())
		}
	}
}

// TestTokenizeWrongMethod проверяет ответ 404 на метод, отличный от POST.
func TestTokenizeWrongMethod(t *testing.T) {
	e := newTestEcho(sampleTokenizer(), nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := doRequest(e, method, "/tokenize", `{"string": "대한민국은"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404 for %s, got %d", method, rec.Code)
		}
	}
}

// TestTokenizeFailure проверяет ответ 500 при сбое анализатора.
func TestTokenizeFailure(t *testing.T) {
	failing := tokenizer.Func(func(context.Context, string) ([]models.Token, error) {
		return nil, tokenizer.ErrTokenizationFailed
	})
	rec := doRequest(newTestEcho(failing, nil), http.MethodPost, "/tokenize", `{"string": "대한민국은"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), tokenizer.ErrTokenizationFailed.Error()) {
		t.Fatalf("expected generic error body, got %q", rec.Body.String())
	}
}

// TestDecodeTokenizeRequest проверяет классификацию ошибок разбора.
func TestDecodeTokenizeRequest(t *testing.T) {
	e := newTestEcho(sampleTokenizer(), nil)

	req := httptest.NewRequest(http.MethodPost, "/tokenize", strings.NewReader(`{}`))
	c := e.NewContext(req, httptest.NewRecorder())
	if _, err := decodeTokenizeRequest(c); !errors.Is(err, ErrMalformedRequest) {
		t.Fatalf("expected ErrMalformedRequest, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/tokenize", strings.NewReader(`{"string": "abc"}`))
	c = e.NewContext(req, httptest.NewRecorder())
	got, err := decodeTokenizeRequest(c)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.String == nil || *got.String != "abc" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func jsonEqual(a, b interface{}) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(left) == string(right)
}
