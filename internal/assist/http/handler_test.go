package assisthttp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scontainr/quotecenter/internal/assist"
	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/project"
)

type nullRepo struct{}

func (nullRepo) Init(ctx context.Context) error                   { return nil }
func (nullRepo) Load(ctx context.Context) (*project.Store, error) { return nil, project.ErrNotFound }
func (nullRepo) Save(ctx context.Context, s *project.Store) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := project.NewService(logger, nullRepo{}, nil, time.Hour)
	require.NoError(t, svc.Bootstrap(context.Background()))

	h := NewHandler(logger, assist.NewService(assist.NewClient("", "")), svc, catalog.Default())
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/assist/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatMissingQuestion(t *testing.T) {
	router := newTestRouter(t)

	rec := post(t, router, `{"question": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Falta la pregunta")
	assert.Contains(t, rec.Body.String(), `"ok":false`)
}

func TestChatInvalidBody(t *testing.T) {
	router := newTestRouter(t)

	rec := post(t, router, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cuerpo inválido")
}

func TestChatWithoutAPIKey(t *testing.T) {
	router := newTestRouter(t)

	rec := post(t, router, `{"question": "¿Margen actual?"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "OPENAI_API_KEY")
	assert.Contains(t, rec.Body.String(), `"ok":false`)
}
