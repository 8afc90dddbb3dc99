package corpora

import (
	"context"
	"docregistry/internal/models"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCorpusRegistrar struct {
	mock.Mock
}

func (m *mockCorpusRegistrar) RegisterCorpus(ctx context.Context, requester *models.User, corpus *models.Corpus) (string, error) {
	args := m.Called(ctx, requester, corpus)
	return args.String(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requestWithUser(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	user := &models.User{ID: "user-1", Login: "alice"}
	ctx := context.WithValue(req.Context(), models.UserContextKey, user)

	return req.WithContext(ctx)
}

func TestAdd_Success(t *testing.T) {
	t.Parallel()

	body := `{"slug": "handbook", "name": "Handbook", "root_path": "/docs/handbook", "watch": true}`
	req := requestWithUser(http.MethodPost, "/api/corpora", body)
	w := httptest.NewRecorder()

	mockRegistrar := new(mockCorpusRegistrar)
	mockRegistrar.On("RegisterCorpus", mock.Anything,
		mock.MatchedBy(func(u *models.User) bool { return u.ID == "user-1" }),
		mock.MatchedBy(func(c *models.Corpus) bool {
			return c.Slug == "handbook" && c.RootPath == "/docs/handbook" && c.Watch
		})).Return("corpus-1", nil)

	Add(req.Context(), discardLogger(), w, req, mockRegistrar)

	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed map[string]map[string]any
	err := json.NewDecoder(resp.Body).Decode(&parsed)
	assert.NoError(t, err)
	assert.Equal(t, "corpus-1", parsed["data"]["id"])
	assert.Equal(t, "handbook", parsed["data"]["slug"])
	mockRegistrar.AssertExpectations(t)
}

func TestAdd_NoUserInContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/corpora", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	Add(req.Context(), discardLogger(), w, req, new(mockCorpusRegistrar))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdd_InvalidJSON(t *testing.T) {
	t.Parallel()

	req := requestWithUser(http.MethodPost, "/api/corpora", `{bad`)
	w := httptest.NewRecorder()

	Add(req.Context(), discardLogger(), w, req, new(mockCorpusRegistrar))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdd_DuplicateSlug(t *testing.T) {
	t.Parallel()

	body := `{"slug": "handbook", "name": "Handbook", "root_path": "/docs/handbook"}`
	req := requestWithUser(http.MethodPost, "/api/corpora", body)
	w := httptest.NewRecorder()

	mockRegistrar := new(mockCorpusRegistrar)
	mockRegistrar.On("RegisterCorpus", mock.Anything, mock.Anything, mock.Anything).
		Return("", models.ErrCorpusExists)

	Add(req.Context(), discardLogger(), w, req, mockRegistrar)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdd_RootNotFound(t *testing.T) {
	t.Parallel()

	body := `{"slug": "handbook", "name": "Handbook", "root_path": "/docs/ghost"}`
	req := requestWithUser(http.MethodPost, "/api/corpora", body)
	w := httptest.NewRecorder()

	mockRegistrar := new(mockCorpusRegistrar)
	mockRegistrar.On("RegisterCorpus", mock.Anything, mock.Anything, mock.Anything).
		Return("", models.ErrRootNotFound)

	Add(req.Context(), discardLogger(), w, req, mockRegistrar)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
