package reports

import (
	"context"
	"docregistry/internal/models"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReportProvider struct {
	mock.Mock
}

func (m *mockReportProvider) LatestReport(ctx context.Context, slug string) (*models.Report, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *mockReportProvider) Issues(ctx context.Context, slug string, filter models.IssueFilter) ([]*models.Issue, error) {
	args := m.Called(ctx, slug, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Issue), args.Error(1)
}

func TestGet_Success(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/corpora/handbook/report", nil)
	w := httptest.NewRecorder()

	mockProvider := new(mockReportProvider)
	mockProvider.On("LatestReport", mock.Anything, "handbook").Return(testReport(), nil)

	Get(req.Context(), discardLogger(), w, req, "handbook", mockProvider)

	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data struct {
			Report struct {
				ID         string `json:"id"`
				LinksFound int    `json:"links_found"`
			} `json:"report"`
		} `json:"data"`
	}
	err := json.NewDecoder(resp.Body).Decode(&parsed)
	require.NoError(t, err)

	assert.Equal(t, "report-1", parsed.Data.Report.ID)
	assert.Equal(t, 25, parsed.Data.Report.LinksFound)
}

func TestGet_NoReport(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/corpora/handbook/report", nil)
	w := httptest.NewRecorder()

	mockProvider := new(mockReportProvider)
	mockProvider.On("LatestReport", mock.Anything, "handbook").Return(nil, models.ErrReportNotFound)

	Get(req.Context(), discardLogger(), w, req, "handbook", mockProvider)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGet_CorpusNotFound(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/corpora/ghost/report", nil)
	w := httptest.NewRecorder()

	mockProvider := new(mockReportProvider)
	mockProvider.On("LatestReport", mock.Anything, "ghost").Return(nil, models.ErrCorpusNotFound)

	Get(req.Context(), discardLogger(), w, req, "ghost", mockProvider)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIssues_FilterFromQuery(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet,
		"/api/corpora/handbook/issues?code=broken-link&severity=error&limit=10", nil)
	w := httptest.NewRecorder()

	want := models.IssueFilter{
		Code:     models.CheckBrokenLink,
		Severity: string(models.SeverityError),
		Limit:    10,
	}

	issues := []*models.Issue{
		{
			Code:     models.CheckBrokenLink,
			Severity: models.SeverityError,
			Path:     "README.md",
			Line:     5,
			Detail:   `link target "gone.md" does not exist`,
		},
	}

	mockProvider := new(mockReportProvider)
	mockProvider.On("Issues", mock.Anything, "handbook", want).Return(issues, nil)

	Issues(req.Context(), discardLogger(), w, req, "handbook", mockProvider)

	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data struct {
			Issues []struct {
				Code     string `json:"code"`
				Severity string `json:"severity"`
				Path     string `json:"path"`
			} `json:"issues"`
		} `json:"data"`
	}
	err := json.NewDecoder(resp.Body).Decode(&parsed)
	require.NoError(t, err)
	require.Len(t, parsed.Data.Issues, 1)
	assert.Equal(t, "broken-link", parsed.Data.Issues[0].Code)
	assert.Equal(t, "README.md", parsed.Data.Issues[0].Path)
	mockProvider.AssertExpectations(t)
}

func TestIssues_InvalidFilter(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/corpora/handbook/issues?code=bogus", nil)
	w := httptest.NewRecorder()

	mockProvider := new(mockReportProvider)
	mockProvider.On("Issues", mock.Anything, "handbook", models.IssueFilter{Code: "bogus"}).
		Return(nil, models.ErrInvalidParams)

	Issues(req.Context(), discardLogger(), w, req, "handbook", mockProvider)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssues_NoReport(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/corpora/handbook/issues", nil)
	w := httptest.NewRecorder()

	mockProvider := new(mockReportProvider)
	mockProvider.On("Issues", mock.Anything, "handbook", models.IssueFilter{}).
		Return(nil, models.ErrReportNotFound)

	Issues(req.Context(), discardLogger(), w, req, "handbook", mockProvider)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
