package lintservice

import (
	"context"
	"docregistry/internal/models"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, corpus *models.Corpus) (*models.Snapshot, error) {
	args := m.Called(ctx, corpus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Snapshot), args.Error(1)
}

type MockCorpusProvider struct {
	mock.Mock
}

func (m *MockCorpusProvider) CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Corpus), args.Error(1)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) CreateReport(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) LatestReport(ctx context.Context, corpusID string) (*models.Report, error) {
	args := m.Called(ctx, corpusID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportRepository) FilteredIssues(ctx context.Context, corpusID string, filter models.IssueFilter) ([]*models.Issue, error) {
	args := m.Called(ctx, corpusID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Issue), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, slug string) (string, error) {
	args := m.Called(ctx, slug)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, slug string, reportJSON string) error {
	args := m.Called(ctx, slug, reportJSON)
	return args.Error(0)
}

func (m *MockCache) Del(ctx context.Context, slugs ...string) error {
	args := m.Called(ctx, slugs)
	return args.Error(0)
}

func testCorpus() *models.Corpus {
	return &models.Corpus{ID: "corpus-1", Slug: "handbook", RootPath: "/docs/handbook"}
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	provider := new(MockCorpusProvider)
	scanner := new(MockScanner)
	repo := new(MockReportRepository)
	cache := new(MockCache)

	corpus := testCorpus()

	snap := snapshot(
		[]*models.Document{
			doc("README.md", models.DocKindIndex),
			doc("api/lonely.rules.md", models.DocKindRule),
			doc("api/README.md", models.DocKindIndex),
		},
		[]*models.Link{relLink("README.md", "api/README.md", 1)},
	)
	snap.Deprecated["README.md"] = 2

	provider.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)
	scanner.On("Scan", mock.Anything, corpus).Return(snap, nil)
	repo.On("CreateReport", mock.Anything, mock.AnythingOfType("*models.Report")).Return(nil)
	cache.On("Set", mock.Anything, "handbook", mock.AnythingOfType("string")).Return(nil)

	service := New(slog.Default(), scanner, provider, repo, cache)

	report, err := service.Run(context.Background(), "handbook")
	require.NoError(t, err)

	assert.Equal(t, "corpus-1", report.CorpusID)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 3, report.FilesScanned)
	assert.Equal(t, 1, report.LinksFound)

	// api/lonely.rules.md: index-gap warning + orphan info,
	// README.md: deprecated-marker warning.
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 2, report.Warnings)
	assert.Equal(t, 1, report.Infos)

	for _, issue := range report.Issues {
		assert.Equal(t, report.ID, issue.ReportID)
		assert.NotEmpty(t, issue.ID)
	}

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRun_CorpusNotFound(t *testing.T) {
	t.Parallel()

	provider := new(MockCorpusProvider)
	provider.On("CorpusBySlug", mock.Anything, "ghost").Return(nil, models.ErrCorpusNotFound)

	service := New(slog.Default(), new(MockScanner), provider, new(MockReportRepository), new(MockCache))

	_, err := service.Run(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrCorpusNotFound)
}

func TestRun_ScanErrorPassedThrough(t *testing.T) {
	t.Parallel()

	provider := new(MockCorpusProvider)
	scanner := new(MockScanner)

	corpus := testCorpus()
	scanErr := &models.ScanError{Path: "bad.md", Err: errors.New("read failed")}

	provider.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)
	scanner.On("Scan", mock.Anything, corpus).Return(nil, scanErr)

	service := New(slog.Default(), scanner, provider, new(MockReportRepository), new(MockCache))

	_, err := service.Run(context.Background(), "handbook")

	var got *models.ScanError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "bad.md", got.Path)
}

func TestRun_UnexpectedScanFailureIsInternal(t *testing.T) {
	t.Parallel()

	provider := new(MockCorpusProvider)
	scanner := new(MockScanner)

	corpus := testCorpus()

	provider.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)
	scanner.On("Scan", mock.Anything, corpus).Return(nil, errors.New("db gone"))

	service := New(slog.Default(), scanner, provider, new(MockReportRepository), new(MockCache))

	_, err := service.Run(context.Background(), "handbook")
	assert.ErrorIs(t, err, models.ErrInternal)
}

func TestRun_PersistFailure(t *testing.T) {
	t.Parallel()

	provider := new(MockCorpusProvider)
	scanner := new(MockScanner)
	repo := new(MockReportRepository)

	corpus := testCorpus()
	snap := snapshot(nil, nil)

	provider.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)
	scanner.On("Scan", mock.Anything, corpus).Return(snap, nil)
	repo.On("CreateReport", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	service := New(slog.Default(), scanner, provider, repo, new(MockCache))

	_, err := service.Run(context.Background(), "handbook")
	assert.ErrorIs(t, err, models.ErrInternal)
}

func TestLatestReport_CacheHit(t *testing.T) {
	t.Parallel()

	cache := new(MockCache)

	cached := &models.Report{ID: "report-1", CorpusID: "corpus-1", FilesScanned: 4}
	cachedJSON, err := json.Marshal(cached)
	require.NoError(t, err)

	cache.On("Get", mock.Anything, "handbook").Return(string(cachedJSON), nil)

	service := New(slog.Default(), new(MockScanner), new(MockCorpusProvider), new(MockReportRepository), cache)

	report, err := service.LatestReport(context.Background(), "handbook")
	require.NoError(t, err)

	assert.Equal(t, "report-1", report.ID)
	assert.Equal(t, 4, report.FilesScanned)
}

func TestLatestReport_CacheMissFallsBackToRepo(t *testing.T) {
	t.Parallel()

	provider := new(MockCorpusProvider)
	repo := new(MockReportRepository)
	cache := new(MockCache)

	corpus := testCorpus()
	stored := &models.Report{ID: "report-2", CorpusID: "corpus-1"}

	cache.On("Get", mock.Anything, "handbook").Return("", models.ErrReportNotFound)
	provider.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)
	repo.On("LatestReport", mock.Anything, "corpus-1").Return(stored, nil)
	cache.On("Set", mock.Anything, "handbook", mock.AnythingOfType("string")).Return(nil)

	service := New(slog.Default(), new(MockScanner), provider, repo, cache)

	report, err := service.LatestReport(context.Background(), "handbook")
	require.NoError(t, err)

	assert.Equal(t, "report-2", report.ID)
	cache.AssertExpectations(t)
}

func TestLatestReport_NoReport(t *testing.T) {
	t.Parallel()

	provider := new(MockCorpusProvider)
	repo := new(MockReportRepository)
	cache := new(MockCache)

	corpus := testCorpus()

	cache.On("Get", mock.Anything, "handbook").Return("", models.ErrReportNotFound)
	provider.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)
	repo.On("LatestReport", mock.Anything, "corpus-1").Return(nil, models.ErrReportNotFound)

	service := New(slog.Default(), new(MockScanner), provider, repo, cache)

	_, err := service.LatestReport(context.Background(), "handbook")
	assert.ErrorIs(t, err, models.ErrReportNotFound)
}

func TestIssues_InvalidFilter(t *testing.T) {
	t.Parallel()

	service := New(slog.Default(), new(MockScanner), new(MockCorpusProvider), new(MockReportRepository), new(MockCache))

	_, err := service.Issues(context.Background(), "handbook", models.IssueFilter{Code: "no-such-check"})
	assert.ErrorIs(t, err, models.ErrInvalidParams)
}

func TestIssues_Success(t *testing.T) {
	t.Parallel()

	provider := new(MockCorpusProvider)
	repo := new(MockReportRepository)

	corpus := testCorpus()
	filter := models.IssueFilter{Severity: string(models.SeverityError), Limit: 10}
	want := []*models.Issue{
		{ID: "issue-1", Code: models.CheckBrokenLink, Severity: models.SeverityError},
	}

	provider.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)
	repo.On("FilteredIssues", mock.Anything, "corpus-1", filter).Return(want, nil)

	service := New(slog.Default(), new(MockScanner), provider, repo, new(MockCache))

	issues, err := service.Issues(context.Background(), "handbook", filter)
	require.NoError(t, err)
	assert.Equal(t, want, issues)
}
