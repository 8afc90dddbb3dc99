package corpusservice

import (
	"context"
	"docregistry/internal/models"
	"docregistry/internal/repositories/storage"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCorpusRepository struct {
	mock.Mock
}

func (m *MockCorpusRepository) CreateCorpus(ctx context.Context, corpus *models.Corpus) error {
	args := m.Called(ctx, corpus)
	return args.Error(0)
}

func (m *MockCorpusRepository) CorpusBySlug(ctx context.Context, slug string) (*models.Corpus, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Corpus), args.Error(1)
}

func (m *MockCorpusRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Corpus, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Corpus), args.Error(1)
}

func (m *MockCorpusRepository) ListWatched(ctx context.Context) ([]*models.Corpus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Corpus), args.Error(1)
}

func (m *MockCorpusRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCorpusRepository) ReplaceScan(ctx context.Context, corpusID string, docs []*models.Document, links []*models.Link) error {
	args := m.Called(ctx, corpusID, docs, links)
	return args.Error(0)
}

type MockTreeReader struct {
	mock.Mock
}

func (m *MockTreeReader) MarkdownFiles(ctx context.Context, root string, ignored func(rel string) bool) ([]*storage.File, error) {
	args := m.Called(ctx, root, mock.Anything)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.File), args.Error(1)
}

func (m *MockTreeReader) RootExists(root string) bool {
	args := m.Called(root)
	return args.Bool(0)
}

type MockReportCache struct {
	mock.Mock
}

func (m *MockReportCache) Del(ctx context.Context, slugs ...string) error {
	args := m.Called(ctx, slugs)
	return args.Error(0)
}

type MockWatchRegistry struct {
	mock.Mock
}

func (m *MockWatchRegistry) Attach(corpus *models.Corpus) {
	m.Called(corpus)
}

func (m *MockWatchRegistry) Detach(slug string) {
	m.Called(slug)
}

func TestRegisterCorpus_Success(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)
	tree := new(MockTreeReader)

	tree.On("RootExists", "/docs/handbook").Return(true)
	repo.On("CreateCorpus", mock.Anything, mock.AnythingOfType("*models.Corpus")).Return(nil)

	service := New(slog.Default(), repo, tree, new(MockReportCache), new(MockWatchRegistry))

	requester := &models.User{ID: "user-1", Login: "alice"}
	corpus := &models.Corpus{Slug: "handbook", Name: "Handbook", RootPath: "/docs/handbook"}

	id, err := service.RegisterCorpus(context.Background(), requester, corpus)
	require.NoError(t, err)

	assert.NotEmpty(t, id)
	assert.Equal(t, id, corpus.ID)
	assert.Equal(t, "user-1", corpus.OwnerID)
	assert.False(t, corpus.CreatedAt.IsZero())

	repo.AssertExpectations(t)
}

func TestRegisterCorpus_InvalidSlug(t *testing.T) {
	t.Parallel()

	service := New(slog.Default(), new(MockCorpusRepository), new(MockTreeReader), new(MockReportCache), new(MockWatchRegistry))

	requester := &models.User{ID: "user-1"}
	corpus := &models.Corpus{Slug: "Bad Slug!", RootPath: "/docs"}

	_, err := service.RegisterCorpus(context.Background(), requester, corpus)
	assert.ErrorIs(t, err, models.ErrInvalidParams)
}

func TestRegisterCorpus_EmptyRoot(t *testing.T) {
	t.Parallel()

	service := New(slog.Default(), new(MockCorpusRepository), new(MockTreeReader), new(MockReportCache), new(MockWatchRegistry))

	requester := &models.User{ID: "user-1"}
	corpus := &models.Corpus{Slug: "handbook"}

	_, err := service.RegisterCorpus(context.Background(), requester, corpus)
	assert.ErrorIs(t, err, models.ErrInvalidParams)
}

func TestRegisterCorpus_RootNotFound(t *testing.T) {
	t.Parallel()

	tree := new(MockTreeReader)
	tree.On("RootExists", "/docs/ghost").Return(false)

	service := New(slog.Default(), new(MockCorpusRepository), tree, new(MockReportCache), new(MockWatchRegistry))

	requester := &models.User{ID: "user-1"}
	corpus := &models.Corpus{Slug: "handbook", RootPath: "/docs/ghost"}

	_, err := service.RegisterCorpus(context.Background(), requester, corpus)
	assert.ErrorIs(t, err, models.ErrRootNotFound)
}

func TestRegisterCorpus_DuplicateSlug(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)
	tree := new(MockTreeReader)

	tree.On("RootExists", "/docs/handbook").Return(true)
	repo.On("CreateCorpus", mock.Anything, mock.Anything).
		Return(&models.UniqueConstraintError{
			Constraint: "corpora_slug_key",
			Err:        models.ErrUNIQUEConstraintFailed,
		})

	service := New(slog.Default(), repo, tree, new(MockReportCache), new(MockWatchRegistry))

	requester := &models.User{ID: "user-1"}
	corpus := &models.Corpus{Slug: "handbook", RootPath: "/docs/handbook"}

	_, err := service.RegisterCorpus(context.Background(), requester, corpus)
	assert.ErrorIs(t, err, models.ErrCorpusExists)
}

func TestRegisterCorpus_WatchedCorpusJoinsWatcher(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)
	tree := new(MockTreeReader)
	watch := new(MockWatchRegistry)

	tree.On("RootExists", "/docs/handbook").Return(true)
	repo.On("CreateCorpus", mock.Anything, mock.Anything).Return(nil)

	corpus := &models.Corpus{Slug: "handbook", RootPath: "/docs/handbook", Watch: true}
	watch.On("Attach", corpus).Return()

	service := New(slog.Default(), repo, tree, new(MockReportCache), watch)

	_, err := service.RegisterCorpus(context.Background(), &models.User{ID: "user-1"}, corpus)
	require.NoError(t, err)

	watch.AssertExpectations(t)
}

func TestRegisterCorpus_UnwatchedCorpusStaysOut(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)
	tree := new(MockTreeReader)
	watch := new(MockWatchRegistry)

	tree.On("RootExists", "/docs/handbook").Return(true)
	repo.On("CreateCorpus", mock.Anything, mock.Anything).Return(nil)

	corpus := &models.Corpus{Slug: "handbook", RootPath: "/docs/handbook"}

	service := New(slog.Default(), repo, tree, new(MockReportCache), watch)

	_, err := service.RegisterCorpus(context.Background(), &models.User{ID: "user-1"}, corpus)
	require.NoError(t, err)

	watch.AssertNotCalled(t, "Attach", mock.Anything)
}

func TestCorpusBySlug_NotFound(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)
	repo.On("CorpusBySlug", mock.Anything, "ghost").Return(nil, models.ErrCorpusNotFound)

	service := New(slog.Default(), repo, new(MockTreeReader), new(MockReportCache), new(MockWatchRegistry))

	_, err := service.CorpusBySlug(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrCorpusNotFound)
}

func TestDeleteCorpus_Success(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)
	cache := new(MockReportCache)
	watch := new(MockWatchRegistry)

	corpus := &models.Corpus{ID: "corpus-1", Slug: "handbook", OwnerID: "user-1"}

	repo.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)
	repo.On("Delete", mock.Anything, "corpus-1").Return(nil)
	cache.On("Del", mock.Anything, []string{"handbook"}).Return(nil)
	watch.On("Detach", "handbook").Return()

	service := New(slog.Default(), repo, new(MockTreeReader), cache, watch)

	err := service.DeleteCorpus(context.Background(), "handbook", &models.User{ID: "user-1"})
	require.NoError(t, err)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	watch.AssertExpectations(t)
}

func TestDeleteCorpus_NotOwner(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)

	corpus := &models.Corpus{ID: "corpus-1", Slug: "handbook", OwnerID: "user-1"}
	repo.On("CorpusBySlug", mock.Anything, "handbook").Return(corpus, nil)

	service := New(slog.Default(), repo, new(MockTreeReader), new(MockReportCache), new(MockWatchRegistry))

	err := service.DeleteCorpus(context.Background(), "handbook", &models.User{ID: "user-2"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestScan_Success(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)
	tree := new(MockTreeReader)
	cache := new(MockReportCache)

	root := t.TempDir()
	corpus := &models.Corpus{ID: "corpus-1", Slug: "handbook", RootPath: root}

	files := []*storage.File{
		{
			RelPath:  "README.md",
			Data:     []byte("# Handbook\n\n[Naming](api/naming.rules.md)\n"),
			Checksum: "sum-1",
		},
		{
			RelPath:  "api/naming.rules.md",
			Data:     []byte("# Naming\n\n**DEPRECATED**: use tagging instead.\n\n## Casing\n\n[top](#naming)\n"),
			Checksum: "sum-2",
		},
		{
			RelPath:  "api/untitled.md",
			Data:     []byte("no heading here\n"),
			Checksum: "sum-3",
		},
	}

	tree.On("MarkdownFiles", mock.Anything, root, mock.Anything).Return(files, nil)
	repo.On("ReplaceScan", mock.Anything, "corpus-1", mock.Anything, mock.Anything).Return(nil)
	cache.On("Del", mock.Anything, []string{"handbook"}).Return(nil)

	service := New(slog.Default(), repo, tree, cache, new(MockWatchRegistry))

	snap, err := service.Scan(context.Background(), corpus)
	require.NoError(t, err)

	require.Len(t, snap.Documents, 3)

	readme := snap.DocumentByPath("README.md")
	require.NotNil(t, readme)
	assert.Equal(t, models.DocKindIndex, readme.Kind)
	assert.Equal(t, "Handbook", readme.Title)
	assert.Equal(t, "sum-1", readme.Checksum)
	assert.Equal(t, "corpus-1", readme.CorpusID)
	assert.NotEmpty(t, readme.ID)

	rule := snap.DocumentByPath("api/naming.rules.md")
	require.NotNil(t, rule)
	assert.Equal(t, models.DocKindRule, rule.Kind)

	// A document without an H1 falls back to its file name.
	untitled := snap.DocumentByPath("api/untitled.md")
	require.NotNil(t, untitled)
	assert.Equal(t, models.DocKindGuide, untitled.Kind)
	assert.Equal(t, "untitled", untitled.Title)

	require.Len(t, snap.Links, 2)
	assert.Equal(t, "api/naming.rules.md", snap.Links[0].TargetPath)
	assert.Equal(t, models.LinkKindRelative, snap.Links[0].Kind)
	assert.Equal(t, models.LinkKindAnchor, snap.Links[1].Kind)
	assert.Equal(t, "naming", snap.Links[1].Fragment)

	assert.Equal(t, []string{"naming", "casing"}, snap.Anchors["api/naming.rules.md"])
	assert.Equal(t, 3, snap.Deprecated["api/naming.rules.md"])

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestScan_RootGone(t *testing.T) {
	t.Parallel()

	tree := new(MockTreeReader)

	root := t.TempDir()
	corpus := &models.Corpus{ID: "corpus-1", Slug: "handbook", RootPath: root}

	tree.On("MarkdownFiles", mock.Anything, root, mock.Anything).Return(nil, models.ErrRootNotFound)

	service := New(slog.Default(), new(MockCorpusRepository), tree, new(MockReportCache), new(MockWatchRegistry))

	_, err := service.Scan(context.Background(), corpus)
	assert.ErrorIs(t, err, models.ErrRootNotFound)
}

func TestScan_UnreadableFile(t *testing.T) {
	t.Parallel()

	tree := new(MockTreeReader)

	root := t.TempDir()
	corpus := &models.Corpus{ID: "corpus-1", Slug: "handbook", RootPath: root}

	scanErr := &models.ScanError{Path: "broken.md", Err: errors.New("permission denied")}
	tree.On("MarkdownFiles", mock.Anything, root, mock.Anything).Return(nil, scanErr)

	service := New(slog.Default(), new(MockCorpusRepository), tree, new(MockReportCache), new(MockWatchRegistry))

	_, err := service.Scan(context.Background(), corpus)

	var got *models.ScanError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "broken.md", got.Path)
}

func TestScan_PersistFailure(t *testing.T) {
	t.Parallel()

	repo := new(MockCorpusRepository)
	tree := new(MockTreeReader)

	root := t.TempDir()
	corpus := &models.Corpus{ID: "corpus-1", Slug: "handbook", RootPath: root}

	tree.On("MarkdownFiles", mock.Anything, root, mock.Anything).Return([]*storage.File{}, nil)
	repo.On("ReplaceScan", mock.Anything, "corpus-1", mock.Anything, mock.Anything).Return(errors.New("tx failed"))

	service := New(slog.Default(), repo, tree, new(MockReportCache), new(MockWatchRegistry))

	_, err := service.Scan(context.Background(), corpus)
	assert.ErrorIs(t, err, models.ErrInternal)
}

func TestDocKind(t *testing.T) {
	t.Parallel()

	policy := models.DefaultPolicy()

	assert.Equal(t, models.DocKindIndex, docKind("README.md", policy))
	assert.Equal(t, models.DocKindIndex, docKind("api/README.md", policy))
	assert.Equal(t, models.DocKindRule, docKind("api/naming.rules.md", policy))
	assert.Equal(t, models.DocKindGuide, docKind("guides/setup.md", policy))
}

func TestDeprecationLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
		line int
		ok   bool
	}{
		{"plain", "# T\nDEPRECATED: gone\n", 2, true},
		{"blockquote", "> **Deprecated** since v2\n", 1, true},
		{"heading", "## DEPRECATED\n", 1, true},
		{"mid-word", "this is not deprecated here\n", 0, false},
		{"absent", "# T\nall good\n", 0, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			line, ok := deprecationLine([]byte(tc.data))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.line, line)
		})
	}
}
