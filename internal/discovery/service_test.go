package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/cadence/internal/ranking"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Snapshot(ctx context.Context) (*ranking.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*ranking.Snapshot)
	return snap, args.Error(1)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) RecentViews(ctx context.Context, userID string, limit int) ([]string, error) {
	args := m.Called(ctx, userID, limit)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func testSnapshot() *ranking.Snapshot {
	return ranking.NewSnapshot([]ranking.CatalogItem{
		{ID: "1", Title: "Blue Moon", Artist: "Abba", Genre: []string{"pop"}, LikeCount: 5},
		{ID: "2", Title: "Blue Sky", Artist: "Abby", Genre: []string{"rock"}, LikeCount: 9},
		{ID: "3", Title: "Red Sun", Artist: "Cher", Genre: []string{"pop"}, LikeCount: 1},
	})
}

func newTestService() (*Service, *mockCatalog, *mockHistory) {
	catalog := &mockCatalog{}
	history := &mockHistory{}
	return NewService(catalog, history, ranking.NewEngine(ranking.DefaultConfig())), catalog, history
}

func TestSearch(t *testing.T) {
	svc, catalog, history := newTestService()
	catalog.On("Snapshot", mock.Anything).Return(testSnapshot(), nil)

	res, err := svc.Search(context.Background(), "blue")
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "1"}, res.IDs())
	catalog.AssertExpectations(t)
	history.AssertNotCalled(t, "RecentViews", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchCatalogError(t *testing.T) {
	svc, catalog, _ := newTestService()
	boom := errors.New("db down")
	catalog.On("Snapshot", mock.Anything).Return(nil, boom)

	_, err := svc.Search(context.Background(), "blue")
	assert.ErrorIs(t, err, boom)
}

func TestRecommendUsesRecentWindow(t *testing.T) {
	svc, catalog, history := newTestService()
	catalog.On("Snapshot", mock.Anything).Return(testSnapshot(), nil)
	history.On("RecentViews", mock.Anything, "u1", ranking.RecentWindow).Return([]string{"1"}, nil)

	res, err := svc.Recommend(context.Background(), "u1")
	require.NoError(t, err)

	assert.False(t, res.ColdStart)
	require.NotEmpty(t, res.Items)
	assert.Equal(t, "1", res.Items[0].ID)
	history.AssertExpectations(t)
}

func TestRecommendColdStart(t *testing.T) {
	svc, catalog, history := newTestService()
	catalog.On("Snapshot", mock.Anything).Return(testSnapshot(), nil)
	history.On("RecentViews", mock.Anything, "new", ranking.RecentWindow).Return([]string{}, nil)

	res, err := svc.Recommend(context.Background(), "new")
	require.NoError(t, err)

	assert.True(t, res.ColdStart)
	assert.Equal(t, []string{"2", "1", "3"}, res.IDs())
}

func TestRecommendHistoryError(t *testing.T) {
	svc, catalog, history := newTestService()
	boom := errors.New("history unavailable")
	catalog.On("Snapshot", mock.Anything).Return(testSnapshot(), nil).Maybe()
	history.On("RecentViews", mock.Anything, "u1", ranking.RecentWindow).Return(nil, boom)

	_, err := svc.Recommend(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
}

func TestRecommendCanceled(t *testing.T) {
	svc, catalog, history := newTestService()
	catalog.On("Snapshot", mock.Anything).Return(nil, context.Canceled).Maybe()
	history.On("RecentViews", mock.Anything, "u1", ranking.RecentWindow).Return(nil, context.Canceled).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Recommend(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}
