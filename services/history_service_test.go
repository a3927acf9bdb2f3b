package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"KinderTube/apperrors"
	"KinderTube/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSearchKeepsNewestFifty(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 60; i++ {
		_, err := f.history.RecordSearch(f.ctx, f.childCaller(), fmt.Sprintf("query %d", i), i)
		require.NoError(t, err)
	}

	stored := f.reload(t, f.mia.ID)
	require.Len(t, stored.SearchHistory, models.MaxSearchHistory)
	assert.Equal(t, "query 10", stored.SearchHistory[0].Query)
	assert.Equal(t, "query 59", stored.SearchHistory[len(stored.SearchHistory)-1].Query)
}

func TestRecordSearchValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		query   string
		results int
	}{
		{"empty", "   ", 0},
		{"too long", strings.Repeat("a", 201), 0},
		{"negative results", "cats", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.history.RecordSearch(f.ctx, f.childCaller(), tt.query, tt.results)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
		})
	}

	_, err := f.history.RecordSearch(f.ctx, f.parentCaller(), "cats", 1)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	assert.Empty(t, f.reload(t, f.mia.ID).SearchHistory)
}

func TestRecordWatchUpdatesExistingEntry(t *testing.T) {
	f := newFixture(t)

	first, err := f.history.RecordWatch(f.ctx, f.childCaller(), f.video.ID, 30, false)
	require.NoError(t, err)
	second, err := f.history.RecordWatch(f.ctx, f.childCaller(), f.video.ID, 0, true)
	require.NoError(t, err)

	assert.Equal(t, 30, second.WatchDuration)
	assert.True(t, second.Completed)
	assert.True(t, second.WatchedAt.After(first.WatchedAt))

	_, err = f.history.RecordWatch(f.ctx, f.childCaller(), f.video.ID, 45, false)
	require.NoError(t, err)

	stored := f.reload(t, f.mia.ID)
	require.Len(t, stored.WatchHistory, 1)
	assert.Equal(t, 45, stored.WatchHistory[0].WatchDuration)
	assert.True(t, stored.WatchHistory[0].Completed)
}

func TestRecordWatchErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.history.RecordWatch(f.ctx, f.childCaller(), 999, 10, false)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = f.history.RecordWatch(f.ctx, f.childCaller(), f.video.ID, -5, false)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	require.NoError(t, f.children.Delete(f.ctx, f.parentCaller(), f.mia.ID))
	_, err = f.history.RecordWatch(f.ctx, f.childCaller(), f.video.ID, 10, false)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetAndClearHistory(t *testing.T) {
	f := newFixture(t)
	second := f.addVideo(t, "V2", true)

	_, err := f.history.RecordSearch(f.ctx, f.childCaller(), "dinosaurs", 4)
	require.NoError(t, err)
	_, err = f.history.RecordSearch(f.ctx, f.childCaller(), "planets", 2)
	require.NoError(t, err)
	_, err = f.history.RecordWatch(f.ctx, f.childCaller(), f.video.ID, 12, false)
	require.NoError(t, err)
	_, err = f.history.RecordWatch(f.ctx, f.childCaller(), second.ID, 20, true)
	require.NoError(t, err)

	history, err := f.history.GetHistory(f.ctx, f.parentCaller(), f.mia.ID)
	require.NoError(t, err)
	require.Len(t, history.SearchHistory, 2)
	assert.Equal(t, "planets", history.SearchHistory[0].Query)
	require.Len(t, history.WatchHistory, 2)
	assert.Equal(t, second.ID, history.WatchHistory[0].VideoID)

	_, err = f.history.GetHistory(f.ctx, f.otherCaller(), f.mia.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	err = f.history.ClearSearch(f.ctx, f.otherCaller(), f.mia.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, f.history.ClearSearch(f.ctx, f.parentCaller(), f.mia.ID))
	stored := f.reload(t, f.mia.ID)
	assert.Empty(t, stored.SearchHistory)
	assert.Len(t, stored.WatchHistory, 2)

	require.NoError(t, f.history.ClearWatch(f.ctx, f.parentCaller(), f.mia.ID))
	assert.Empty(t, f.reload(t, f.mia.ID).WatchHistory)
}
