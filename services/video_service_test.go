package services

import (
	"errors"
	"strings"
	"testing"

	"KinderTube/apperrors"
	"KinderTube/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadWaitsForModeration(t *testing.T) {
	f := newFixture(t)

	result, err := f.videos.Upload(f.ctx, f.parentCaller(), UploadInput{
		Title:       "Counting with bears",
		Category:    models.CategoryEducation,
		Filename:    "Bears.MP4",
		ContentType: "video/mp4",
	})
	require.NoError(t, err)
	assert.False(t, result.Video.IsApproved)
	assert.True(t, result.Video.IsPublic)
	assert.Equal(t, models.MaxAge, result.Video.AgeMax)
	assert.True(t, strings.HasSuffix(result.Video.Filename, ".mp4"))
	assert.Contains(t, result.UploadURL, result.Video.Filename)

	// до модерации видео нельзя запросить
	_, err = f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, result.Video.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	admin := models.Caller{ParentID: f.other.ID, UserType: models.UserTypeParent, Role: models.RoleAdmin}
	_, err = f.videos.Moderate(f.ctx, f.parentCaller(), result.Video.ID, true)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	_, err = f.videos.Moderate(f.ctx, admin, result.Video.ID, true)
	require.NoError(t, err)

	_, err = f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, result.Video.ID)
	assert.NoError(t, err)
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input UploadInput
	}{
		{"empty title", UploadInput{Title: " "}},
		{"unknown category", UploadInput{Title: "T", Category: models.Category("horror")}},
		{"inverted ages", UploadInput{Title: "T", AgeMin: 10, AgeMax: 5}},
		{"negative duration", UploadInput{Title: "T", Duration: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.videos.Upload(f.ctx, f.parentCaller(), tt.input)
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)
		})
	}

	_, err := f.videos.Upload(f.ctx, f.childCaller(), UploadInput{Title: "T"})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestGetCountsViewsAndHidesPrivate(t *testing.T) {
	f := newFixture(t)

	video, err := f.videos.Get(f.ctx, f.parentCaller(), f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), video.Views)

	private := f.addVideo(t, "private", true)
	stored, err := f.store.Videos().FindByID(f.ctx, private.ID)
	require.NoError(t, err)
	stored.IsPublic = false
	require.NoError(t, f.store.Videos().Save(f.ctx, &stored))

	_, err = f.videos.Get(f.ctx, f.parentCaller(), private.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	_, err = f.videos.Get(f.ctx, f.otherCaller(), private.ID)
	assert.NoError(t, err)

	_, err = f.videos.Get(f.ctx, f.childCaller(), f.video.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestListPublicFiltersFeed(t *testing.T) {
	f := newFixture(t)
	f.addVideo(t, "unmoderated", false)

	page, err := f.videos.ListPublic(f.ctx, f.parentCaller(), models.VideoFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, "V1", page.Videos[0].Title)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.TotalPages)
}

func TestStreamForChildRequiresApproval(t *testing.T) {
	f := newFixture(t)

	_, err := f.videos.Stream(f.ctx, f.childCaller(), f.video.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)
	_, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	require.NoError(t, err)

	url, err := f.videos.Stream(f.ctx, f.childCaller(), f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/get/videos/V1.mp4", url)

	_, err = f.requests.RevokeApproval(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID)
	require.NoError(t, err)
	_, err = f.videos.Stream(f.ctx, f.childCaller(), f.video.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestLikeTogglesAndCommentsCount(t *testing.T) {
	f := newFixture(t)

	liked, err := f.videos.Like(f.ctx, f.parentCaller(), f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikesCount: 1}, liked)

	liked, err = f.videos.Like(f.ctx, f.parentCaller(), f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, LikesCount: 0}, liked)

	_, err = f.videos.AddComment(f.ctx, f.parentCaller(), f.video.ID, "  ")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	comment, err := f.videos.AddComment(f.ctx, f.parentCaller(), f.video.ID, "Great for my kids")
	require.NoError(t, err)
	assert.Equal(t, f.parent.ID, comment.ParentID)

	comments, err := f.videos.Comments(f.ctx, f.parentCaller(), f.video.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	video, err := f.store.Videos().FindByID(f.ctx, f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), video.CommentsCount)
}

func TestDeleteVideoOnlyByUploader(t *testing.T) {
	f := newFixture(t)

	err := f.videos.Delete(f.ctx, f.parentCaller(), f.video.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, f.videos.Delete(f.ctx, f.otherCaller(), f.video.ID))
	_, err = f.videos.Get(f.ctx, f.parentCaller(), f.video.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
