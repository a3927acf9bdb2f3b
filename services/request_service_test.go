package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"KinderTube/apperrors"
	"KinderTube/logger"
	"KinderTube/models"
	"KinderTube/repositories"
	"KinderTube/repositories/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmitRequestRejectsDuplicate(t *testing.T) {
	f := newFixture(t)

	view, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)
	require.Len(t, view.RequestedVideos, 1)
	assert.Equal(t, models.RequestPending, view.RequestedVideos[0].Status)
	assert.Equal(t, "V1", view.RequestedVideos[0].Title)

	_, err = f.requests.SubmitRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	stored := f.reload(t, f.mia.ID)
	require.Len(t, stored.Requests, 1)
	assert.Equal(t, models.UserTypeChild, stored.Requests[0].RequestedBy)
	assert.Nil(t, stored.Requests[0].ParentResponse)
	assert.Nil(t, stored.Requests[0].RespondedAt)
}

func TestSubmitRequestChildSessionUsesLowestActiveProfile(t *testing.T) {
	f := newFixture(t)
	leo := f.addChild(t, f.parent.ID, "Leo")

	view, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), leo.ID, f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, f.mia.ID, view.ID)
	assert.Empty(t, f.reload(t, leo.ID).Requests)
}

func TestSubmitRequestValidatesVideoAndOwnership(t *testing.T) {
	f := newFixture(t)
	pending := f.addVideo(t, "unmoderated", false)
	foreign := f.addChild(t, f.other.ID, "Kai")

	tests := []struct {
		name    string
		caller  models.Caller
		childID uint
		videoID uint
		want    error
	}{
		{"missing video", f.childCaller(), 0, 999, apperrors.ErrNotFound},
		{"unapproved video", f.childCaller(), 0, pending.ID, apperrors.ErrNotFound},
		{"foreign child", f.parentCaller(), foreign.ID, f.video.ID, apperrors.ErrForbidden},
		{"missing child", f.parentCaller(), 999, f.video.ID, apperrors.ErrNotFound},
		{"parent without child id", f.parentCaller(), 0, f.video.ID, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.requests.SubmitRequest(f.ctx, tt.caller, tt.childID, tt.videoID)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Empty(t, f.reload(t, f.mia.ID).Requests)
	assert.Empty(t, f.reload(t, foreign.ID).Requests)
}

func TestSubmitRequestNotifiesParentBestEffort(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("push down")

	_, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)

	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, EventVideoRequested, f.notifier.calls[0].Type)
	assert.Contains(t, f.notifier.calls[0].Body, "Mia")
}

func TestResolveRequestApproveAndDerivedLibrary(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)

	detail, err := f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	require.NoError(t, err)
	require.Len(t, detail.ApprovedVideos, 1)
	assert.Equal(t, f.parent.ID, detail.ApprovedVideos[0].ApprovedBy)
	assert.Equal(t, models.RequestApproved, *detail.Requests[0].ParentResponse)

	// повторное одобрение ничего не дублирует
	version := f.reload(t, f.mia.ID).Version
	detail, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	require.NoError(t, err)
	assert.Len(t, detail.ApprovedVideos, 1)
	assert.Equal(t, version, f.reload(t, f.mia.ID).Version)

	detail, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ActionReject)
	require.NoError(t, err)
	assert.Empty(t, detail.ApprovedVideos)
	assert.Equal(t, models.RequestRejected, detail.Requests[0].Status)

	// отклонённый запрос можно одобрить позже
	detail, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	require.NoError(t, err)
	require.Len(t, detail.ApprovedVideos, 1)
	assert.Equal(t, models.RequestApproved, detail.Requests[0].Status)
}

func TestApproveAfterRevokeRestoresLibrary(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)
	_, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	require.NoError(t, err)
	_, err = f.requests.RevokeApproval(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID)
	require.NoError(t, err)

	library, err := f.requests.ProjectChildLibrary(f.ctx, f.childCaller())
	require.NoError(t, err)
	assert.Empty(t, library)

	_, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	require.NoError(t, err)
	library, err = f.requests.ProjectChildLibrary(f.ctx, f.childCaller())
	require.NoError(t, err)
	assert.Len(t, library, 1)
}

func TestResolveRequestErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)

	_, err = f.requests.ResolveRequest(f.ctx, f.childCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = f.requests.ResolveRequest(f.ctx, f.otherCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ApprovalAction("maybe"))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, 999, models.ActionApprove)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.Equal(t, models.RequestPending, f.reload(t, f.mia.ID).Requests[0].Status)
}

func TestRevokeApproval(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)
	_, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID, models.ActionApprove)
	require.NoError(t, err)

	detail, err := f.requests.RevokeApproval(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.ApprovedVideos)
	firstRevoke := *detail.Requests[0].RespondedAt

	detail, err = f.requests.RevokeApproval(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID)
	require.NoError(t, err)
	assert.True(t, detail.Requests[0].RespondedAt.After(firstRevoke))

	version := f.reload(t, f.mia.ID).Version
	_, err = f.requests.RevokeApproval(f.ctx, f.parentCaller(), f.mia.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, version, f.reload(t, f.mia.ID).Version)
}

func TestEndToEndLibraryScenario(t *testing.T) {
	f := newFixture(t)

	mia, err := f.children.Create(f.ctx, f.parentCaller(), ChildInput{
		Name:        "Mia",
		DateOfBirth: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      models.GenderFemale,
	})
	require.NoError(t, err)
	// профиль из фикстуры отключаем, чтобы ребенок действовал от нового
	require.NoError(t, f.children.Delete(f.ctx, f.parentCaller(), f.mia.ID))

	view, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, mia.ID, view.ID)
	assert.Equal(t, models.RequestPending, view.RequestedVideos[0].Status)

	detail, err := f.requests.ResolveRequest(f.ctx, f.parentCaller(), mia.ID, f.video.ID, models.ActionApprove)
	require.NoError(t, err)
	assert.Len(t, detail.ApprovedVideos, 1)

	library, err := f.requests.ProjectChildLibrary(f.ctx, f.childCaller())
	require.NoError(t, err)
	require.Len(t, library, 1)
	assert.Equal(t, f.video.ID, library[0].ID)
	assert.Equal(t, "Mia", library[0].ChildName)

	_, err = f.requests.RevokeApproval(f.ctx, f.parentCaller(), mia.ID, f.video.ID)
	require.NoError(t, err)
	library, err = f.requests.ProjectChildLibrary(f.ctx, f.childCaller())
	require.NoError(t, err)
	assert.Empty(t, library)
}

func TestProjectChildLibraryUnionSortedAndFiltered(t *testing.T) {
	f := newFixture(t)
	leo := f.addChild(t, f.parent.ID, "Leo")
	second := f.addVideo(t, "V2", true)
	removed := f.addVideo(t, "V3", true)

	_, err := f.requests.SubmitRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID)
	require.NoError(t, err)
	_, err = f.requests.SubmitRequest(f.ctx, f.parentCaller(), leo.ID, second.ID)
	require.NoError(t, err)
	_, err = f.requests.SubmitRequest(f.ctx, f.parentCaller(), leo.ID, removed.ID)
	require.NoError(t, err)

	for _, step := range []struct{ child, video uint }{{f.mia.ID, f.video.ID}, {leo.ID, second.ID}, {leo.ID, removed.ID}} {
		_, err := f.requests.ResolveRequest(f.ctx, f.parentCaller(), step.child, step.video, models.ActionApprove)
		require.NoError(t, err)
	}

	video, err := f.store.Videos().FindByID(f.ctx, removed.ID)
	require.NoError(t, err)
	video.IsActive = false
	require.NoError(t, f.store.Videos().Save(f.ctx, &video))

	library, err := f.requests.ProjectChildLibrary(f.ctx, f.childCaller())
	require.NoError(t, err)
	require.Len(t, library, 2)
	assert.Equal(t, "V2", library[0].Title)
	assert.Equal(t, "Leo", library[0].ChildName)
	assert.Equal(t, "V1", library[1].Title)
	assert.Equal(t, "Mia", library[1].ChildName)

	_, err = f.requests.ProjectChildLibrary(f.ctx, f.parentCaller())
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestPendingRequestsOldestFirst(t *testing.T) {
	f := newFixture(t)
	leo := f.addChild(t, f.parent.ID, "Leo")
	second := f.addVideo(t, "V2", true)

	_, err := f.requests.SubmitRequest(f.ctx, f.parentCaller(), leo.ID, second.ID)
	require.NoError(t, err)
	_, err = f.requests.SubmitRequest(f.ctx, f.parentCaller(), f.mia.ID, f.video.ID)
	require.NoError(t, err)
	_, err = f.requests.SubmitRequest(f.ctx, f.parentCaller(), f.mia.ID, second.ID)
	require.NoError(t, err)
	_, err = f.requests.ResolveRequest(f.ctx, f.parentCaller(), f.mia.ID, second.ID, models.ActionReject)
	require.NoError(t, err)

	pending, err := f.requests.PendingRequests(f.ctx, f.parentCaller())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "Leo", pending[0].ChildName)
	assert.Equal(t, "V2", pending[0].Title)
	assert.Equal(t, "Mia", pending[1].ChildName)

	requests, err := f.requests.ChildRequests(f.ctx, f.childCaller())
	require.NoError(t, err)
	assert.Len(t, requests, 3)
	assert.Equal(t, models.RequestRejected, requests[0].Status)
}

func TestChildRequestsHideTitlesOfWithdrawnVideos(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.SubmitRequest(f.ctx, f.childCaller(), 0, f.video.ID)
	require.NoError(t, err)

	video, err := f.store.Videos().FindByID(f.ctx, f.video.ID)
	require.NoError(t, err)
	video.IsApproved = false
	require.NoError(t, f.store.Videos().Save(f.ctx, &video))

	requests, err := f.requests.ChildRequests(f.ctx, f.childCaller())
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Empty(t, requests[0].Title)
}

func TestSaveConflictSurfacesAsConflict(t *testing.T) {
	childRepo := new(mocks.ChildRepository)
	videoRepo := new(mocks.VideoRepository)
	svc := NewRequestService(childRepo, videoRepo, nil, logger.Discard())

	child := models.ChildProfile{ID: 3, ParentID: 1, Name: "Mia", IsActive: true, Version: 4}
	video := models.Video{ID: 8, Title: "V", IsApproved: true, IsActive: true}
	childRepo.On("FindByID", mock.Anything, uint(3)).Return(child, nil)
	videoRepo.On("FindByID", mock.Anything, uint(8)).Return(video, nil)
	childRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.ChildProfile")).Return(repositories.ErrVersionConflict)

	caller := models.Caller{ParentID: 1, UserType: models.UserTypeParent}
	_, err := svc.SubmitRequest(context.Background(), caller, 3, 8)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "modified concurrently")

	childRepo.AssertExpectations(t)
	videoRepo.AssertExpectations(t)
}

func TestPersistenceFailureIsInternal(t *testing.T) {
	childRepo := new(mocks.ChildRepository)
	videoRepo := new(mocks.VideoRepository)
	svc := NewRequestService(childRepo, videoRepo, nil, logger.Discard())

	childRepo.On("ListActiveByParent", mock.Anything, uint(1)).Return([]models.ChildProfile(nil), errors.New("connection reset"))

	_, err := svc.ProjectChildLibrary(context.Background(), models.Caller{ParentID: 1, UserType: models.UserTypeChild})
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Equal(t, "failed to load child profiles", apperrors.PublicMessage(err))
}
