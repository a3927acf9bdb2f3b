package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"KinderTube/jwt"
	"KinderTube/logger"
	"KinderTube/models"
	"KinderTube/repositories/memory"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []Notification
	err   error
}

func (n *recordingNotifier) NotifyParent(_ context.Context, _ uint, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification)
	return n.err
}

type fakeFiles struct{}

func (fakeFiles) PresignUpload(_ context.Context, key, _ string) (string, error) {
	return "https://files.test/upload/" + key, nil
}

func (fakeFiles) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://files.test/get/" + key, nil
}

func (fakeFiles) Delete(context.Context, string) error { return errors.New("not supported") }

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	notifier *recordingNotifier
	now      time.Time

	parent models.Parent
	other  models.Parent
	mia    models.ChildProfile
	video  models.Video

	requests *RequestService
	history  *HistoryService
	children *ChildService
	videos   *VideoService
	auth     *AuthService
	admin    *AdminService
	profile  *ParentService
}

// clock advances one second per call so every event gets a distinct timestamp.
func (f *fixture) clock() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fixture) parentCaller() models.Caller {
	return models.Caller{ParentID: f.parent.ID, UserType: models.UserTypeParent, Role: models.RoleParent}
}

func (f *fixture) childCaller() models.Caller {
	return models.Caller{ParentID: f.parent.ID, UserType: models.UserTypeChild, Role: models.RoleParent}
}

func (f *fixture) otherCaller() models.Caller {
	return models.Caller{ParentID: f.other.ID, UserType: models.UserTypeParent, Role: models.RoleParent}
}

func (f *fixture) addChild(t *testing.T, parentID uint, name string) models.ChildProfile {
	t.Helper()
	child := &models.ChildProfile{
		ParentID:    parentID,
		Name:        name,
		DateOfBirth: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      models.GenderFemale,
		IsActive:    true,
	}
	require.NoError(t, f.store.Children().Create(f.ctx, child))
	return *child
}

func (f *fixture) addVideo(t *testing.T, title string, approved bool) models.Video {
	t.Helper()
	video := &models.Video{
		Title:      title,
		Category:   models.CategoryEducation,
		Filename:   "videos/" + title + ".mp4",
		IsApproved: approved,
		IsPublic:   true,
		IsActive:   true,
		UploaderID: f.other.ID,
		AgeMax:     models.MaxAge,
	}
	require.NoError(t, f.store.Videos().Create(f.ctx, video))
	return *video
}

func (f *fixture) reload(t *testing.T, id uint) models.ChildProfile {
	t.Helper()
	child, err := f.store.Children().FindByID(f.ctx, id)
	require.NoError(t, err)
	return child
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		store:    memory.NewStore(),
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	log := logger.Discard()

	parents := f.store.Parents()
	hashed, err := hashPassword("secret123")
	require.NoError(t, err)
	f.parent = models.Parent{Username: "anna", Email: "anna@example.com", Password: hashed, SixDigitCode: "123456", Role: models.RoleParent, IsActive: true}
	require.NoError(t, parents.Create(f.ctx, &f.parent))
	f.other = models.Parent{Username: "boris", Email: "boris@example.com", Password: hashed, SixDigitCode: "654321", Role: models.RoleParent, IsActive: true}
	require.NoError(t, parents.Create(f.ctx, &f.other))

	f.mia = f.addChild(t, f.parent.ID, "Mia")
	f.video = f.addVideo(t, "V1", true)

	f.requests = NewRequestService(f.store.Children(), f.store.Videos(), f.notifier, log)
	f.requests.Now = f.clock
	f.history = NewHistoryService(f.store.Children(), f.store.Videos(), log)
	f.history.Now = f.clock
	f.children = NewChildService(f.store.Children(), log)
	f.children.Now = f.clock
	f.videos = NewVideoService(f.store.Videos(), f.store.Comments(), f.store.Children(), fakeFiles{}, log)
	f.auth = NewAuthService(parents, f.store.Children(), jwt.NewManager("test-secret", 0), log)
	f.auth.Now = f.clock
	f.admin = NewAdminService(parents, f.notifier, log)
	f.profile = NewParentService(parents, f.store.Children(), f.store.Videos())
	return f
}
