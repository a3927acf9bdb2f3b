package services

import (
	"errors"
	"testing"

	"KinderTube/apperrors"
	"KinderTube/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminOperationsRequireAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.ListUsers(f.ctx, f.parentCaller(), models.ParentFilter{})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	// роль admin не действует в детском режиме
	childAdmin := models.Caller{ParentID: f.parent.ID, UserType: models.UserTypeChild, Role: models.RoleAdmin}
	_, err = f.admin.UpdateRole(f.ctx, childAdmin, f.other.ID, models.RoleAdmin)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestAdminManagesUsers(t *testing.T) {
	f := newFixture(t)
	admin := models.Caller{ParentID: f.other.ID, UserType: models.UserTypeParent, Role: models.RoleAdmin}

	page, err := f.admin.ListUsers(f.ctx, admin, models.ParentFilter{Search: "ann"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "anna", page.Users[0].Username)

	updated, err := f.admin.UpdateRole(f.ctx, admin, f.parent.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = f.admin.UpdateRole(f.ctx, admin, f.parent.ID, models.Role("owner"))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	err = f.admin.Deactivate(f.ctx, admin, f.other.ID)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	err = f.admin.Deactivate(f.ctx, admin, 999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSendTestNotification(t *testing.T) {
	f := newFixture(t)
	admin := models.Caller{ParentID: f.other.ID, UserType: models.UserTypeParent, Role: models.RoleAdmin}

	err := f.admin.SendTestNotification(f.ctx, f.parentCaller(), f.other.ID, "Hi", "test")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, f.admin.SendTestNotification(f.ctx, admin, f.parent.ID, " Hi ", "test"))
	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, EventTest, f.notifier.calls[0].Type)
	assert.Equal(t, "Hi", f.notifier.calls[0].Title)

	err = f.admin.SendTestNotification(f.ctx, admin, f.parent.ID, "", "test")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	err = f.admin.SendTestNotification(f.ctx, admin, 999, "Hi", "test")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	// ошибка доставки не глотается
	f.notifier.err = errors.New("offline")
	err = f.admin.SendTestNotification(f.ctx, admin, f.parent.ID, "Hi", "test")
	assert.True(t, errors.Is(err, apperrors.ErrInternal))
}
