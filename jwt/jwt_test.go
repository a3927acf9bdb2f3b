package jwt

import (
	"errors"
	"testing"
	"time"

	"KinderTube/apperrors"
	"KinderTube/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", 0)
	parent := models.Parent{ID: 42, Email: "a@b.c", Role: models.RoleAdmin}

	token, err := m.Issue(parent, models.UserTypeChild)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, models.Caller{ParentID: 42, UserType: models.UserTypeChild, Role: models.RoleAdmin}, claims.Caller())
	assert.False(t, claims.Caller().IsAdmin())
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewManager("secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Issue(models.Parent{ID: 1}, models.UserTypeParent)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Equal(t, "token expired", err.Error())
}

func TestParseRejectsForeignSignature(t *testing.T) {
	token, err := NewManager("other", 0).Issue(models.Parent{ID: 1}, models.UserTypeParent)
	require.NoError(t, err)

	_, err = NewManager("secret", 0).Parse(token)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = NewManager("secret", 0).Parse("garbage")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}
