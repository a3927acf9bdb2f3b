package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"KinderTube/apperrors"
	"KinderTube/logger"
	"KinderTube/models"
	"KinderTube/repositories"
	"KinderTube/repositories/mocks"
	"KinderTube/services"
	"KinderTube/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// withCaller подставляет вызывающего без проверки токена
func withCaller(who models.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("caller", who)
		c.Next()
	}
}

func setupRouter(who models.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withCaller(who))
	return r
}

func TestRespondErrorMapsKinds(t *testing.T) {
	SetLogger(logger.Discard())
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{apperrors.NotFound("video not found"), http.StatusNotFound, `{"error":"video not found"}`},
		{apperrors.Forbidden("nope"), http.StatusForbidden, `{"error":"nope"}`},
		{apperrors.Conflict("again"), http.StatusConflict, `{"error":"again"}`},
		{apperrors.Validation("bad"), http.StatusBadRequest, `{"error":"bad"}`},
		{apperrors.Internal("failed to save", errors.New("pq: secret detail")), http.StatusInternalServerError, `{"error":"failed to save"}`},
		{errors.New("raw"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tt.err)
		assert.Equal(t, tt.status, w.Code)
		assert.JSONEq(t, tt.body, w.Body.String())
	}
}

func TestUpdateParentHandler(t *testing.T) {
	require.NoError(t, validation.Register())
	parentRepo := new(mocks.ParentRepository)
	SetParentService(services.NewParentService(parentRepo, new(mocks.ChildRepository), new(mocks.VideoRepository)))

	parentRepo.On("FindByID", mock.Anything, uint(7)).Return(models.Parent{ID: 7, Email: "anna@example.com"}, nil)
	parentRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.Parent")).Return(nil)

	r := setupRouter(models.Caller{ParentID: 7, UserType: models.UserTypeParent})
	r.PUT("/users/profile", UpdateParent)

	req := httptest.NewRequest(http.MethodPut, "/users/profile", bytes.NewBufferString(`{"firstName":"Anna"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"first_name":"Anna"`)
	parentRepo.AssertExpectations(t)
}

func TestUpdateParentRejectsBadEmail(t *testing.T) {
	require.NoError(t, validation.Register())
	parentRepo := new(mocks.ParentRepository)
	SetParentService(services.NewParentService(parentRepo, new(mocks.ChildRepository), new(mocks.VideoRepository)))

	r := setupRouter(models.Caller{ParentID: 7, UserType: models.UserTypeParent})
	r.PUT("/users/profile", UpdateParent)

	req := httptest.NewRequest(http.MethodPut, "/users/profile", bytes.NewBufferString(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid email"}`, w.Body.String())
	parentRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestParentStatsHandlerStorageFailure(t *testing.T) {
	SetLogger(logger.Discard())
	videoRepo := new(mocks.VideoRepository)
	SetParentService(services.NewParentService(new(mocks.ParentRepository), new(mocks.ChildRepository), videoRepo))
	videoRepo.On("StatsByUploader", mock.Anything, uint(7)).Return(int64(0), int64(0), repositories.ErrNotFound)

	r := setupRouter(models.Caller{ParentID: 7, UserType: models.UserTypeParent})
	r.GET("/users/stats", ParentStats)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to load video stats"}`, w.Body.String())
}

func TestIDParamValidation(t *testing.T) {
	r := setupRouter(models.Caller{ParentID: 7, UserType: models.UserTypeParent})
	r.GET("/children/:id", func(c *gin.Context) {
		if id, ok := idParam(c, "id"); ok {
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	})

	for path, status := range map[string]int{"/children/5": http.StatusOK, "/children/0": http.StatusBadRequest, "/children/x": http.StatusBadRequest} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
	}
}
