package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"KinderTube/jwt"
	"KinderTube/logger"
	"KinderTube/models"
	"KinderTube/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	router *gin.Engine
	tokens *jwt.Manager
	store  *memory.Store
	parent models.Parent
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &authFixture{tokens: jwt.NewManager("middleware-secret", 0), store: memory.NewStore()}
	f.parent = models.Parent{Username: "anna", Email: "anna@example.com", Role: models.RoleParent, IsActive: true}
	require.NoError(t, f.store.Parents().Create(context.Background(), &f.parent))

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger.Discard()))
	api := r.Group("/", AuthMiddleware(f.tokens, f.store.Parents()))
	api.GET("/whoami", func(c *gin.Context) {
		caller, _ := CallerFrom(c)
		c.JSON(http.StatusOK, gin.H{"parent_id": caller.ParentID, "user_type": caller.UserType, "role": caller.Role})
	})
	api.GET("/parent-only", RequireParent(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.GET("/child-only", RequireChild(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.GET("/admin-only", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	f.router = r
	return f
}

func (f *authFixture) token(t *testing.T, userType models.UserType) string {
	t.Helper()
	token, err := f.tokens.Issue(f.parent, userType)
	require.NoError(t, err)
	return token
}

func (f *authFixture) do(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do("/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())

	w = f.do("/whoami", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, w.Body.String())

	other := jwt.NewManager("another-secret", 0)
	forged, err := other.Issue(f.parent, models.UserTypeParent)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, f.do("/whoami", forged).Code)
}

func TestAuthMiddlewareSessionTypes(t *testing.T) {
	f := newAuthFixture(t)
	parentToken := f.token(t, models.UserTypeParent)
	childToken := f.token(t, models.UserTypeChild)

	w := f.do("/whoami", childToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"parent_id":1,"user_type":"child","role":"parent"}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, f.do("/parent-only", parentToken).Code)
	assert.Equal(t, http.StatusForbidden, f.do("/parent-only", childToken).Code)
	assert.Equal(t, http.StatusNoContent, f.do("/child-only", childToken).Code)
	assert.Equal(t, http.StatusForbidden, f.do("/child-only", parentToken).Code)
	assert.Equal(t, http.StatusForbidden, f.do("/admin-only", parentToken).Code)
}

func TestAuthMiddlewareReloadsAccount(t *testing.T) {
	f := newAuthFixture(t)
	token := f.token(t, models.UserTypeParent)
	ctx := context.Background()

	// роль берется из базы, а не из токена
	f.parent.Role = models.RoleAdmin
	require.NoError(t, f.store.Parents().Save(ctx, &f.parent))
	assert.Equal(t, http.StatusNoContent, f.do("/admin-only", token).Code)

	f.parent.IsActive = false
	require.NoError(t, f.store.Parents().Save(ctx, &f.parent))
	w := f.do("/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"account is deactivated"}`, w.Body.String())
}

func TestRequestIDPropagation(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = f.do("/whoami", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://app.example.com"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
