package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"modportal/database"
	"modportal/logger"
	"modportal/web/middleware"
	"modportal/web/service"
	"modportal/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLogger(logging.ERROR)
	os.Exit(m.Run())
}

func setupRouter(t *testing.T, name string) (*gin.Engine, *service.UserService) {
	t.Helper()
	os.Remove(name)
	db, err := database.Open(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		database.Close(db)
		os.Remove(name)
	})

	users := service.NewUserService(db)
	engine := gin.New()
	engine.Use(sessions.Sessions(session.Name, memstore.NewStore([]byte("test-secret"))))
	engine.Use(middleware.Principal(users))

	api := engine.Group("/api")
	NewAuthController(api, service.NewAuthService(users))
	NewModeratorController(api, users, service.NewStatusService(users), service.NewAuditLogService(db))
	return engine, users
}

func doRequest(router *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestAdminModeratorLifecycle(t *testing.T) {
	router, _ := setupRouter(t, "test_lifecycle.db")

	// Register the admin; the response session is logged in.
	rec := doRequest(router, http.MethodPost, "/api/admin/register", map[string]string{
		"username": "root",
		"password": "longpw1",
		"fullName": "Root Admin",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	admin := decodeBody(t, rec)
	assert.Equal(t, "admin", admin["role"])
	assert.Equal(t, "ADMIN", admin["badgeNumber"])
	adminCookies := rec.Result().Cookies()
	require.NotEmpty(t, adminCookies)

	// Create a moderator.
	rec = doRequest(router, http.MethodPost, "/api/admin/moderators", map[string]string{
		"username":    "bob",
		"password":    "x",
		"fullName":    "Bob",
		"badgeNumber": "B1",
	}, adminCookies)
	require.Equal(t, http.StatusCreated, rec.Code)
	bob := decodeBody(t, rec)
	assert.Equal(t, "moderator", bob["role"])
	bobId := int(bob["id"].(float64))

	// Duplicate username conflicts.
	rec = doRequest(router, http.MethodPost, "/api/admin/moderators", map[string]string{
		"username":    "bob",
		"password":    "y",
		"fullName":    "Bob Two",
		"badgeNumber": "B2",
	}, adminCookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Partial patch: only department changes.
	rec = doRequest(router, http.MethodPatch, "/api/admin/moderators/"+strconv.Itoa(bobId), map[string]string{
		"department": "Ops",
	}, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decodeBody(t, rec)
	assert.Equal(t, "Ops", patched["department"])
	assert.Equal(t, "Bob", patched["fullName"])
	assert.Equal(t, "B1", patched["badgeNumber"])

	// Delete, then the listing excludes bob.
	rec = doRequest(router, http.MethodDelete, "/api/admin/moderators/"+strconv.Itoa(bobId), nil, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/admin/moderators", nil, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)

	// Mutations on the deleted id are 404 now.
	rec = doRequest(router, http.MethodPatch, "/api/admin/moderators/"+strconv.Itoa(bobId), map[string]string{
		"department": "Ops",
	}, adminCookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The mutations above left an audit trail.
	rec = doRequest(router, http.MethodGet, "/api/admin/audit", nil, adminCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var trail []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trail))
	assert.NotEmpty(t, trail)
	assert.Equal(t, "root", trail[0]["username"])
}

func TestLoginAndSessionRoutes(t *testing.T) {
	router, users := setupRouter(t, "test_login_routes.db")

	_, err := users.CreateModerator(&service.ModeratorForm{
		Username:    "alice",
		Password:    "secret",
		FullName:    "Alice",
		BadgeNumber: "A1",
	})
	require.NoError(t, err)

	// Wrong password and unknown user give the same 401.
	rec := doRequest(router, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPass := decodeBody(t, rec)

	rec = doRequest(router, http.MethodPost, "/api/login", map[string]string{
		"username": "nobody", "password": "secret",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPass["message"], decodeBody(t, rec)["message"])

	// Successful login never serializes the password field.
	rec = doRequest(router, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "secret",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "alice", body["username"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = doRequest(router, http.MethodGet, "/api/user", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeBody(t, rec)["username"])

	rec = doRequest(router, http.MethodGet, "/api/user/qrcode", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	// Logout invalidates the session.
	rec = doRequest(router, http.MethodPost, "/api/logout", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(router, http.MethodGet, "/api/user", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuards(t *testing.T) {
	router, users := setupRouter(t, "test_guards.db")

	_, err := users.CreateModerator(&service.ModeratorForm{
		Username:    "alice",
		Password:    "secret",
		FullName:    "Alice",
		BadgeNumber: "A1",
	})
	require.NoError(t, err)

	// No session at all.
	rec := doRequest(router, http.MethodGet, "/api/user", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doRequest(router, http.MethodGet, "/api/user/qrcode", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doRequest(router, http.MethodGet, "/api/admin/moderators", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A moderator session is not enough for admin routes.
	rec = doRequest(router, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "secret",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()

	rec = doRequest(router, http.MethodGet, "/api/admin/moderators", nil, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doRequest(router, http.MethodDelete, "/api/admin/moderators/1", nil, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPrincipalIsResolvedLive(t *testing.T) {
	router, users := setupRouter(t, "test_live_principal.db")

	mod, err := users.CreateModerator(&service.ModeratorForm{
		Username:    "alice",
		Password:    "secret",
		FullName:    "Alice",
		BadgeNumber: "A1",
	})
	require.NoError(t, err)

	rec := doRequest(router, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "secret",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()

	// Deleting the account kills the session's principal immediately.
	require.NoError(t, users.DeleteModerator(mod.Id))
	rec = doRequest(router, http.MethodGet, "/api/user", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
