package cache

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"modportal/database"
	"modportal/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	os.Remove(name)
	db, err := database.Open(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		database.Close(db)
		os.Remove(name)
	})
	return db
}

func TestGormStoreRoundTrip(t *testing.T) {
	db := setupDB(t, "test_gormstore.db")
	store := NewGormStore(db, []byte("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := store.New(req, "portal_test")
	require.NoError(t, err)
	require.True(t, sess.IsNew)

	sess.Values["userId"] = 42
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(req, rec, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	// Replay the cookie: the store must recover the persisted values.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	loaded, err := store.New(req, "portal_test")
	require.NoError(t, err)
	assert.False(t, loaded.IsNew)
	assert.Equal(t, 42, loaded.Values["userId"])
}

func TestGormStoreDestroy(t *testing.T) {
	db := setupDB(t, "test_gormstore_destroy.db")
	store := NewGormStore(db, []byte("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := store.New(req, "portal_test")
	require.NoError(t, err)
	sess.Values["userId"] = 42
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(req, rec, sess))
	cookie := rec.Result().Cookies()[0]

	// A negative MaxAge deletes the row and expires the cookie.
	sess.Options.MaxAge = -1
	rec = httptest.NewRecorder()
	require.NoError(t, store.Save(req, rec, sess))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := store.New(req, "portal_test")
	require.NoError(t, err)
	assert.True(t, loaded.IsNew)

	var count int64
	require.NoError(t, db.Model(model.Session{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestGormStoreExpiredSession(t *testing.T) {
	db := setupDB(t, "test_gormstore_expired.db")
	store := NewGormStore(db, []byte("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := store.New(req, "portal_test")
	require.NoError(t, err)
	sess.Values["userId"] = 42
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(req, rec, sess))
	cookie := rec.Result().Cookies()[0]

	// Age the row past its deadline behind the store's back.
	require.NoError(t, db.Model(model.Session{}).
		Where("id = ?", sess.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).
		Error)

	// Replaying the cookie yields a fresh session and drops the row.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := store.New(req, "portal_test")
	require.NoError(t, err)
	assert.True(t, loaded.IsNew)
	assert.Nil(t, loaded.Values["userId"])

	var count int64
	require.NoError(t, db.Model(model.Session{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestGormStorePrune(t *testing.T) {
	db := setupDB(t, "test_gormstore_prune.db")
	store := NewGormStore(db, []byte("test-secret"))

	now := time.Now()
	require.NoError(t, db.Create(&model.Session{
		Id:        "expired",
		Data:      []byte{},
		ExpiresAt: now.Add(-time.Hour),
	}).Error)
	require.NoError(t, db.Create(&model.Session{
		Id:        "live",
		Data:      []byte{},
		ExpiresAt: now.Add(time.Hour),
	}).Error)

	pruned, err := store.Prune()
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	var remaining []model.Session
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live", remaining[0].Id)
}
