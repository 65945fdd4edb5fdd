package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-commerce/meridian-admin/internal/shared"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", time.Hour, false), mr
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	sm, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Nil(t, sess.Identity())

	sess.SetIdentity(&shared.AdminContext{
		ID:          42,
		Email:       "staff@meridian.local",
		Permissions: []string{"files:list", "blogs:edit"},
	})

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	cookie := sessionCookie(t, res)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	restored, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.NotNil(t, restored.Identity())
	require.Equal(t, int64(42), restored.Identity().ID)
	require.Equal(t, []string{"files:list", "blogs:edit"}, restored.Identity().Permissions)
}

func TestSetIdentityRotatesSessionID(t *testing.T) {
	sm, _ := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.ID = "pre-login-id"

	sess.SetIdentity(&shared.AdminContext{ID: 1, Email: "root@meridian.local"})
	require.NotEqual(t, "pre-login-id", sess.ID)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	require.NotEqual(t, "pre-login-id", sessionCookie(t, res).Value)
}

func TestStaleCookieLoadsAnonymous(t *testing.T) {
	sm, _ := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "expired-or-unknown"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, sess.Identity())
}

func TestDestroyDeletesStateAndClearsCookie(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetIdentity(&shared.AdminContext{ID: 9, Email: "gone@meridian.local"})
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	require.True(t, mr.Exists("admin_session:"+sess.ID))

	sm.Destroy(sess)
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	require.False(t, mr.Exists("admin_session:"+sess.ID))

	cookie := sessionCookie(t, res)
	require.Empty(t, cookie.Value)
	require.Negative(t, cookie.MaxAge)
}

func TestUncommittedSessionWritesNothing(t *testing.T) {
	sm, mr := newManager(t)

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, sess))
	require.Empty(t, res.Result().Cookies())
	require.Empty(t, mr.Keys())
}
