package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/novamart/novamart/internal/shared"
	_ "github.com/novamart/novamart/testing"
)

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "test_session", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetUser("42")

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	cookies := res.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie")
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, next)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.User() != "42" {
		t.Fatalf("expected user 42, got %q", reloaded.User())
	}
}

func TestSessionDestroy(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetUser("42")

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	cookie := res.Result().Cookies()[0]

	sm.Destroy(sess)
	destroyRes := httptest.NewRecorder()
	if err := sm.Commit(ctx, destroyRes, sess); err != nil {
		t.Fatalf("destroy session: %v", err)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	reloaded, err := sm.Load(ctx, next)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.User() != "" {
		t.Fatalf("expected anonymous session after destroy, got %q", reloaded.User())
	}
}

func TestAnonymousRequestGetsFreshSession(t *testing.T) {
	sm := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.User() != "" {
		t.Fatalf("expected no user on a fresh session")
	}
}
