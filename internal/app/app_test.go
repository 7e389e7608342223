package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriplan/config"
	"github.com/pageza/nutriplan/internal/preferences"
	"github.com/pageza/nutriplan/internal/stubserver"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(stubserver.NewRouter(stubserver.NewStore(), stubserver.NewIdentity("secret", "", nil), nil))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.APIBaseURL = srv.URL
	cfg.IdentityBaseURL = srv.URL + "/identity"
	cfg.HTTPTimeout = 5 * time.Second
	cfg.PrefsBackend = backend
	cfg.PrefsSQLitePath = filepath.Join(t.TempDir(), "prefs.db")
	return cfg
}

func TestNew_MemoryBackend(t *testing.T) {
	cfg := testConfig(t, config.PrefsBackendMemory)

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := a.AuthVM.Signup("app@example.com", "secret123").Wait(ctx)
	require.NoError(t, err)
	require.True(t, res.Success, res.ErrorMessage)

	uid, ok, err := a.Session.Get(ctx, preferences.KeyUserUID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, res.User.UID, uid)
	assert.Equal(t, res.User.UID, a.Auth.GetCurrentUser().UID)

	_, err = a.StatsVM.ShareWeeklyReport().Wait(ctx)
	assert.Error(t, err, "sharing is disabled without a bucket")
}

func TestNew_SQLiteBackendPersists(t *testing.T) {
	cfg := testConfig(t, config.PrefsBackendSQLite)
	ctx := context.Background()

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.AuthVM.MarkOnboardingSeen(ctx))
	a.Close()

	b, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	seen, err := b.AuthVM.OnboardingSeen(ctx)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestNew_ClearsSessionWithoutLiveSignIn(t *testing.T) {
	cfg := testConfig(t, config.PrefsBackendSQLite)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	res, err := a.AuthVM.Signup("restart@example.com", "secret123").Wait(ctx)
	require.NoError(t, err)
	require.True(t, res.Success, res.ErrorMessage)
	a.Close()

	b, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.AuthVM.CurrentUser())
	_, ok, err := b.Session.Get(ctx, preferences.KeyUserUID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig(t, "etcd")

	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown preference backend")
}
