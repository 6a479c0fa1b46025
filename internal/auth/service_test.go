package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/rbac"
	"github.com/uleam/vehicle-gate/internal/storage"
)

var fixedNow = time.Date(2024, 3, 18, 7, 30, 0, 0, time.UTC)

func newService(t *testing.T, mem *storage.Memory, profile string) *auth.Service {
	t.Helper()
	svc := auth.NewService(mem.Profile(profile),
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithClock(func() time.Time { return fixedNow }),
	)
	t.Cleanup(svc.Close)
	require.NoError(t, svc.InitializeSeedData(context.Background()))
	return svc
}

func storedUsers(t *testing.T, mem *storage.Memory, profile string) []auth.User {
	t.Helper()
	var users []auth.User
	require.NoError(t, json.Unmarshal([]byte(mem.Snapshot(profile)[storage.KeyUsers]), &users))
	return users
}

func TestInitializeSeedDataWritesFirstRunSet(t *testing.T) {
	mem := storage.NewMemory()
	newService(t, mem, "p1")

	snap := mem.Snapshot("p1")
	assert.Equal(t, "500", snap[storage.KeyMaxCapacity])
	assert.Equal(t, "[]", snap[storage.KeyEntries])
	assert.Contains(t, snap[storage.KeyVehicles], "MAB-0001")
	assert.Contains(t, snap[storage.KeyVehicles], "PTE-1234")
	assert.NotContains(t, snap, storage.KeyCurrentSession)

	users := storedUsers(t, mem, "p1")
	require.Len(t, users, 3)
	roles := map[rbac.Role]bool{}
	for _, u := range users {
		roles[u.Role] = true
		assert.True(t, u.IsActive())
		assert.Nil(t, u.LastLogin)
		assert.NotContains(t, u.SecretHash, "12345")
	}
	assert.Len(t, roles, 3)
}

func TestInitializeSeedDataIsIdempotent(t *testing.T) {
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")
	first := mem.Snapshot("p1")

	require.NoError(t, svc.InitializeSeedData(context.Background()))
	assert.Equal(t, first, mem.Snapshot("p1"))
}

func TestInitializeSeedDataCompletesPartialStore(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := mem.Profile("p1")
	require.NoError(t, store.Set(ctx, storage.KeyMaxCapacity, "120"))
	require.NoError(t, store.Set(ctx, storage.KeyUsers, "[]"))

	newService(t, mem, "p1")

	snap := mem.Snapshot("p1")
	assert.Equal(t, "120", snap[storage.KeyMaxCapacity])
	assert.Equal(t, "[]", snap[storage.KeyUsers])
	assert.Equal(t, "[]", snap[storage.KeyEntries])
	assert.Contains(t, snap[storage.KeyVehicles], "MAB-0001")
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")

	ok, err := svc.Login(ctx, "admin", "admin12345")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, rbac.RoleAdmin, svc.Role())
	assert.Equal(t, rbac.PermissionsFor(rbac.RoleAdmin), svc.Permissions())

	sess := svc.CurrentSession()
	require.NotNil(t, sess)
	assert.Equal(t, int64(1), sess.UserID)
	assert.Equal(t, "Admin ULEAM", sess.Username)
	assert.Equal(t, fixedNow.UnixMilli(), sess.Timestamp)

	for _, u := range storedUsers(t, mem, "p1") {
		if u.ID == 1 {
			require.NotNil(t, u.LastLogin)
			assert.True(t, u.LastLogin.Equal(fixedNow))
		} else {
			assert.Nil(t, u.LastLogin)
		}
	}

	other := newService(t, storage.NewMemory(), "p2")
	ok, err = other.Login(ctx, "supervisor@uleam.edu.ec", "supervisor12345")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rbac.RoleSupervisor, other.Role())
}

func TestLoginFailuresLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")
	before := mem.Snapshot("p1")

	cases := [][2]string{
		{"admin", "wrong"},
		{"admin", "ADMIN12345"},
		{"nobody", "admin12345"},
		{"", ""},
	}
	for _, c := range cases {
		ok, err := svc.Login(ctx, c[0], c[1])
		require.NoError(t, err)
		assert.False(t, ok, c)
	}
	assert.False(t, svc.IsAuthenticated())
	assert.Equal(t, before, mem.Snapshot("p1"))
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")

	users := storedUsers(t, mem, "p1")
	users[1].Status = auth.StatusInactive
	require.NoError(t, auth.NewRepository(mem.Profile("p1")).SaveUsers(ctx, users))

	ok, err := svc.Login(ctx, "guardia", "guardia12345")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, svc.IsAuthenticated())
}

func TestCheckSessionAfterReload(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")
	ok, err := svc.Login(ctx, "guardia", "guardia12345")
	require.NoError(t, err)
	require.True(t, ok)
	original := svc.CurrentSession()

	reloaded := newService(t, mem, "p1")
	assert.False(t, reloaded.IsAuthenticated())
	restored, err := reloaded.CheckSession(ctx)
	require.NoError(t, err)
	require.True(t, restored)

	got := reloaded.CurrentSession()
	assert.Equal(t, original.UserID, got.UserID)
	assert.Equal(t, original.Role, got.Role)
	assert.Equal(t, original.Permissions, got.Permissions)
	assert.Equal(t, original.Timestamp, got.Timestamp)
}

func TestLogoutThenCheckSession(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")
	ok, err := svc.Login(ctx, "admin", "admin12345")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Logout(ctx))
	restored, err := svc.CheckSession(ctx)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Nil(t, svc.CurrentSession())
	assert.Empty(t, svc.Permissions())
	assert.Equal(t, rbac.Role(""), svc.Role())

	require.NoError(t, svc.Logout(ctx))
}

func TestCheckSessionIsAdditiveOnly(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")
	ok, err := svc.Login(ctx, "admin", "admin12345")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mem.Profile("p1").Delete(ctx, storage.KeyCurrentSession))
	restored, err := svc.CheckSession(ctx)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.True(t, svc.IsAuthenticated())
}

func TestCheckSessionTreatsMalformedAsAbsent(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")
	require.NoError(t, mem.Profile("p1").Set(ctx, storage.KeyCurrentSession, "{not json"))

	restored, err := svc.CheckSession(ctx)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.False(t, svc.IsAuthenticated())
}

func TestCheckSessionRejectsEmptySession(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")

	for _, raw := range []string{"null", "{}", `{"userId":1}`, `{"role":"GUARDIA"}`} {
		require.NoError(t, mem.Profile("p1").Set(ctx, storage.KeyCurrentSession, raw))
		restored, err := svc.CheckSession(ctx)
		require.NoError(t, err)
		assert.False(t, restored, raw)
		assert.False(t, svc.IsAuthenticated(), raw)
	}
}

// gatedStore blocks the first session read until release is closed.
type gatedStore struct {
	storage.Store
	armed   atomic.Bool
	reading chan struct{}
	release chan struct{}
}

func (g *gatedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == storage.KeyCurrentSession && g.armed.CompareAndSwap(true, false) {
		close(g.reading)
		<-g.release
	}
	return g.Store.Get(ctx, key)
}

func TestLogoutIsNotUndoneByConcurrentCheckSession(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	login := newService(t, mem, "p1")
	ok, err := login.Login(ctx, "admin", "admin12345")
	require.NoError(t, err)
	require.True(t, ok)

	gated := &gatedStore{Store: mem.Profile("p1"), reading: make(chan struct{}), release: make(chan struct{})}
	svc := auth.NewService(gated, auth.WithBcryptCost(bcrypt.MinCost))
	t.Cleanup(svc.Close)
	gated.armed.Store(true)

	checked := make(chan bool, 1)
	go func() {
		restored, _ := svc.CheckSession(ctx)
		checked <- restored
	}()
	<-gated.reading

	loggedOut := make(chan error, 1)
	go func() { loggedOut <- svc.Logout(ctx) }()

	select {
	case <-loggedOut:
		t.Fatal("logout finished while a session restore was in flight")
	case <-time.After(20 * time.Millisecond):
	}
	close(gated.release)

	assert.True(t, <-checked)
	require.NoError(t, <-loggedOut)
	assert.False(t, svc.IsAuthenticated())
	assert.NotContains(t, mem.Snapshot("p1"), storage.KeyCurrentSession)
}

func TestSeededProfilesShareSecretHashes(t *testing.T) {
	mem := storage.NewMemory()
	newService(t, mem, "a")
	newService(t, mem, "b")

	a := storedUsers(t, mem, "a")
	b := storedUsers(t, mem, "b")
	require.Len(t, a, 3)
	require.Len(t, b, 3)
	for i := range a {
		assert.Equal(t, a[i].SecretHash, b[i].SecretHash, a[i].Username)
	}
	assert.NotEqual(t, a[0].SecretHash, a[1].SecretHash)
}

func TestHasPermission(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := newService(t, mem, "p1")
	assert.False(t, svc.HasPermission("dashboard"))

	sess := auth.Session{UserID: 9, Role: rbac.RoleGuard, Permissions: []string{"vehiculos-registrados-r"}}
	require.NoError(t, auth.NewRepository(mem.Profile("p1")).SaveSession(ctx, &sess))
	_, err := svc.CheckSession(ctx)
	require.NoError(t, err)
	assert.True(t, svc.HasPermission("vehiculos-rw"))

	sess.Permissions = []string{"dashboard"}
	require.NoError(t, auth.NewRepository(mem.Profile("p1")).SaveSession(ctx, &sess))
	_, err = svc.CheckSession(ctx)
	require.NoError(t, err)
	assert.False(t, svc.HasPermission("vehiculos-rw"))
}

func TestNotificationAutoHides(t *testing.T) {
	svc := newService(t, storage.NewMemory(), "p1")
	svc.ShowNotification("Guardado", auth.SeveritySuccess, 20*time.Millisecond)

	n := svc.Notification()
	assert.True(t, n.Visible)
	assert.Equal(t, "Guardado", n.Message)

	require.Eventually(t, func() bool { return !svc.Notification().Visible }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Guardado", svc.Notification().Message)
}

func TestNewerNotificationSurvivesOlderTimer(t *testing.T) {
	svc := newService(t, storage.NewMemory(), "p1")
	svc.ShowNotification("primero", auth.SeverityInfo, 20*time.Millisecond)
	svc.ShowNotification("segundo", auth.SeverityError, time.Hour)

	time.Sleep(80 * time.Millisecond)
	n := svc.Notification()
	assert.True(t, n.Visible)
	assert.Equal(t, "segundo", n.Message)
	assert.Equal(t, auth.SeverityError, n.Severity)
}

func TestNotificationDefaultDuration(t *testing.T) {
	svc := auth.NewService(storage.NewMemory().Profile("p1"), auth.WithNotificationDuration(15*time.Millisecond))
	defer svc.Close()
	svc.ShowNotification("hola", "", 0)
	assert.Equal(t, auth.SeveritySuccess, svc.Notification().Severity)
	require.Eventually(t, func() bool { return !svc.Notification().Visible }, time.Second, 5*time.Millisecond)
}

type countingRecorder struct{ ok, failed int }

func (c *countingRecorder) RecordLogin(success bool) {
	if success {
		c.ok++
		return
	}
	c.failed++
}

func TestLoginRecorder(t *testing.T) {
	ctx := context.Background()
	rec := &countingRecorder{}
	svc := auth.NewService(storage.NewMemory().Profile("p1"), auth.WithBcryptCost(bcrypt.MinCost), auth.WithLoginRecorder(rec))
	defer svc.Close()
	require.NoError(t, svc.InitializeSeedData(ctx))

	_, _ = svc.Login(ctx, "admin", "nope")
	_, _ = svc.Login(ctx, "admin", "admin12345")
	assert.Equal(t, 1, rec.ok)
	assert.Equal(t, 1, rec.failed)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("unavailable")
}
func (brokenStore) Set(context.Context, string, string) error { return errors.New("unavailable") }
func (brokenStore) Delete(context.Context, string) error      { return errors.New("unavailable") }

func TestStorageErrorsSurface(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewService(brokenStore{})
	defer svc.Close()

	assert.Error(t, svc.InitializeSeedData(ctx))
	ok, err := svc.Login(ctx, "admin", "admin12345")
	assert.Error(t, err)
	assert.False(t, ok)
	_, err = svc.CheckSession(ctx)
	assert.Error(t, err)
	assert.False(t, svc.HasPermission("dashboard"))
}

func TestRegistryReusesAndEvicts(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	reg := auth.NewRegistry(mem, auth.WithBcryptCost(bcrypt.MinCost))

	a, err := reg.Service(ctx, "a")
	require.NoError(t, err)
	again, err := reg.Service(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Contains(t, mem.Snapshot("a"), storage.KeyUsers)

	_, err = reg.Service(ctx, "")
	assert.Error(t, err)

	assert.Equal(t, 0, reg.Evict(time.Hour))
	assert.Equal(t, 1, reg.Evict(-time.Second))
	assert.Equal(t, 0, reg.Len())
}
