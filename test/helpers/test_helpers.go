package helpers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/notifier"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/repository"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/db"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

// SetupTestDB returns an in-memory SQLite store with the embedded migrations
// applied. It is closed when the test ends.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.CreateReadWrite(db.Config{}, db.Config{Driver: db.DriverSQLite, DSN: ":memory:"}, false)
	require.NoError(t, err)
	require.NoError(t, d.MigrateUp())

	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SetupTestRedis starts a miniredis and an adapter on it. Adapters are cached
// by connection name, so every test gets its own.
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = adapter.Close() })
	return mr, adapter
}

// CreateTestContact stores c directly, bypassing validation.
func CreateTestContact(t *testing.T, d *db.DB, c *model.Contact) *model.Contact {
	t.Helper()

	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = model.ContactStatusNew
	}
	saved, err := repository.NewContactRepository(d).Create(context.Background(), c)
	require.NoError(t, err)
	return saved
}

// RecordingMailer keeps every mail it is asked to send.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []notifier.Mail
}

func (r *RecordingMailer) Send(_ context.Context, m notifier.Mail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return nil
}

func (r *RecordingMailer) Sent() []notifier.Mail {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notifier.Mail, len(r.sent))
	copy(out, r.sent)
	return out
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func Ptr[T any](v T) *T {
	return &v
}
