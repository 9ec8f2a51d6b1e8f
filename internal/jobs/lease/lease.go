package lease

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

const (
	BackendDB    = "db"
	BackendRedis = "redis"
)

// Locker grants named, expiring, cluster-wide leases. A lease that is not
// released expires after its TTL, so a crashed holder never blocks forever.
type Locker interface {
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error)
}

// Lease is a held lock. Release is safe to call more than once.
type Lease struct {
	Name    string
	Token   string
	release func(ctx context.Context) error
}

func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.release == nil {
		return nil
	}
	rel := l.release
	l.release = nil
	return rel(ctx)
}

// New wraps an externally managed lock as a Lease.
func New(name, token string, release func(ctx context.Context) error) *Lease {
	return &Lease{Name: name, Token: token, release: release}
}

var ErrNotAcquired = errors.New("lease held elsewhere")

// Holder identifies this process in lease rows.
func Holder() string {
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%d:%s", host, os.Getpid(), uuid.NewString()[:8])
}

type dbLocker struct {
	repo   repos.JobLeaseRepo
	holder string
	now    func() time.Time
	log    *logger.Logger
}

// NewDBLocker keeps leases in the job_lease table.
func NewDBLocker(log *logger.Logger, repo repos.JobLeaseRepo) Locker {
	return &dbLocker{
		repo:   repo,
		holder: Holder(),
		now:    func() time.Time { return time.Now().UTC() },
		log:    log.With("service", "DBLocker"),
	}
}

func (l *dbLocker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	// Token per acquisition: overlapping runs in this process must not share
	// a lease, and a finished run must not release a later one.
	token := l.holder + ":" + uuid.NewString()[:8]
	ok, err := l.repo.TryAcquire(dbctx.Context{Ctx: ctx}, name, token, l.now(), ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", name, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &Lease{
		Name:  name,
		Token: token,
		release: func(ctx context.Context) error {
			return l.repo.Release(dbctx.Context{Ctx: ctx}, name, token, l.now())
		},
	}, nil
}

// releaseScript deletes the key only while it still carries our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
}

// NewRedisLocker uses SET NX PX with a random token per acquisition.
func NewRedisLocker(log *logger.Logger, rdb goredis.UniversalClient, prefix string) Locker {
	if prefix == "" {
		prefix = "task-engine:lease:"
	}
	return &redisLocker{rdb: rdb, prefix: prefix, log: log.With("service", "RedisLocker")}
}

func (l *redisLocker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	key := l.prefix + name
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", name, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &Lease{
		Name:  name,
		Token: token,
		release: func(ctx context.Context) error {
			return releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
		},
	}, nil
}

// Run executes fn while holding name. It reports false without calling fn
// when another holder has the lease.
func Run(ctx context.Context, log *logger.Logger, l Locker, name string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error) {
	held, err := l.TryAcquire(ctx, name, ttl)
	if errors.Is(err, ErrNotAcquired) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() {
		// Release even when ctx was canceled mid-run.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := held.Release(relCtx); err != nil {
			log.Warn("Lease release failed", "lease", name, "error", err)
		}
	}()
	return true, fn(ctx)
}
