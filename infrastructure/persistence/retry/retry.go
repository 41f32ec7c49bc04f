/*
Package retry re-runs a unit of work when the database reports a transient
conflict: MySQL deadlock (1213) or lock wait timeout (1205), Postgres
serialization failure (40001), deadlock (40P01) or lock_not_available (55P03),
and SQLite busy/locked.
*/
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"backoffice/config"
	"backoffice/pkg/logger"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	Enabled              bool
	MaxAttempts          int
	InitialDelay         time.Duration
	MaxDelay             time.Duration
	BackoffFactor        float64
	JitterEnabled        bool
	RetryOnDeadlock      bool
	RetryOnLockTimeout   bool
	RetryOnSerialization bool
	// RetryPredicate marks extra errors as transient.
	RetryPredicate func(error) bool
}

var DefaultConfig = Config{
	Enabled:              true,
	MaxAttempts:          3,
	InitialDelay:         100 * time.Millisecond,
	MaxDelay:             2 * time.Second,
	BackoffFactor:        2.0,
	JitterEnabled:        true,
	RetryOnDeadlock:      true,
	RetryOnLockTimeout:   true,
	RetryOnSerialization: true,
}

func FromAppConfig(appConfig *config.Config) Config {
	rc := appConfig.Database.Retry
	return Config{
		Enabled:              rc.Enabled,
		MaxAttempts:          rc.MaxAttempts,
		InitialDelay:         rc.InitialDelay,
		MaxDelay:             rc.MaxDelay,
		BackoffFactor:        rc.BackoffFactor,
		JitterEnabled:        rc.JitterEnabled,
		RetryOnDeadlock:      rc.RetryOnDeadlock,
		RetryOnLockTimeout:   rc.RetryOnLockTimeout,
		RetryOnSerialization: rc.RetryOnSerialization,
	}
}

type conflict int

const (
	noConflict conflict = iota
	deadlock
	lockTimeout
	serialization
	lostConnection
)

func (k conflict) String() string {
	switch k {
	case deadlock:
		return "deadlock"
	case lockTimeout:
		return "lock_timeout"
	case serialization:
		return "serialization"
	case lostConnection:
		return "connection"
	default:
		return "none"
	}
}

var (
	mysqlConflicts = map[uint16]conflict{1213: deadlock, 1205: lockTimeout}
	pgConflicts    = map[string]conflict{"40001": serialization, "40P01": deadlock, "55P03": lockTimeout}
)

// classify inspects driver errors first and falls back to the message text,
// which is all the sqlite driver gives us.
func classify(err error) conflict {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlConflicts[mysqlErr.Number]
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgConflicts[pgErr.Code]
	}
	if errors.Is(err, gorm.ErrInvalidTransaction) {
		return lostConnection
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadlock"):
		return deadlock
	case strings.Contains(msg, "lock wait timeout"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "sqlite_busy"):
		return lockTimeout
	case strings.Contains(msg, "connection") && strings.Contains(msg, "lost"):
		return lostConnection
	}
	return noConflict
}

func (c Config) allows(k conflict) bool {
	switch k {
	case deadlock:
		return c.RetryOnDeadlock
	case lockTimeout:
		return c.RetryOnLockTimeout
	case serialization:
		return c.RetryOnSerialization
	case lostConnection:
		return true
	}
	return false
}

// Retryable reports whether err is a transient conflict the config opts into.
// Context errors are never retried.
func (c Config) Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if c.RetryPredicate != nil && c.RetryPredicate(err) {
		return true
	}
	return c.allows(classify(err))
}

// Backoff is the wait before the retry following attempt (1-based).
// Jitter spreads it by ±20%.
func (c Config) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))
	if c.MaxDelay > 0 {
		delay = math.Min(delay, float64(c.MaxDelay))
	}
	if c.JitterEnabled {
		delay *= 0.8 + rand.Float64()*0.4
	}
	return time.Duration(math.Max(delay, 0))
}

// Do runs fn until it succeeds, fails with a non-transient error or the
// attempts are used up. The last error is returned unchanged.
func Do(ctx context.Context, c Config, fn func(ctx context.Context) error) error {
	if !c.Enabled || c.MaxAttempts <= 1 {
		return fn(ctx)
	}

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx); err == nil || attempt >= c.MaxAttempts || !c.Retryable(err) {
			return err
		}

		delay := c.Backoff(attempt)
		logger.FromContext(ctx).Warn("Retrying transaction",
			zap.Int("attempt", attempt),
			zap.Stringer("conflict", classify(err)),
			zap.Duration("delay", delay),
			zap.Error(err))

		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
