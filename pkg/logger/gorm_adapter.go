package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// SQLLogger routes GORM output into the "sql" child of the global logger.
// Statements carry the request id of the HTTP request that issued them.
type SQLLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
	// quietNotFound drops ErrRecordNotFound traces entirely instead of
	// logging them at debug.
	quietNotFound bool
	base          *zap.Logger
}

// ParseGormLevel maps database.log_level to a gorm level, defaulting to Warn.
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// NewSQLLogger binds to the global logger at call time, so call it after Init.
// A zero slow threshold falls back to 200ms.
func NewSQLLogger(level gormlogger.LogLevel, slow time.Duration) *SQLLogger {
	if slow <= 0 {
		slow = defaultSlowThreshold
	}
	return &SQLLogger{
		level: level,
		slow:  slow,
		base:  Named("sql").WithOptions(zap.AddCallerSkip(3)),
	}
}

// QuietNotFound returns a copy that never logs ErrRecordNotFound.
func (l *SQLLogger) QuietNotFound() *SQLLogger {
	cp := *l
	cp.quietNotFound = true
	return &cp
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *SQLLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		Ctx(ctx, l.base).Info(fmt.Sprintf(msg, args...))
	}
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		Ctx(ctx, l.base).Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *SQLLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		Ctx(ctx, l.base).Error(fmt.Sprintf(msg, args...))
	}
}

func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	notFound := errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := elapsed > l.slow

	switch {
	case err != nil && notFound && l.quietNotFound:
		return
	case err != nil && !notFound && l.level < gormlogger.Error:
		return
	case err == nil && slow && l.level < gormlogger.Warn:
		return
	case err == nil && !slow && l.level < gormlogger.Info:
		return
	}

	sql, rows := fc()
	log := Ctx(ctx, l.base).With(
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	)

	switch {
	case notFound:
		log.Debug("Database record not found")
	case err != nil:
		log.Error("Database operation failed", zap.Error(err))
	case slow:
		log.Warn("Slow SQL query", zap.Duration("threshold", l.slow))
	default:
		log.Info("SQL query executed")
	}
}
