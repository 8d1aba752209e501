package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes GORM statement logs through zap, tagged with the request
// and organization of the calling context.
//
// Missing rows and unique violations are expected outcomes in the ledger
// (unknown ids, duplicate reference numbers) and never log as SQL errors.
type GormLogger struct {
	logger    *zap.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
}

// NewGormLogger creates a GORM logger at level. A zero slowQuery uses 200ms.
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, slowQuery time.Duration) *GormLogger {
	if slowQuery <= 0 {
		slowQuery = defaultSlowQuery
	}
	return &GormLogger{
		logger:    zapLogger.Named("gorm"),
		level:     level,
		slowQuery: slowQuery,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, msg string, data []any) {
	if l.level < at {
		return
	}
	text := fmt.Sprintf(msg, data...)
	log := l.logger.With(contextFields(ctx)...)
	switch at {
	case gormlogger.Error:
		log.Error(text)
	case gormlogger.Warn:
		log.Warn(text)
	default:
		log.Info(text)
	}
}

// Trace logs one executed statement
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := append(contextFields(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	)

	switch {
	case err != nil && isExpectedError(err):
		if l.level >= gormlogger.Info {
			l.logger.Debug("SQL rejected", append(fields, zap.Error(err))...)
		}
	case err != nil && l.level >= gormlogger.Error:
		l.logger.Error("SQL error", append(fields, zap.Error(err))...)
	case elapsed > l.slowQuery && l.level >= gormlogger.Warn:
		l.logger.Warn("slow SQL", append(fields, zap.Duration("threshold", l.slowQuery))...)
	case l.level >= gormlogger.Info:
		l.logger.Debug("SQL", fields...)
	}
}

func isExpectedError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey)
}

func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if org := GetOrganizationID(ctx); org != "" {
		fields = append(fields, zap.String("organization_id", org))
	}
	return fields
}

// MapGormLogLevel maps a config level name to the GORM level; unknown names
// fall back to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
