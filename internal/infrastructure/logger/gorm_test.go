package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func traceFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_TraceQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	gl.Trace(context.Background(), time.Now(),
		traceFn(`SELECT * FROM "return_transactions"`, 3), nil)

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.DebugLevel, entry.Level)
	assert.Equal(t, "SQL Query", entry.Message)
	assert.EqualValues(t, 3, entry.ContextMap()["rows"])
}

func TestGormLogger_TraceError(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(),
		traceFn(`UPDATE "inventory_items" SET version = 2`, 0), assert.AnError)

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "SQL Error", recorded.All()[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, recorded.All()[0].Level)
}

func TestGormLogger_SuppressesRecordNotFound(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(),
		traceFn(`SELECT * FROM "suppliers" WHERE id = $1`, 0), gormlogger.ErrRecordNotFound)

	assert.Zero(t, recorded.Len())
}

func TestGormLogger_ReportsRecordNotFoundWhenConfigured(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))

	gl.Trace(context.Background(), time.Now(),
		traceFn(`SELECT * FROM "suppliers" WHERE id = $1`, 0), gormlogger.ErrRecordNotFound)

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "SQL Error", recorded.All()[0].Message)
}

func TestGormLogger_SlowQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	gl.Trace(context.Background(), time.Now().Add(-50*time.Millisecond),
		traceFn(`SELECT * FROM "return_audit_logs"`, 120), nil)

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "Slow SQL", recorded.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, recorded.All()[0].Level)
}

func TestGormLogger_Silent(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), traceFn("SELECT 1", 1), assert.AnError)
	gl.Info(context.Background(), "msg")
	gl.Warn(context.Background(), "msg")
	gl.Error(context.Background(), "msg")

	assert.Zero(t, recorded.Len())
}

func TestGormLogger_TraceIncludesContextIDs(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-55")
	ctx, _ = WithTenantID(ctx, zap.NewNop(), "tenant-9")
	gl.Trace(ctx, time.Now(), traceFn("SELECT 1", 1), nil)

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-55", fields["request_id"])
	assert.Equal(t, "tenant-9", fields["tenant_id"])
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Error)

	quieter := gl.LogMode(gormlogger.Silent)

	require.NotSame(t, gl, quieter)
	assert.Equal(t, gormlogger.Error, gl.level)
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
		{"trace", gormlogger.Warn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapGormLogLevel(tt.in), "level %q", tt.in)
	}
}
