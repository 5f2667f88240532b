package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext_RoundTrip(t *testing.T) {
	log := zap.NewNop()
	ctx := WithContext(context.Background(), log)

	assert.Same(t, log, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	log := FromContext(context.Background())

	require.NotNil(t, log)
	// The fallback must be safe to log to.
	log.Info("no logger attached")
}

func TestWithTenantID_TagsEntries(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, scoped := WithTenantID(context.Background(), zap.New(core), "tenant-7")

	scoped.Info("listing returns")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "tenant-7", fields["tenant_id"])
	assert.Equal(t, "tenant-7", GetTenantID(ctx))
}

func TestWithUserID_TagsEntries(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, scoped := WithUserID(context.Background(), zap.New(core), "user-42")

	scoped.Info("inspection submitted")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "user-42", recorded.All()[0].ContextMap()["user_id"])
	assert.Equal(t, "user-42", GetUserID(ctx))
}

func TestWithRequestID_StoresScopedLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-123")

	// The scoped logger is also reachable through the context.
	FromContext(ctx).Info("processing")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "req-123", recorded.All()[0].ContextMap()["request_id"])
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestGetters_Empty(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestScopes_Stack(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, log := WithTenantID(context.Background(), zap.New(core), "tenant-7")
	ctx, log = WithUserID(ctx, log, "user-42")

	log.Info("cancelling return")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "tenant-7", fields["tenant_id"])
	assert.Equal(t, "user-42", fields["user_id"])
	assert.Equal(t, "tenant-7", GetTenantID(ctx))
	assert.Equal(t, "user-42", GetUserID(ctx))
}
