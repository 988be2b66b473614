package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("notehub")
	require.NoError(t, err)

	business, err := NewBusinessMetrics(provider.MeterProvider(), "notehub")
	require.NoError(t, err)
	assert.NotNil(t, business)
}

func TestBusinessMetrics_Record(t *testing.T) {
	provider, err := NewProvider("notehub")
	require.NoError(t, err)

	business, err := NewBusinessMetrics(provider.MeterProvider(), "notehub")
	require.NoError(t, err)

	ctx := context.Background()

	// Recording must not panic with any label combination
	business.RecordOperation(ctx, "auth", "login", "success")
	business.RecordOperation(ctx, "note", "note_create", "error")
	business.RecordDuration(ctx, "task", "task_toggle", 50*time.Millisecond, "success")
}

func TestNoOpBusinessMetrics(t *testing.T) {
	business := NewNoOpBusinessMetrics()

	ctx := context.Background()
	business.RecordOperation(ctx, "auth", "login", "success")
	business.RecordDuration(ctx, "auth", "login", time.Second, "success")
}
