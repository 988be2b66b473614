package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdminBootstrapper struct {
	mock.Mock
}

func (m *mockAdminBootstrapper) BootstrapAdmin(ctx context.Context, handle, password string) (bool, error) {
	args := m.Called(ctx, handle, password)
	return args.Bool(0), args.Error(1)
}

func TestRunBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("creates-identity", func(t *testing.T) {
		identities := &mockAdminBootstrapper{}
		identities.On("BootstrapAdmin", ctx, "admin", "sup3r-s3cret").Return(true, nil)

		var out bytes.Buffer
		err := RunBootstrapAdmin(ctx, identities, logger, &out, "admin", "sup3r-s3cret")

		require.NoError(t, err)
		require.Contains(t, out.String(), `Admin identity "admin" created`)
		identities.AssertExpectations(t)
	})

	t.Run("store-not-empty", func(t *testing.T) {
		identities := &mockAdminBootstrapper{}
		identities.On("BootstrapAdmin", ctx, "admin", "sup3r-s3cret").Return(false, nil)

		var out bytes.Buffer
		err := RunBootstrapAdmin(ctx, identities, logger, &out, "admin", "sup3r-s3cret")

		require.NoError(t, err)
		require.Contains(t, out.String(), "nothing to do")
	})

	t.Run("missing-credentials", func(t *testing.T) {
		identities := &mockAdminBootstrapper{}

		err := RunBootstrapAdmin(ctx, identities, logger, &bytes.Buffer{}, "", "")

		require.Error(t, err)
		require.Contains(t, err.Error(), "handle and password are required")
	})
}
