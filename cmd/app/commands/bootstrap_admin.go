package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// AdminBootstrapper seeds the initial identity when the store is empty.
type AdminBootstrapper interface {
	BootstrapAdmin(ctx context.Context, handle, password string) (bool, error)
}

// RunBootstrapAdmin seeds the admin identity if no identity exists yet.
// Prints whether an identity was created or the store was already populated.
//
// Requirements: Database must be migrated and accessible.
func RunBootstrapAdmin(
	ctx context.Context,
	identities AdminBootstrapper,
	logger *slog.Logger,
	out io.Writer,
	handle string,
	password string,
) error {
	if handle == "" || password == "" {
		return fmt.Errorf("handle and password are required")
	}

	created, err := identities.BootstrapAdmin(ctx, handle, password)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin identity: %w", err)
	}

	if created {
		logger.Info("admin identity created", slog.String("handle", handle))
		fmt.Fprintf(out, "Admin identity %q created\n", handle)
	} else {
		fmt.Fprintln(out, "Identity store is not empty, nothing to do")
	}

	return nil
}
