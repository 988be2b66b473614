package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// ExpiredDeleter removes rows that expired before the cutoff, and can
// report how many rows a run would remove.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	CountExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunCleanExpired deletes expired sessions and verification tokens that
// expired more than the given number of days ago. Both deletions run
// concurrently. With dryRun the rows are only counted, nothing is removed.
// Supports text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpired(
	ctx context.Context,
	sessions ExpiredDeleter,
	tokens ExpiredDeleter,
	logger *slog.Logger,
	out io.Writer,
	days int,
	format string,
	dryRun bool,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	logger.Info("cleaning expired sessions and tokens",
		slog.Int("days", days),
		slog.Time("cutoff", cutoff),
		slog.Bool("dry_run", dryRun),
	)

	run := func(d ExpiredDeleter, ctx context.Context) (int64, error) {
		if dryRun {
			return d.CountExpired(ctx, cutoff)
		}
		return d.DeleteExpired(ctx, cutoff)
	}

	var sessionCount, tokenCount int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := run(sessions, gctx)
		if err != nil {
			return fmt.Errorf("failed to clean expired sessions: %w", err)
		}
		sessionCount = count
		return nil
	})
	g.Go(func() error {
		count, err := run(tokens, gctx)
		if err != nil {
			return fmt.Errorf("failed to clean expired tokens: %w", err)
		}
		tokenCount = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if format == "json" {
		outputCleanExpiredJSON(out, sessionCount, tokenCount, days, dryRun)
	} else {
		outputCleanExpiredText(out, sessionCount, tokenCount, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("sessions", sessionCount),
		slog.Int64("tokens", tokenCount),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanExpiredText outputs the result in human-readable text format.
func outputCleanExpiredText(out io.Writer, sessions, tokens int64, days int, dryRun bool) {
	if dryRun {
		fmt.Fprintf(out, "Would delete %d expired session(s) and %d expired token(s) older than %d day(s)\n",
			sessions, tokens, days)
		return
	}
	fmt.Fprintf(out, "Successfully deleted %d expired session(s) and %d expired token(s) older than %d day(s)\n",
		sessions, tokens, days)
}

// outputCleanExpiredJSON outputs the result in JSON format for machine consumption.
func outputCleanExpiredJSON(out io.Writer, sessions, tokens int64, days int, dryRun bool) {
	result := map[string]interface{}{
		"sessions": sessions,
		"tokens":   tokens,
		"days":     days,
		"dry_run":  dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
