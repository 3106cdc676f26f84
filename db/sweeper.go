// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// SweepInterval is how often RunSweeper looks for idle sessions when
// the TTL is long
const SweepInterval = 5 * time.Minute

// RunSweeper deletes sessions idle for longer than ttl until ctx is
// cancelled. It always returns nil so it can sit in an errgroup next
// to the server.
func RunSweeper(ctx context.Context, conn *sql.DB, ttl time.Duration) error {
	interval := min(SweepInterval, ttl/2)
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("session sweeper started", "ttl", ttl.String(), "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return nil
		case now := <-ticker.C:
			SweepOnce(ctx, conn, now.UTC(), ttl)
		}
	}
}

// SweepOnce removes sessions last seen before now-ttl and logs the count
func SweepOnce(ctx context.Context, conn *sql.DB, now time.Time, ttl time.Duration) int64 {
	cutoff := now.Add(-ttl)
	n, err := SweepExpired(ctx, conn, cutoff)
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		slog.Info("expired sessions removed",
			"count", humanize.Comma(n),
			"idle_since", humanize.RelTime(cutoff, now, "ago", "from now"),
		)
	}
	return n
}
