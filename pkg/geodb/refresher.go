package geodb

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Refresher runs Downloader.Refresh on a fixed interval. It implements the
// suture service interface.
type Refresher struct {
	downloader *Downloader
	interval   time.Duration
}

// NewRefresher creates a new Refresher
func NewRefresher(d *Downloader, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 84 * time.Hour
	}
	return &Refresher{downloader: d, interval: interval}
}

// Serve refreshes immediately when no snapshot exists, then on every tick
// until ctx is done. Failed refreshes are logged and retried next tick.
func (r *Refresher) Serve(ctx context.Context) error {
	if _, err := os.Stat(r.downloader.Path); errors.Is(err, fs.ErrNotExist) {
		r.refresh(ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) String() string {
	return "geodb-refresher"
}

func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()
	if err := r.downloader.Refresh(ctx); err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("geo database refresh failed")
		}
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("geo database refreshed")
}
