// Command geoupdate downloads the city database snapshot once and swaps it
// into place. It is meant for an OS scheduler when the in-process refresher
// is not used.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/config"
	"github.com/ArowuTest/outline-analytics-backend/internal/logging"
	"github.com/ArowuTest/outline-analytics-backend/pkg/geodb"
	"github.com/rs/zerolog/log"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "download timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	d := &geodb.Downloader{
		URL:        cfg.GeoIP.DownloadURL,
		LicenseKey: cfg.GeoIP.LicenseKey,
		Path:       cfg.GeoIP.DBPath,
	}
	start := time.Now()
	if err := d.Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("geo database update failed")
	}
	log.Info().Str("path", d.Path).Dur("took", time.Since(start)).Msg("geo database updated")
}
