// Package geodb keeps the local city database snapshot current. A refresh
// downloads a tar.gz archive, extracts the .mmdb file next to the target,
// checks that it opens and renames it into place, so readers never observe a
// partial or unreadable file.
package geodb

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/metrics"
	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

// ErrNoDatabaseInArchive means the archive held no .mmdb entry
var ErrNoDatabaseInArchive = errors.New("geodb: archive contains no .mmdb file")

// ErrDatabaseTooLarge means the archive entry exceeds maxDatabaseSize
var ErrDatabaseTooLarge = errors.New("geodb: database exceeds size limit")

// maxDatabaseSize bounds the extracted file
var maxDatabaseSize int64 = 512 << 20

// Reloader is notified after a new snapshot is in place
type Reloader interface {
	Reload(path string) error
}

// Downloader fetches and installs database snapshots
type Downloader struct {
	URL        string
	LicenseKey string
	Path       string
	Client     *http.Client
	Reloader   Reloader
	// Verify checks the extracted file before it replaces Path. Nil opens
	// it as a MaxMind database.
	Verify func(path string) error
}

// Refresh downloads the archive and atomically replaces Path
func (d *Downloader) Refresh(ctx context.Context) (err error) {
	defer func() { metrics.GeoRefreshes.WithLabelValues(metrics.Result(err)).Inc() }()

	if d.URL == "" {
		return errors.New("geodb: no download URL configured")
	}
	src, err := d.downloadURL()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("geodb: build request: %w", err)
	}
	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("geodb: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geodb: download returned status %d", resp.StatusCode)
	}

	verify := d.Verify
	if verify == nil {
		verify = openable
	}
	if err := install(resp.Body, d.Path, verify); err != nil {
		return err
	}
	log.Info().Str("path", d.Path).Msg("geo database snapshot replaced")

	if d.Reloader != nil {
		if err := d.Reloader.Reload(d.Path); err != nil {
			return fmt.Errorf("geodb: reload: %w", err)
		}
	}
	return nil
}

func (d *Downloader) downloadURL() (string, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", fmt.Errorf("geodb: parse download URL: %w", err)
	}
	if d.LicenseKey != "" {
		q := u.Query()
		q.Set("license_key", d.LicenseKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// openable reports whether path opens as a MaxMind database
func openable(path string) error {
	reader, err := geoip2.Open(path)
	if err != nil {
		return err
	}
	return reader.Close()
}

// install extracts the first .mmdb entry of the gzipped tar stream r into a
// temp file beside dst, verifies it, then renames it over dst.
func install(r io.Reader, dst string, verify func(string) error) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("geodb: gunzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return ErrNoDatabaseInArchive
		}
		if err != nil {
			return fmt.Errorf("geodb: read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, ".mmdb") {
			continue
		}
		if hdr.Size > maxDatabaseSize {
			return fmt.Errorf("%w: %s is %d bytes", ErrDatabaseTooLarge, hdr.Name, hdr.Size)
		}
		return writeAtomic(io.LimitReader(tr, maxDatabaseSize+1), dst, verify)
	}
}

func writeAtomic(r io.Reader, dst string, verify func(string) error) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("geodb: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("geodb: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("geodb: write snapshot: %w", err)
	}
	if n > maxDatabaseSize {
		tmp.Close()
		return ErrDatabaseTooLarge
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("geodb: sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("geodb: close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("geodb: chmod snapshot: %w", err)
	}
	if err := verify(tmpName); err != nil {
		return fmt.Errorf("geodb: verify snapshot: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("geodb: replace snapshot: %w", err)
	}
	return nil
}
