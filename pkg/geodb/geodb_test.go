package geodb

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "GeoLite2-City_20240501/", Typeflag: tar.TypeDir, Mode: 0o755}))
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

type recordingReloader struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingReloader) Reload(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recordingReloader) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func acceptAny(string) error { return nil }

func TestRefreshReplacesSnapshot(t *testing.T) {
	body := archive(t, map[string]string{
		"GeoLite2-City_20240501/COPYRIGHT.txt":      "legal",
		"GeoLite2-City_20240501/GeoLite2-City.mmdb": "new-database",
	})
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("license_key")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "geo", "GeoLite2-City.mmdb")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, []byte("old-database"), 0o644))

	reloader := &recordingReloader{}
	d := &Downloader{URL: srv.URL + "/download?edition_id=GeoLite2-City", LicenseKey: "k3y", Path: dst, Reloader: reloader, Verify: acceptAny}
	require.NoError(t, d.Refresh(context.Background()))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new-database", string(got))
	assert.Equal(t, "k3y", gotKey)
	assert.Equal(t, []string{dst}, reloader.paths)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dst), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRefreshKeepsSnapshotOnBadArchive(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"no mmdb": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(archive(t, map[string]string{"README": "x"}))
		},
		"not gzip": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("plain text"))
		},
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			dst := filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
			require.NoError(t, os.WriteFile(dst, []byte("old-database"), 0o644))
			reloader := &recordingReloader{}

			err := (&Downloader{URL: srv.URL, Path: dst, Reloader: reloader}).Refresh(context.Background())
			assert.Error(t, err)

			got, _ := os.ReadFile(dst)
			assert.Equal(t, "old-database", string(got))
			assert.Zero(t, reloader.calls())
		})
	}
}

func TestRefreshRejectsUnreadableDatabase(t *testing.T) {
	body := archive(t, map[string]string{"GeoLite2-City.mmdb": "not-an-mmdb"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
	require.NoError(t, os.WriteFile(dst, []byte("previous-snapshot"), 0o644))
	reloader := &recordingReloader{}

	err := (&Downloader{URL: srv.URL, Path: dst, Reloader: reloader}).Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify snapshot")

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "previous-snapshot", string(got))
	assert.Zero(t, reloader.calls())

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dst), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRefreshRejectsOversizedDatabase(t *testing.T) {
	limit := maxDatabaseSize
	maxDatabaseSize = 4
	t.Cleanup(func() { maxDatabaseSize = limit })

	body := archive(t, map[string]string{"GeoLite2-City.mmdb": "0123456789"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	err := (&Downloader{URL: srv.URL, Path: dst, Verify: acceptAny}).Refresh(context.Background())
	assert.ErrorIs(t, err, ErrDatabaseTooLarge)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestWriteAtomicRejectsOverflowingStream(t *testing.T) {
	limit := maxDatabaseSize
	maxDatabaseSize = 4
	t.Cleanup(func() { maxDatabaseSize = limit })

	dst := filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
	err := writeAtomic(bytes.NewReader([]byte("0123456789")), dst, acceptAny)
	assert.ErrorIs(t, err, ErrDatabaseTooLarge)
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestRefreshWithoutURL(t *testing.T) {
	assert.Error(t, (&Downloader{Path: "x"}).Refresh(context.Background()))
}

func TestRefresherFetchesMissingSnapshotOnStart(t *testing.T) {
	body := archive(t, map[string]string{"GeoLite2-City.mmdb": "db"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	reloader := &recordingReloader{}
	dst := filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
	r := NewRefresher(&Downloader{URL: srv.URL, Path: dst, Reloader: reloader, Verify: acceptAny}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	assert.Eventually(t, func() bool { return reloader.calls() == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, "geodb-refresher", r.String())
}
