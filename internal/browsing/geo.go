package browsing

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"sync"

	"github.com/ArowuTest/outline-analytics-backend/internal/metrics"
	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

// Locator resolves a client address to a location. It returns nil when the
// address is missing, private or unknown.
type Locator interface {
	Locate(ip string) *models.GeoData
}

// MaxMindLocator reads a GeoLite2/GeoIP2 City database. The reader can be
// swapped while lookups are running.
type MaxMindLocator struct {
	mu     sync.RWMutex
	reader *geoip2.Reader
	path   string
}

// OpenMaxMind opens the database at path. A missing file yields a locator
// that resolves nothing until Reload succeeds.
func OpenMaxMind(path string) (*MaxMindLocator, error) {
	l := &MaxMindLocator{path: path}
	if err := l.Reload(path); err != nil {
		return l, err
	}
	return l, nil
}

// Reload opens path and replaces the current reader. The old reader is
// closed only after in-flight lookups finish.
func (l *MaxMindLocator) Reload(path string) error {
	reader, err := geoip2.Open(path)
	if err != nil {
		return fmt.Errorf("open geo database %s: %w", path, err)
	}

	l.mu.Lock()
	old := l.reader
	l.reader = reader
	l.path = path
	l.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Warn().Err(err).Msg("closing previous geo database")
		}
	}
	log.Info().Str("path", path).Msg("geo database loaded")
	return nil
}

// Path is the file the current reader was opened from
func (l *MaxMindLocator) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.path
}

// Locate implements Locator
func (l *MaxMindLocator) Locate(ip string) *models.GeoData {
	addr := net.ParseIP(ip)
	if addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		metrics.GeoLookups.WithLabelValues("miss").Inc()
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.reader == nil {
		metrics.GeoLookups.WithLabelValues("unavailable").Inc()
		return nil
	}

	record, err := l.reader.City(addr)
	if err != nil {
		log.Debug().Err(err).Str("ip", ip).Msg("geo lookup failed")
		metrics.GeoLookups.WithLabelValues("miss").Inc()
		return nil
	}
	geo := fromCity(record)
	if geo == nil {
		metrics.GeoLookups.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.GeoLookups.WithLabelValues("hit").Inc()
	return geo
}

// Close releases the reader
func (l *MaxMindLocator) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reader == nil {
		return nil
	}
	err := l.reader.Close()
	l.reader = nil
	return err
}

func fromCity(c *geoip2.City) *models.GeoData {
	if c == nil || (c.Country.IsoCode == "" && c.City.GeoNameID == 0) {
		return nil
	}
	geo := &models.GeoData{
		City: c.City.Names["en"],
		Country: models.Country{
			Name: c.Country.Names["en"],
			Code: c.Country.IsoCode,
		},
		Continent: c.Continent.Code,
		Timezone:  c.Location.TimeZone,
	}
	if c.Location.Latitude != 0 || c.Location.Longitude != 0 {
		geo.Coords = models.NewGeoPoint(c.Location.Latitude, c.Location.Longitude)
	}
	return geo
}

// NopLocator resolves nothing
type NopLocator struct{}

// Locate implements Locator
func (NopLocator) Locate(string) *models.GeoData { return nil }

// IsMissingDatabase reports whether err came from an absent database file
func IsMissingDatabase(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
