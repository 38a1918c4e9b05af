package browsing

import (
	"path/filepath"
	"testing"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	googlebot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestParseAgent(t *testing.T) {
	a := ParseAgent(chromeWindows, "")
	assert.Equal(t, "Chrome", a.Browser)
	assert.Equal(t, "Windows", a.OS)
	assert.Equal(t, PlatformDesktop, a.Platform)

	a = ParseAgent(safariIPhone, "")
	assert.Equal(t, "Safari", a.Browser)
	assert.Equal(t, "iOS", a.OS)
	assert.Equal(t, PlatformMobile, a.Platform)

	assert.Equal(t, PlatformBot, ParseAgent(googlebot, "").Platform)
}

func TestParseAgentOverride(t *testing.T) {
	a := ParseAgent(chromeWindows, " Outline Desktop ")
	assert.Equal(t, "Outline Desktop", a.Browser)
	assert.Equal(t, "Windows", a.OS)
}

func TestParseAgentEmpty(t *testing.T) {
	a := ParseAgent("", "")
	assert.Empty(t, a.Browser)
	assert.Empty(t, a.OS)
}

func TestParsePage(t *testing.T) {
	page, utm, err := ParsePage(
		"https://shop.example.com/products/42?utm_source=news&utm_medium=email&ref=home&utm_id=7#reviews",
		"Product 42", map[string]string{"description": "A thing"})
	require.NoError(t, err)

	assert.Equal(t, "/products/42", page.Path)
	assert.Equal(t, "#reviews", page.Hash)
	assert.Equal(t, "Product 42", page.Title)
	assert.Equal(t, map[string]string{
		"utm_source": "news", "utm_medium": "email", "ref": "home", "utm_id": "7",
	}, page.Query)

	require.NotNil(t, utm)
	assert.Equal(t, models.UTM{Source: "news", Medium: "email"}, *utm)
}

func TestParsePageWithoutQuery(t *testing.T) {
	page, utm, err := ParsePage("https://example.com", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "/", page.Path)
	assert.Nil(t, page.Query)
	assert.Empty(t, page.Hash)
	assert.Nil(t, utm)
}

func TestParsePageRejectsRelative(t *testing.T) {
	for _, raw := range []string{"/pricing", "not a url", "://x", ""} {
		_, _, err := ParsePage(raw, "", nil)
		assert.ErrorIs(t, err, ErrInvalidPageURL, raw)
	}
}

type fixedLocator struct{ geo *models.GeoData }

func (f fixedLocator) Locate(string) *models.GeoData { return f.geo }

func TestEnricher(t *testing.T) {
	geo := &models.GeoData{City: "Lagos", Country: models.Country{Name: "Nigeria", Code: "NG"}}
	data := NewEnricher(fixedLocator{geo}).BrowsingData(chromeWindows, "", "102.89.1.1")
	assert.Equal(t, "Chrome", data.Browser)
	assert.Same(t, geo, data.Geo)

	data = NewEnricher(nil).BrowsingData(chromeWindows, "", "102.89.1.1")
	assert.Nil(t, data.Geo)
}

func TestMaxMindLocatorWithoutDatabase(t *testing.T) {
	l, err := OpenMaxMind(filepath.Join(t.TempDir(), "missing.mmdb"))
	require.Error(t, err)
	assert.True(t, IsMissingDatabase(err))
	require.NotNil(t, l)

	assert.Nil(t, l.Locate("8.8.8.8"))
	assert.Nil(t, l.Locate(""))
	assert.Nil(t, l.Locate("10.0.0.1"))
	assert.NoError(t, l.Close())
}
