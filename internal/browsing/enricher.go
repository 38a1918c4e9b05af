package browsing

import "github.com/ArowuTest/outline-analytics-backend/internal/models"

// Enricher combines agent parsing and geo lookup
type Enricher struct {
	locator Locator
}

// NewEnricher creates an Enricher. A nil locator disables geo lookup.
func NewEnricher(locator Locator) *Enricher {
	if locator == nil {
		locator = NopLocator{}
	}
	return &Enricher{locator: locator}
}

// BrowsingData derives the client environment of one request
func (e *Enricher) BrowsingData(userAgent, browserOverride, clientIP string) models.BrowsingData {
	agent := ParseAgent(userAgent, browserOverride)
	return models.BrowsingData{
		Browser:  agent.Browser,
		OS:       agent.OS,
		Platform: agent.Platform,
		Geo:      e.locator.Locate(clientIP),
	}
}
