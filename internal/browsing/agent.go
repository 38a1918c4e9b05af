// Package browsing derives the client environment of a beacon: browser and
// platform from the user agent, location from the client address, and page
// and campaign data from the page URL.
package browsing

import (
	"strings"

	"github.com/mileusna/useragent"
)

// Platform types
const (
	PlatformMobile  = "mobile"
	PlatformTablet  = "tablet"
	PlatformDesktop = "desktop"
	PlatformBot     = "bot"
)

// Agent is the parsed form of a user agent string
type Agent struct {
	Browser  string
	OS       string
	Platform string
}

// ParseAgent parses ua. A non-empty override replaces the parsed browser
// name; first party embeds report their own identity through it.
func ParseAgent(ua, override string) Agent {
	parsed := useragent.Parse(ua)
	a := Agent{Browser: parsed.Name, OS: parsed.OS}
	switch {
	case parsed.Bot:
		a.Platform = PlatformBot
	case parsed.Tablet:
		a.Platform = PlatformTablet
	case parsed.Mobile:
		a.Platform = PlatformMobile
	case parsed.Desktop:
		a.Platform = PlatformDesktop
	}
	if o := strings.TrimSpace(override); o != "" {
		a.Browser = o
	}
	return a
}
