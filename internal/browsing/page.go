package browsing

import (
	"errors"
	"net/url"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
)

// ErrInvalidPageURL means the page fullpath is not an absolute URL
var ErrInvalidPageURL = errors.New("page fullpath must be an absolute URL")

// utmKeys are the only campaign parameters kept
var utmKeys = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// ParsePage splits the fullpath of a page into path, query and hash and
// extracts its UTM parameters. The returned UTM is nil when none are set.
func ParsePage(fullpath, title string, meta map[string]string) (*models.PageData, *models.UTM, error) {
	u, err := url.Parse(fullpath)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, nil, ErrInvalidPageURL
	}

	page := &models.PageData{
		Path:     u.EscapedPath(),
		Fullpath: fullpath,
		Title:    title,
		Meta:     meta,
	}
	if page.Path == "" {
		page.Path = "/"
	}
	if u.Fragment != "" {
		page.Hash = "#" + u.Fragment
	}

	values := u.Query()
	if len(values) > 0 {
		page.Query = make(map[string]string, len(values))
		for k := range values {
			page.Query[k] = values.Get(k)
		}
	}

	utm := models.UTM{
		Source:   values.Get(utmKeys[0]),
		Medium:   values.Get(utmKeys[1]),
		Campaign: values.Get(utmKeys[2]),
		Term:     values.Get(utmKeys[3]),
		Content:  values.Get(utmKeys[4]),
	}
	if utm.Empty() {
		return page, nil, nil
	}
	return page, &utm, nil
}
