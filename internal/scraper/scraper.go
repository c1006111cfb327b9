package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

var ErrUnsupportedURL = errors.New("only http and https pages can be scraped")

// Scraper fetches metadata for web pages linked from diary entries.
type Scraper interface {
	// ScrapeMetadata fetches the title and description for a given URL.
	ScrapeMetadata(ctx context.Context, url string) (title string, description string, err error)
}

// checkURL rejects anything a browser should not be pointed at on the
// user's behalf.
func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedURL, raw)
	}
	return nil
}
