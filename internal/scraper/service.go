package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

const pageTimeout = 30 * time.Second

var descSelectors = []string{
	`meta[name="description"]`,
	`meta[property="og:description"]`,
}

// RodScraper implements the Scraper interface using the rod library.
type RodScraper struct {
	log logrus.FieldLogger
}

func NewRodScraper(logger logrus.FieldLogger) *RodScraper {
	return &RodScraper{
		log: logger.WithField("component", "scraper"),
	}
}

// ScrapeMetadata loads url in a headless browser and reads its title and
// meta description.
func (s *RodScraper) ScrapeMetadata(ctx context.Context, url string) (title string, description string, err error) {
	if err := checkURL(url); err != nil {
		return "", "", err
	}

	log := s.log.WithField("url", url)
	log.Debug("Scraping page metadata")

	path, exists := launcher.LookPath()
	if !exists {
		return "", "", errors.New("no browser found for fetching page titles")
	}
	controlURL, err := launcher.New().Bin(path).Launch()
	if err != nil {
		return "", "", fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return "", "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Error closing browser")
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, pageTimeout)
	defer cancel()

	page, err := browser.Context(pageCtx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", "", fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			return "", "", fmt.Errorf("loading %s timed out: %w", url, pageCtx.Err())
		}
		return "", "", fmt.Errorf("failed waiting for page load: %w", err)
	}

	if has, el, err := page.Has("title"); err == nil && has {
		if text, err := el.Text(); err == nil {
			title = strings.TrimSpace(text)
		}
	}

	for _, selector := range descSelectors {
		has, el, err := page.Has(selector)
		if err != nil || !has {
			continue
		}
		content, err := el.Attribute("content")
		if err == nil && content != nil && strings.TrimSpace(*content) != "" {
			description = strings.TrimSpace(*content)
			break
		}
	}

	log.WithField("title", title).Debug("Page metadata scraped")
	return title, description, nil
}
