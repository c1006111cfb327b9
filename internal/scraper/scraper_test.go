package scraper

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestCheckURL(t *testing.T) {
	assert.NoError(t, checkURL("https://example.com/page"))
	assert.NoError(t, checkURL("http://example.com"))

	for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "https://", "::"} {
		assert.ErrorIs(t, checkURL(raw), ErrUnsupportedURL, raw)
	}
}

func TestRodScraper_RejectsUnsupportedURL(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	_, _, err := NewRodScraper(log).ScrapeMetadata(context.Background(), "file:///home/user/diary.txt")
	assert.ErrorIs(t, err, ErrUnsupportedURL, "no browser is launched for local files")
}
