package urls

import (
	"fmt"
	"os"
	"strings"
)

// Source modes accepted by ResolveFetcher.
const (
	ModeAuto    = "auto"
	ModeRSS     = "rss"
	ModeSitemap = "sitemap"
	ModeFile    = "file"
)

// ResolveFetcher returns the URLsFetcher for the given mode and source.
// In auto mode the source is inspected: an existing local path is read
// as a URL-list file, a URL mentioning "sitemap" is parsed as sitemap
// XML, and anything else is treated as an RSS/Atom feed.
func ResolveFetcher(mode, source string) (URLsFetcher, error) {
	switch mode {
	case ModeRSS:
		return NewRSSParser(), nil
	case ModeSitemap:
		return NewSitemapParser(), nil
	case ModeFile:
		return NewFileParser(), nil
	case ModeAuto, "":
		return autoDetect(source), nil
	default:
		return nil, fmt.Errorf("unknown source mode %q (want %s, %s, %s or %s)", mode, ModeAuto, ModeRSS, ModeSitemap, ModeFile)
	}
}

func autoDetect(source string) URLsFetcher {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		if _, err := os.Stat(source); err == nil {
			return NewFileParser()
		}
	}
	if strings.Contains(strings.ToLower(source), "sitemap") {
		return NewSitemapParser()
	}
	return NewRSSParser()
}
