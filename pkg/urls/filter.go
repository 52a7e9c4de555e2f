package urls

import (
	"context"
	"net/url"
	"strings"
)

// UrlFilter defines the interface for URL filtering
type UrlFilter interface {
	ShouldKeep(ctx context.Context, url string) (bool, error)
}

// BaseURLFilter filters out base/root URLs
type BaseURLFilter struct{}

// NewBaseURLFilter creates a new base URL filter
func NewBaseURLFilter() *BaseURLFilter {
	return &BaseURLFilter{}
}

// ShouldKeep returns false if URL is a base/root URL
func (f *BaseURLFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		// If we can't parse it, don't filter it out (let it fail later if needed)
		return true, nil
	}

	// Check if path is empty or just "/"
	path := strings.Trim(parsed.Path, "/")
	return path != "", nil
}

// AlreadyImportedFilter filters out URLs whose posts were already
// imported in a previous run
type AlreadyImportedFilter struct {
	importedURLs map[string]bool
}

// NewAlreadyImportedFilter creates a new already-imported filter from
// the set of known source URLs
func NewAlreadyImportedFilter(importedURLs map[string]bool) *AlreadyImportedFilter {
	return &AlreadyImportedFilter{
		importedURLs: importedURLs,
	}
}

// ShouldKeep returns false if URL is already in the imported set
func (f *AlreadyImportedFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	exists := f.importedURLs[urlStr]
	return !exists, nil
}

// ContainsPathFilter filters URLs to only keep those that contain a specific path segment
type ContainsPathFilter struct {
	pathSegment string // The path segment to check for (e.g., "/blog")
}

// NewContainsPathFilter creates a new path filter that keeps URLs containing the specified path segment
func NewContainsPathFilter(pathSegment string) *ContainsPathFilter {
	return &ContainsPathFilter{
		pathSegment: pathSegment,
	}
}

// ShouldKeep returns true if URL contains the specified path segment
func (f *ContainsPathFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	return strings.Contains(urlStr, f.pathSegment), nil
}
