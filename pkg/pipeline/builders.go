package pipeline

import (
	"github.com/albert-sebastian93/wanderlust/pkg/db"
	"github.com/albert-sebastian93/wanderlust/pkg/urls"
)

// RSSPipelineBuilder builds a pipeline for RSS/Atom feeds
// Pipeline: FeedURL → [RSS Fetcher] → [Content Consumer]
func RSSPipelineBuilder(dbClient *db.Client, defaults PostDefaults, urlFetcherWorkers, contentWorkers int, filters ...urls.UrlFilter) *Pipeline {
	var fetcher URLFetcher
	if len(filters) > 0 {
		fetcher = NewBasicURLFetcherWithFilters(urls.NewRSSParser(), filters)
	} else {
		fetcher = NewBasicURLFetcher(urls.NewRSSParser())
	}

	step := PipelineStep{
		Name:        "RSS Fetcher",
		WorkerCount: urlFetcherWorkers,
		Generator:   nil, // Uses Fetcher with baseURL
		Fetcher:     fetcher,
	}

	consumer := ContentConsumer{
		WorkerCount:      contentWorkers,
		ContentProcessor: NewHTTPContentProcessor(defaults),
		ContentSaver:     NewDBContentSaver(dbClient),
	}

	return NewPipeline([]PipelineStep{step}, consumer)
}

// SitemapPipelineBuilder builds a pipeline for Sitemaps
// Pipeline: SitemapURL → [Sitemap Fetcher] → [Content Consumer]
func SitemapPipelineBuilder(dbClient *db.Client, defaults PostDefaults, urlFetcherWorkers, contentWorkers int, filters ...urls.UrlFilter) *Pipeline {
	var fetcher URLFetcher
	if len(filters) > 0 {
		fetcher = NewBasicURLFetcherWithFilters(urls.NewSitemapParser(), filters)
	} else {
		fetcher = NewBasicURLFetcher(urls.NewSitemapParser())
	}

	step := PipelineStep{
		Name:        "Sitemap Fetcher",
		WorkerCount: urlFetcherWorkers,
		Generator:   nil, // Uses Fetcher with baseURL
		Fetcher:     fetcher,
	}

	consumer := ContentConsumer{
		WorkerCount:      contentWorkers,
		ContentProcessor: NewHTTPContentProcessor(defaults),
		ContentSaver:     NewDBContentSaver(dbClient),
	}

	return NewPipeline([]PipelineStep{step}, consumer)
}

// SourcePipelineBuilder builds a pipeline around any URLsFetcher (RSS,
// sitemap or a local URL-list file), used when the source type is
// resolved at runtime.
// Pipeline: Source → [Source Fetcher] → [Content Consumer]
func SourcePipelineBuilder(dbClient *db.Client, source urls.URLsFetcher, defaults PostDefaults, urlFetcherWorkers, contentWorkers int, filters ...urls.UrlFilter) *Pipeline {
	var fetcher URLFetcher
	if len(filters) > 0 {
		fetcher = NewBasicURLFetcherWithFilters(source, filters)
	} else {
		fetcher = NewBasicURLFetcher(source)
	}

	step := PipelineStep{
		Name:        "Source Fetcher",
		WorkerCount: urlFetcherWorkers,
		Generator:   nil,
		Fetcher:     fetcher,
	}

	consumer := ContentConsumer{
		WorkerCount:      contentWorkers,
		ContentProcessor: NewHTTPContentProcessor(defaults),
		ContentSaver:     NewDBContentSaver(dbClient),
	}

	return NewPipeline([]PipelineStep{step}, consumer)
}

// PaginationPipelineBuilder builds a pipeline for paginated HTML blogs
// Pipeline: [Page Range Generator] → [HTML Page Fetcher] → [Content Consumer]
// baseURL: the base URL (e.g., "https://site.com")
// pagePattern: the pattern for page URLs with %d placeholder (e.g., "/page/%d" or "/blog/page/%d")
func PaginationPipelineBuilder(dbClient *db.Client, baseURL, pagePattern string, defaults PostDefaults, pageGenWorkers, htmlFetcherWorkers, contentWorkers int, extractor urls.URLExtractor, filters ...urls.UrlFilter) *Pipeline {
	// Step 1: Generate page URLs (uses Generator, not Fetcher)
	step1 := PipelineStep{
		Name:        "Page Range Generator",
		WorkerCount: pageGenWorkers,
		Generator:   NewPageRangeGenerator(baseURL, pagePattern),
		Fetcher:     nil, // First step uses Generator
	}

	// Step 2: Extract post URLs from each listing page (uses Fetcher with filters)
	var fetcher URLFetcher
	if len(filters) > 0 {
		fetcher = NewHTMLPageFetcherWithFilters(extractor, filters)
	} else {
		fetcher = NewHTMLPageFetcher(extractor)
	}

	step2 := PipelineStep{
		Name:        "HTML Page Fetcher",
		WorkerCount: htmlFetcherWorkers,
		Generator:   nil, // Subsequent steps use Fetcher
		Fetcher:     fetcher,
	}

	consumer := ContentConsumer{
		WorkerCount:      contentWorkers,
		ContentProcessor: NewHTTPContentProcessor(defaults),
		ContentSaver:     NewDBContentSaver(dbClient),
	}

	return NewPipeline([]PipelineStep{step1, step2}, consumer)
}

// MultiLevelPipelineBuilder builds a custom pipeline with multiple steps
// Example: BaseURL → [Step 1] → [Step 2] → ... → [Content Consumer]
func MultiLevelPipelineBuilder(steps []PipelineStep, consumer ContentConsumer) *Pipeline {
	return NewPipeline(steps, consumer)
}
