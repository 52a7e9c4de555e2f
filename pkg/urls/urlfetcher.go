package urls

// URL represents a URL entry from a parser (sitemap, RSS or file)
type URL struct {
	Location string // URL of the post
	Title    string // Title of the post (optional)
}

// URLsFetcher defines the interface for URL parsers (sitemap, RSS, etc.)
type URLsFetcher interface {
	Fetch(baseUrl string) ([]URL, error)
}
