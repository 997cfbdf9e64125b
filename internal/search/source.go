package search

// Source is one candidate page returned by a search engine. The JSON keys
// match the outbound event protocol consumed by the UI.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"link"`
	Favicon string `json:"favicon"`
}
