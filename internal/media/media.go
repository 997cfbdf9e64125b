package media

import "context"

// Image is a validated image search hit. JSON keys match the outbound
// event protocol.
type Image struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Video is a validated video search hit; Link is the watch page, ImageURL
// its thumbnail.
type Video struct {
	Link     string `json:"link"`
	ImageURL string `json:"imageUrl"`
}

type ImageProvider interface {
	SearchImages(ctx context.Context, query string) ([]Image, error)
}

type VideoProvider interface {
	SearchVideos(ctx context.Context, query string) ([]Video, error)
}
