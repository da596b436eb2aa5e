package catalog

// Volume is a single catalog volume as returned by the books API.
// Only the fields the reader consumes are mapped.
type Volume struct {
	ID         string      `json:"id"`
	VolumeInfo VolumeInfo  `json:"volumeInfo"`
	SearchInfo *SearchInfo `json:"searchInfo,omitempty"`
}

// VolumeInfo holds the volume metadata consumed by the reader.
type VolumeInfo struct {
	Title         string      `json:"title"`
	Authors       []string    `json:"authors,omitempty"`
	Description   string      `json:"description,omitempty"`
	Publisher     string      `json:"publisher,omitempty"`
	PublishedDate string      `json:"publishedDate,omitempty"`
	PageCount     int         `json:"pageCount,omitempty"`
	Categories    []string    `json:"categories,omitempty"`
	ImageLinks    *ImageLinks `json:"imageLinks,omitempty"`
	PreviewLink   string      `json:"previewLink,omitempty"`
}

// ImageLinks holds cover image URLs.
type ImageLinks struct {
	Thumbnail string `json:"thumbnail,omitempty"`
}

// SearchInfo carries the short preview snippet a search exposes.
type SearchInfo struct {
	TextSnippet string `json:"textSnippet,omitempty"`
}

// searchResponse is the wire shape of a volumes search.
type searchResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Book is a search result shaped for display and selection.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	PreviewLink string   `json:"previewLink"`
}
