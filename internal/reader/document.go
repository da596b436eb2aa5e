// Package reader implements the reading session: document composition
// and pagination, the view-state machine, per-page translation with
// staleness sequencing, and the playback mode controller.
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haragam22/litmind/internal/catalog"
)

// DefaultPageSize is the fixed character budget of a page.
const DefaultPageSize = 2000

// Document is a composed, paginated book preview. Immutable after
// creation; concatenating Pages reconstructs RawText exactly.
type Document struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	RawText string   `json:"rawText"`
	Pages   []string `json:"pages"`
}

// Page returns the page at index, or the empty string out of range.
func (d *Document) Page(i int) string {
	if d == nil || i < 0 || i >= len(d.Pages) {
		return ""
	}
	return d.Pages[i]
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Compose assembles the formatted preview text for a volume: title and
// authors, then whatever metadata and snippet the catalog exposes. A
// volume with nothing beyond title and authors composes to a minimal
// two-line document.
func Compose(vol *catalog.Volume) string {
	info := vol.VolumeInfo
	authors := info.Authors
	if len(authors) == 0 {
		authors = []string{"Unknown Author"}
	}
	byline := strings.Join(authors, ", ")

	var sections strings.Builder
	if info.Description != "" {
		fmt.Fprintf(&sections, "## Overview\n\n%s\n\n", info.Description)
	}
	if info.Publisher != "" {
		fmt.Fprintf(&sections, "**Publisher:** %s\n", info.Publisher)
	}
	if info.PublishedDate != "" {
		fmt.Fprintf(&sections, "**Published:** %s\n", info.PublishedDate)
	}
	if info.PageCount > 0 {
		fmt.Fprintf(&sections, "**Pages:** %d\n\n", info.PageCount)
	}
	if len(info.Categories) > 0 {
		fmt.Fprintf(&sections, "**Categories:** %s\n\n", strings.Join(info.Categories, ", "))
	}

	snippet := ""
	if vol.SearchInfo != nil {
		snippet = vol.SearchInfo.TextSnippet
	}
	if snippet != "" {
		sections.WriteString("---\n\n## Content Preview\n\n")
		sections.WriteString("Note: Due to copyright restrictions, the catalog provides limited content. " +
			"Full books are not available through the API.\n\n")
		snippet = strings.ReplaceAll(snippet, "<b>", "**")
		snippet = strings.ReplaceAll(snippet, "</b>", "**")
		sections.WriteString(snippet + "\n\n")
	}

	if sections.Len() == 0 {
		return fmt.Sprintf("# %s\n\nby %s", info.Title, byline)
	}
	return fmt.Sprintf("# %s\n\n**by %s**\n\n---\n\n%s", info.Title, byline, sections.String())
}

// Paginate splits text into fixed-size pages of pageSize characters,
// the final page shorter. The result is never empty.
func Paginate(text string, pageSize int) []string {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}

	pages := make([]string, 0, len(runes)/pageSize+1)
	for i := 0; i < len(runes); i += pageSize {
		end := i + pageSize
		if end > len(runes) {
			end = len(runes)
		}
		pages = append(pages, string(runes[i:end]))
	}
	return pages
}

// fallbackText is the single-page document used when the catalog fetch
// fails: title, authors, and the short description from search results.
func fallbackText(book catalog.Book) string {
	return fmt.Sprintf("# %s\n\nby %s\n\n%s\n\nContent preview is not available.",
		book.Title, strings.Join(book.Authors, ", "), book.Description)
}

// FallbackDocument builds the one-page document shown when the volume
// fetch fails.
func FallbackDocument(book catalog.Book) Document {
	text := fallbackText(book)
	return Document{
		ID:      book.ID,
		Title:   book.Title,
		Authors: book.Authors,
		RawText: text,
		Pages:   []string{text},
	}
}

// Fetcher assembles documents from the catalog.
type Fetcher struct {
	catalog  *catalog.Client
	pageSize int
	logger   *slog.Logger
}

// NewFetcher creates a document fetcher.
func NewFetcher(c *catalog.Client, pageSize int, logger *slog.Logger) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{catalog: c, pageSize: pageSize, logger: logger}
}

// FetchDocument retrieves and composes the document for a selected
// book. A single attempt is made; on any failure the result is a
// one-page fallback built from the search metadata, never an error.
func (f *Fetcher) FetchDocument(ctx context.Context, book catalog.Book) Document {
	vol, err := f.catalog.GetVolume(ctx, book.ID)
	if err != nil {
		f.logger.Warn("catalog fetch failed, using fallback preview", "book_id", book.ID, "error", err)
		return FallbackDocument(book)
	}

	text := Compose(vol)
	return Document{
		ID:      book.ID,
		Title:   book.Title,
		Authors: book.Authors,
		RawText: text,
		Pages:   Paginate(text, f.pageSize),
	}
}
