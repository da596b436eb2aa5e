package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/internal/catalog"
	"github.com/haragam22/litmind/internal/reader"
	"github.com/haragam22/litmind/internal/svcctx"
)

// SearchResponse is the response for catalog searches.
type SearchResponse struct {
	Books []catalog.Book `json:"books"`
}

// SearchEndpoint handles GET /api/catalog/search.
type SearchEndpoint struct{}

func (e *SearchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/catalog/search", e.handler
}

func (e *SearchEndpoint) RequiresServices() bool { return true }

// handler godoc
//
//	@Summary		Search the book catalog
//	@Description	Search the public book catalog by title, author, or subject
//	@Tags			catalog
//	@Produce		json
//	@Param			q	query		string	true	"Search query"
//	@Success		200	{object}	SearchResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Router			/api/catalog/search [get]
func (e *SearchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	books, err := svcctx.CatalogFrom(r.Context()).Search(r.Context(), query)
	if err != nil {
		svcctx.LoggerFrom(r.Context()).Warn("catalog search failed", "error", err)
		writeError(w, http.StatusBadGateway, "search failed, please try again later")
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{Books: books})
}

func (e *SearchEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the book catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SearchResponse
			path := "/api/catalog/search?q=" + url.QueryEscape(args[0])
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			for _, b := range resp.Books {
				fmt.Printf("%s  %s - %v\n", b.ID, b.Title, b.Authors)
			}
			return nil
		},
	}
}

// VolumeEndpoint handles GET /api/catalog/volumes/{id}: it fetches the
// volume, composes the preview document, and paginates it.
type VolumeEndpoint struct{}

func (e *VolumeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/catalog/volumes/{id}", e.handler
}

func (e *VolumeEndpoint) RequiresServices() bool { return true }

// handler godoc
//
//	@Summary		Fetch a composed book document
//	@Description	Fetch volume metadata and preview text, composed and paginated
//	@Tags			catalog
//	@Produce		json
//	@Param			id	path		string	true	"Volume ID"
//	@Success		200	{object}	reader.Document
//	@Failure		400	{object}	ErrorResponse
//	@Router			/api/catalog/volumes/{id} [get]
func (e *VolumeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "volume id is required")
		return
	}

	// Optional search metadata seeds the fallback document when the
	// volume fetch fails.
	book := catalog.Book{
		ID:          id,
		Title:       r.URL.Query().Get("title"),
		Description: r.URL.Query().Get("description"),
	}
	if authors := r.URL.Query()["author"]; len(authors) > 0 {
		book.Authors = authors
	}

	// Fetch failures degrade to a fallback document, never an error.
	doc := svcctx.FetcherFrom(r.Context()).FetchDocument(r.Context(), book)
	writeJSON(w, http.StatusOK, doc)
}

func (e *VolumeEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "volume <id>",
		Short: "Fetch a composed book document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var doc reader.Document
			if err := client.Get(cmd.Context(), "/api/catalog/volumes/"+url.PathEscape(args[0]), &doc); err != nil {
				return err
			}
			return api.Output(doc)
		},
	}
}
