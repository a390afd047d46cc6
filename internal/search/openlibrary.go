package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrUnavailable covers every failure mode of the remote catalog: transport
// errors, non-200 responses and undecodable bodies all collapse into it.
var ErrUnavailable = errors.New("external book search service unavailable")

// searchFields is the fixed projection requested from OpenLibrary.
const searchFields = "title,author_name,isbn,first_publish_year,publisher,cover_i,key"

// ExternalBook is the local shape an OpenLibrary document is mapped into.
type ExternalBook struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	ISBN          *string `json:"isbn,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
	Publisher     *string `json:"publisher,omitempty"`
	CoverImageURL *string `json:"cover_image_url,omitempty"`
	ExternalID    string  `json:"external_id"`
}

// Result is one page of external search hits.
type Result struct {
	Books []ExternalBook `json:"books"`
	Total int            `json:"total"`
	Query string         `json:"query"`
}

// Client queries the OpenLibrary search API. No retries: a slow or broken
// upstream surfaces as ErrUnavailable and nothing else.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type openLibraryDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	CoverID          int      `json:"cover_i"`
	Key              string   `json:"key"`
}

type openLibraryResponse struct {
	Docs     []openLibraryDoc `json:"docs"`
	NumFound int              `json:"numFound"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) (*Result, error) {
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("fields", searchFields)

	reqURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, ErrUnavailable
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnavailable
	}

	var parsed openLibraryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, ErrUnavailable
	}

	books := make([]ExternalBook, 0, len(parsed.Docs))
	for _, doc := range parsed.Docs {
		books = append(books, mapDoc(doc))
	}

	return &Result{
		Books: books,
		Total: parsed.NumFound,
		Query: query,
	}, nil
}

func mapDoc(doc openLibraryDoc) ExternalBook {
	book := ExternalBook{
		Title:      doc.Title,
		Author:     "Unknown Author",
		ExternalID: doc.Key,
	}
	if len(doc.AuthorName) > 0 {
		book.Author = doc.AuthorName[0]
	}
	if len(doc.ISBN) > 0 {
		isbn := doc.ISBN[0]
		book.ISBN = &isbn
	}
	if doc.FirstPublishYear != 0 {
		year := doc.FirstPublishYear
		book.PublishedYear = &year
	}
	if len(doc.Publisher) > 0 {
		publisher := doc.Publisher[0]
		book.Publisher = &publisher
	}
	if doc.CoverID != 0 {
		cover := fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverID)
		book.CoverImageURL = &cover
	}
	return book
}
