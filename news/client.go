package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/folio/webapi"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultURL is the News API v2 endpoint.
const DefaultURL = "https://newsapi.org/v2"

// CacheTTL is how long responses are kept in memory.
const CacheTTL = 10 * time.Minute

// Client queries News API. It is safe for concurrent use.
type Client struct {
	baseURL string
	api     *webapi.Client
	cache   *expirable.LRU[string, []Article]
}

// NewClient returns a client authenticating with 'key'. A nil httpClient uses the webapi default.
func NewClient(key string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: DefaultURL,
		api: &webapi.Client{
			Service: "newsapi",
			HTTP:    httpClient,
			Header:  http.Header{"X-Api-Key": {key}},
			Retries: 2,
		},
		cache: expirable.NewLRU[string, []Article](64, nil, CacheTTL),
	}
}

// WithBaseURL points the client to another endpoint.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// Everything searches all articles.
func (c *Client) Everything(ctx context.Context, q Query) ([]Article, error) {
	if strings.TrimSpace(q.Q) == "" {
		return nil, fmt.Errorf("news search needs keywords")
	}
	v := url.Values{}
	v.Set("q", q.Q)
	v.Set("language", withDefault(q.Language, "en"))
	v.Set("sortBy", withDefault(q.SortBy, "publishedAt"))
	v.Set("pageSize", strconv.Itoa(pageSize(q.PageSize)))
	if !q.From.IsZero() {
		// day granularity keeps the URL, hence the cache key, stable over the day.
		v.Set("from", q.From.UTC().Format("2006-01-02"))
	}
	return c.get(ctx, "/everything", v)
}

// TopHeadlines returns the top headlines of a country and category.
func (c *Client) TopHeadlines(ctx context.Context, h Headlines) ([]Article, error) {
	v := url.Values{}
	v.Set("country", withDefault(h.Country, "us"))
	v.Set("category", withDefault(h.Category, "business"))
	v.Set("pageSize", strconv.Itoa(pageSize(h.PageSize)))
	if h.Q != "" {
		v.Set("q", h.Q)
	}
	return c.get(ctx, "/top-headlines", v)
}

type response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

func (c *Client) get(ctx context.Context, path string, v url.Values) ([]Article, error) {
	addr := c.baseURL + path + "?" + v.Encode()
	if articles, ok := c.cache.Get(addr); ok {
		return articles, nil
	}

	var resp response
	if err := c.api.GetJSON(ctx, addr, &resp); err != nil {
		return nil, fmt.Errorf("cannot get news: %w", refine(err))
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("cannot get news: %w", apiError(0, resp.Code, resp.Message))
	}
	articles := clean(resp.Articles)
	c.cache.Add(addr, articles)
	return articles, nil
}

// refine uses the error payload News API sends along with non 200 statuses.
func refine(err error) error {
	var apiErr *webapi.Error
	if !errors.As(err, &apiErr) || len(apiErr.Body) == 0 {
		return err
	}
	var resp response
	if json.Unmarshal(apiErr.Body, &resp) != nil || resp.Code == "" {
		return err
	}
	refined := apiError(apiErr.Status, resp.Code, resp.Message)
	if refined.Kind == webapi.ErrUnavailable {
		refined.Kind = apiErr.Kind
	}
	return refined
}

func apiError(status int, code, message string) *webapi.Error {
	kind := webapi.ErrUnavailable
	switch code {
	case "apiKeyInvalid", "apiKeyMissing", "apiKeyDisabled":
		kind = webapi.ErrInvalidKey
	case "rateLimited", "apiKeyExhausted":
		kind = webapi.ErrRateLimited
	case "sourceDoesNotExist":
		kind = webapi.ErrNotFound
	}
	if message == "" {
		message = code
	}
	return &webapi.Error{Service: "newsapi", Kind: kind, Status: status, Message: message}
}

// clean drops the placeholders News API returns for deleted articles.
func clean(articles []Article) []Article {
	out := articles[:0]
	for _, a := range articles {
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
