package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/folio/webapi"
)

func fakeNewsAPI(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("X-Api-Key") {
		case "":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":"error","code":"apiKeyMissing","message":"Your API key is missing."}`))
			return
		case "exhausted":
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"status":"error","code":"rateLimited","message":"You have made too many requests recently."}`))
			return
		}
		switch r.URL.Path {
		case "/everything":
			if r.URL.Query().Get("q") == "" {
				t.Errorf("/everything without q")
			}
			w.Write([]byte(`{"status":"ok","totalResults":2,"articles":[
				{"source":{"id":null,"name":"Reuters"},"author":"Jane","title":"Apple beats estimates","url":"https://example.com/a","publishedAt":"2025-08-14T13:00:00Z"},
				{"source":{"id":null,"name":"[Removed]"},"title":"[Removed]","url":"https://removed.com","publishedAt":"1970-01-01T00:00:00Z"}]}`))
		case "/top-headlines":
			if got := r.URL.Query().Get("category"); got != "technology" {
				t.Errorf("category = %q, want technology", got)
			}
			w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[{"source":{"id":"bbc","name":"BBC"},"title":"Chips rally","url":"https://example.com/b","publishedAt":"2025-08-14T09:00:00Z"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Everything(t *testing.T) {
	var hits atomic.Int32
	srv := fakeNewsAPI(t, &hits)
	c := NewClient("key", nil).WithBaseURL(srv.URL)

	articles, err := ForTickers(context.Background(), c, []string{"aapl", "msft"}, 10)
	if err != nil {
		t.Fatalf("ForTickers() error = %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Apple beats estimates" || articles[0].Source.Name != "Reuters" {
		t.Errorf("ForTickers() = %+v, want the removed article dropped", articles)
	}
	if articles[0].PublishedAt.Day() != 14 {
		t.Errorf("PublishedAt = %v", articles[0].PublishedAt)
	}

	ForTickers(context.Background(), c, []string{"aapl", "msft"}, 10)
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (second call cached)", hits.Load())
	}
}

func TestClient_TopHeadlines(t *testing.T) {
	var hits atomic.Int32
	srv := fakeNewsAPI(t, &hits)
	c := NewClient("key", nil).WithBaseURL(srv.URL)

	articles, err := c.TopHeadlines(context.Background(), Headlines{Category: "technology"})
	if err != nil {
		t.Fatalf("TopHeadlines() error = %v", err)
	}
	if len(articles) != 1 || articles[0].Source.ID != "bbc" {
		t.Errorf("TopHeadlines() = %+v", articles)
	}
}

func TestClient_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := fakeNewsAPI(t, &hits)

	_, err := NewClient("", nil).WithBaseURL(srv.URL).TopHeadlines(context.Background(), Headlines{Category: "technology"})
	var apiErr *webapi.Error
	if !errors.Is(err, webapi.ErrInvalidKey) || !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "missing") {
		t.Errorf("TopHeadlines() without key error = %v, want ErrInvalidKey", err)
	}

	_, err = NewClient("exhausted", nil).WithBaseURL(srv.URL).Everything(context.Background(), Query{Q: "AAPL"})
	if !errors.Is(err, webapi.ErrRateLimited) {
		t.Errorf("Everything() over quota error = %v, want ErrRateLimited", err)
	}

	if _, err := NewClient("key", nil).Everything(context.Background(), Query{}); err == nil {
		t.Error("Everything() without keywords should fail")
	}
}

func TestTickerQuery(t *testing.T) {
	if got, want := TickerQuery([]string{"aapl", " ", "BRK.B"}), `"AAPL" OR "BRK.B"`; got != want {
		t.Errorf("TickerQuery() = %q, want %q", got, want)
	}
}

func TestMock(t *testing.T) {
	m := Mock{Now: func() time.Time { return time.Date(2025, time.August, 15, 10, 30, 0, 0, time.UTC) }}
	articles, err := ForTickers(context.Background(), m, []string{"AAPL", "MSFT"}, 4)
	if err != nil {
		t.Fatalf("ForTickers() error = %v", err)
	}
	if len(articles) != 4 {
		t.Fatalf("ForTickers() = %d articles, want 4", len(articles))
	}
	if !strings.Contains(articles[0].Title, "AAPL") || !strings.Contains(articles[1].Title, "MSFT") {
		t.Errorf("titles = %q, %q", articles[0].Title, articles[1].Title)
	}
	if !articles[0].PublishedAt.After(articles[1].PublishedAt) {
		t.Error("mock articles should be newest first")
	}

	top, _ := m.TopHeadlines(context.Background(), Headlines{Category: "technology", PageSize: 2})
	if len(top) != 2 {
		t.Errorf("TopHeadlines() = %d articles, want 2", len(top))
	}
}
