package quote

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/webapi"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// countingProvider counts network requests per symbol.
type countingProvider struct {
	hits  atomic.Int32
	delay time.Duration
	err   error
}

func (p *countingProvider) Quote(ctx context.Context, symbol string) (Quote, error) {
	p.hits.Add(1)
	time.Sleep(p.delay)
	if p.err != nil {
		return Quote{}, p.err
	}
	return Quote{Symbol: symbol, Price: decimal.NewFromInt(100), FetchedAt: time.Now(), Source: SourceAlphaVantage}, nil
}

func TestService_SameTickerHitsNetworkOnce(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"cached", Options{}},
		{"cache expired within min interval", Options{TTL: -1, MinInterval: time.Hour}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &countingProvider{}
			s := NewService(p, tt.opts)
			for i := 0; i < 2; i++ {
				if _, err := s.Quote(context.Background(), "AAPL"); err != nil {
					t.Fatalf("Quote() error = %v", err)
				}
			}
			if got := p.hits.Load(); got != 1 {
				t.Errorf("network hits = %d, want 1", got)
			}
		})
	}
}

func TestService_ConcurrentRequestsShareOneFetch(t *testing.T) {
	p := &countingProvider{delay: 50 * time.Millisecond}
	s := NewService(p, Options{TTL: -1, MinInterval: time.Hour})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Quote(context.Background(), "msft"); err != nil {
				t.Errorf("Quote() error = %v", err)
			}
		}()
	}
	wg.Wait()
	if got := p.hits.Load(); got != 1 {
		t.Errorf("network hits = %d, want 1", got)
	}
}

func TestService_MinIntervalElapsed(t *testing.T) {
	p := &countingProvider{}
	s := NewService(p, Options{TTL: -1, MinInterval: 10 * time.Second})
	now := time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Quote(context.Background(), "AAPL")
	now = now.Add(5 * time.Second)
	s.Quote(context.Background(), "AAPL")
	if got := p.hits.Load(); got != 1 {
		t.Errorf("network hits after 5s = %d, want 1", got)
	}
	now = now.Add(10 * time.Second)
	s.Quote(context.Background(), "AAPL")
	if got := p.hits.Load(); got != 2 {
		t.Errorf("network hits after 15s = %d, want 2", got)
	}
}

func TestService_RateLimit(t *testing.T) {
	t.Run("mock fallback", func(t *testing.T) {
		p := &countingProvider{}
		s := NewService(p, Options{RequestsPerMinute: 1, MockFallback: true})
		first, _ := s.Quote(context.Background(), "AAPL")
		second, err := s.Quote(context.Background(), "MSFT")
		if err != nil {
			t.Fatalf("Quote() error = %v", err)
		}
		if first.IsMock() || !second.IsMock() {
			t.Errorf("sources = %s, %s, want alphavantage then mock", first.Source, second.Source)
		}
		if got := p.hits.Load(); got != 1 {
			t.Errorf("network hits = %d, want 1", got)
		}
	})
	t.Run("wait", func(t *testing.T) {
		p := &countingProvider{}
		s := NewService(p, Options{RequestsPerMinute: 1})
		s.Quote(context.Background(), "AAPL")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := s.Quote(ctx, "MSFT"); err == nil {
			t.Error("Quote() over budget should wait beyond the deadline and fail")
		}
		if got := p.hits.Load(); got != 1 {
			t.Errorf("network hits = %d, want 1", got)
		}
	})
}

func TestService_ErrorFallback(t *testing.T) {
	for _, kind := range []error{webapi.ErrRateLimited, webapi.ErrInvalidKey, webapi.ErrNotFound} {
		p := &countingProvider{err: &webapi.Error{Service: "test", Kind: kind}}

		withFallback := NewService(p, Options{MockFallback: true})
		q, err := withFallback.Quote(context.Background(), "AAPL")
		wantMock := kind != webapi.ErrNotFound
		if wantMock && (err != nil || !q.IsMock()) {
			t.Errorf("%v with fallback: Quote() = %v, %v, want a mock quote", kind, q.Source, err)
		}
		if !wantMock && !errors.Is(err, kind) {
			t.Errorf("%v with fallback: Quote() error = %v, want %v", kind, err, kind)
		}

		without := NewService(p, Options{})
		if _, err := without.Quote(context.Background(), "AAPL"); !errors.Is(err, kind) {
			t.Errorf("%v without fallback: Quote() error = %v", kind, err)
		}
	}
}

func TestService_QuotesAndRefresh(t *testing.T) {
	provider := ProviderFunc(func(ctx context.Context, symbol string) (Quote, error) {
		if symbol == "GONE" {
			return Quote{}, fmt.Errorf("cannot get quote for %s: %w", symbol, webapi.ErrNotFound)
		}
		return Mock{}.Quote(ctx, symbol)
	})
	s := NewService(provider, Options{RequestsPerMinute: 100})

	p := folio.NewPortfolio("USD")
	for _, ticker := range []string{"AAPL", "MSFT", "GONE"} {
		if _, err := p.Add(folio.NewStock(ticker, folio.M(1, "USD"), folio.M(1, "USD"), folio.Q(1))); err != nil {
			t.Fatal(err)
		}
	}
	res, err := s.Refresh(context.Background(), p)
	quotes := res.Quotes
	if !errors.Is(err, webapi.ErrNotFound) {
		t.Errorf("Refresh() error = %v, want ErrNotFound for GONE", err)
	}
	if len(quotes) != 2 {
		t.Errorf("Refresh() = %d quotes, want 2", len(quotes))
	}
	aapl, _ := p.Find("AAPL")
	if !aapl.CurrentPrice.Decimal().Equal(quotes["AAPL"].Price) {
		t.Errorf("AAPL price = %v, want %v", aapl.CurrentPrice, quotes["AAPL"].Price)
	}
	gone, _ := p.Find("GONE")
	if !gone.CurrentPrice.Equal(folio.M(1, "USD")) {
		t.Errorf("GONE price changed to %v", gone.CurrentPrice)
	}
}

func TestService_RefreshOverBudgetKeepsPrices(t *testing.T) {
	p := &countingProvider{}
	s := NewService(p, Options{RequestsPerMinute: 5, MockFallback: true})

	pf := folio.NewPortfolio("USD")
	tickers := []string{"A", "B", "C", "D", "E", "F", "G"}
	for _, ticker := range tickers {
		if _, err := pf.Add(folio.NewStock(ticker, folio.M(1, "USD"), folio.M(1, "USD"), folio.Q(1))); err != nil {
			t.Fatal(err)
		}
	}
	res, err := s.Refresh(context.Background(), pf)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := p.hits.Load(); got != 5 {
		t.Errorf("network hits = %d, want 5", got)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("Refresh() skipped %v, want 2 tickers", res.Skipped)
	}
	for _, ticker := range tickers {
		st, _ := pf.Find(ticker)
		want := folio.M(100, "USD")
		if slices.Contains(res.Skipped, ticker) {
			want = folio.M(1, "USD")
		}
		if !st.CurrentPrice.Equal(want) {
			t.Errorf("%s price = %v, want %v", ticker, st.CurrentPrice, want)
		}
	}

	// mock substitutes are not cached, a live quote is fetched once the budget allows
	s.limiter.SetLimit(rate.Inf)
	q, err := s.Quote(context.Background(), res.Skipped[0])
	if err != nil || q.IsMock() {
		t.Errorf("Quote(%s) = %v, %v, want a live quote", res.Skipped[0], q.Source, err)
	}
}

func TestService_MockServiceRefreshApplies(t *testing.T) {
	s := NewMockService()
	pf := folio.NewPortfolio("USD")
	if _, err := pf.Add(folio.NewStock("AAPL", folio.M(1, "USD"), folio.M(1, "USD"), folio.Q(1))); err != nil {
		t.Fatal(err)
	}
	res, err := s.Refresh(context.Background(), pf)
	if err != nil || len(res.Skipped) != 0 {
		t.Fatalf("Refresh() = %v, %v, want every mock quote applied", res.Skipped, err)
	}
	st, _ := pf.Find("AAPL")
	if !st.CurrentPrice.Decimal().Equal(res.Quotes["AAPL"].Price) {
		t.Errorf("AAPL price = %v, want %v", st.CurrentPrice, res.Quotes["AAPL"].Price)
	}
}

func TestService_JoinedCallerKeepsItsContext(t *testing.T) {
	p := &countingProvider{delay: 100 * time.Millisecond}
	s := NewService(p, Options{})

	first, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Quote(first, "AAPL")
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)

	var second error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, second = s.Quote(context.Background(), "AAPL")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("canceled caller error = %v, want context.Canceled", err)
	}
	wg.Wait()
	if second != nil {
		t.Errorf("joined caller error = %v, want nil", second)
	}
	if got := p.hits.Load(); got != 1 {
		t.Errorf("network hits = %d, want 1", got)
	}
}
