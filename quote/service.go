package quote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/webapi"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Options tune a Service. Zero fields take their default.
type Options struct {
	TTL               time.Duration // how long a quote is served from memory, default 60s, negative disables
	MinInterval       time.Duration // minimum delay between two network requests for one symbol, default 12s
	RequestsPerMinute int           // global request budget, default 5 (Alpha Vantage free tier)
	CacheSize         int           // default 256 symbols
	Concurrency       int           // parallel fetches in Quotes, default 4
	MockFallback      bool          // substitute mock quotes when rate limited or unauthorized
}

func (o Options) withDefaults() Options {
	if o.TTL == 0 {
		o.TTL = 60 * time.Second
	}
	if o.MinInterval == 0 {
		o.MinInterval = 12 * time.Second
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = 5
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 256
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	return o
}

// Service serves quotes from a Provider.
//
// Quotes are cached for a TTL, concurrent requests for one symbol share a single
// network request, a symbol is not requested again within MinInterval, and the
// global request rate is limited. Service is safe for concurrent use.
type Service struct {
	provider Provider
	mock     Provider
	opts     Options

	cache   *expirable.LRU[string, Quote]   // nil when disabled
	recent  *expirable.LRU[string, fetched] // last network quote per symbol, nil when MinInterval is disabled
	group   singleflight.Group
	limiter *rate.Limiter
	live    bool // false when the provider itself is the mock
	now     func() time.Time
}

type fetched struct {
	quote Quote
	at    time.Time
}

// NewService returns a Service over 'provider'.
func NewService(provider Provider, opts Options) *Service {
	opts = opts.withDefaults()
	s := &Service{
		provider: provider,
		mock:     Mock{},
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute),
		now:      time.Now,
	}
	_, isMock := provider.(Mock)
	s.live = !isMock
	if opts.TTL > 0 {
		s.cache = expirable.NewLRU[string, Quote](opts.CacheSize, nil, opts.TTL)
	}
	if opts.MinInterval > 0 {
		s.recent = expirable.NewLRU[string, fetched](opts.CacheSize, nil, opts.MinInterval)
	}
	return s
}

// NewMockService returns a Service that only serves mock quotes.
func NewMockService() *Service {
	return NewService(Mock{}, Options{RequestsPerMinute: 1 << 20, MinInterval: -1})
}

// Quote returns the latest quote of 'symbol'.
func (s *Service) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = folio.NormalizeTicker(symbol)
	if symbol == "" {
		return Quote{}, &folio.ValidationError{Record: "quote", Fields: map[string]string{"symbol": "is required"}}
	}
	if s.cache != nil {
		if q, ok := s.cache.Get(symbol); ok {
			return q, nil
		}
	}
	// the shared fetch outlives any single caller, each caller stops waiting on its own context.
	ch := s.group.DoChan(symbol, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), symbol)
	})
	select {
	case <-ctx.Done():
		return Quote{}, fmt.Errorf("cannot get quote for %s: %w", symbol, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Quote{}, res.Err
		}
		return res.Val.(Quote), nil
	}
}

// fetch gets a quote from the provider, within the interval and rate limits.
func (s *Service) fetch(ctx context.Context, symbol string) (Quote, error) {
	if s.recent != nil {
		if last, ok := s.recent.Get(symbol); ok && s.now().Sub(last.at) < s.opts.MinInterval {
			log.Printf("quote %s requested again within %v, reusing last value", symbol, s.opts.MinInterval)
			return last.quote, nil
		}
	}

	if s.opts.MockFallback {
		if !s.limiter.Allow() {
			log.Printf("quote %s: request budget exhausted, using mock data", symbol)
			return s.mock.Quote(ctx, symbol)
		}
	} else if err := s.limiter.Wait(ctx); err != nil {
		return Quote{}, fmt.Errorf("cannot get quote for %s: %w", symbol, err)
	}

	q, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		if s.opts.MockFallback && (errors.Is(err, webapi.ErrRateLimited) || errors.Is(err, webapi.ErrInvalidKey)) {
			log.Printf("%v, using mock data", err)
			return s.mock.Quote(ctx, symbol)
		}
		return Quote{}, err
	}

	if s.recent != nil {
		s.recent.Add(symbol, fetched{quote: q, at: s.now()})
	}
	if s.cache != nil {
		s.cache.Add(symbol, q)
	}
	return q, nil
}

// Quotes fetches the quotes of several symbols in parallel.
//
// It returns the quotes obtained, and an error joining every failure.
func (s *Service) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	var (
		mu     sync.Mutex
		quotes = make(map[string]Quote, len(symbols))
		errs   []error
	)
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for _, symbol := range symbols {
		g.Go(func() error {
			q, err := s.Quote(ctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			quotes[q.Symbol] = q
			return nil
		})
	}
	g.Wait()
	return quotes, errors.Join(errs...)
}

// RefreshResult is the outcome of a Refresh.
type RefreshResult struct {
	Quotes  map[string]Quote // every quote obtained, by symbol
	Skipped []string         // sorted symbols that only got a mock quote, their price is unchanged
}

// Refresh updates the current price of every position of 'p'.
//
// Positions whose quote failed keep their price; the error reports them.
// Mock quotes substituted for live ones are not applied, unless the service only serves mocks.
func (s *Service) Refresh(ctx context.Context, p *folio.Portfolio) (RefreshResult, error) {
	quotes, err := s.Quotes(ctx, p.Tickers())
	res := RefreshResult{Quotes: quotes}
	for ticker, q := range quotes {
		if s.live && q.IsMock() {
			res.Skipped = append(res.Skipped, ticker)
			continue
		}
		if uerr := p.UpdatePrice(ticker, folio.M(q.Price, p.Currency()), q.FetchedAt); uerr != nil {
			err = errors.Join(err, fmt.Errorf("cannot update %s: %w", ticker, uerr))
		}
	}
	slices.Sort(res.Skipped)
	return res, err
}
