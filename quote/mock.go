package quote

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Mock synthesizes plausible quotes without any network access.
//
// The base price of a symbol is derived from a hash of it, and moves by a bounded
// jitter each day, so a symbol gets the same quote all day long.
type Mock struct {
	Now func() time.Time // defaults to time.Now
}

func (m Mock) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m Mock) Quote(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	symbol = folio.NormalizeTicker(symbol)
	now := m.now()
	today := date.Of(now)

	h := fnv.New64a()
	h.Write([]byte(symbol))
	seed := h.Sum64()

	// base price in [20, 520)
	base := 20 + float64(seed%50000)/100
	prev := base * (1 + jitter(seed, today.Add(-1), 0.03))
	price := base * (1 + jitter(seed, today, 0.03))
	open := prev * (1 + jitter(seed^0x9e3779b97f4a7c15, today, 0.01))
	high := max(open, price) * (1 + abs(jitter(seed^0x85ebca6b, today, 0.01)))
	low := min(open, price) * (1 - abs(jitter(seed^0xc2b2ae35, today, 0.01)))

	round := func(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(2) }
	q := Quote{
		Symbol:           symbol,
		Price:            round(price),
		Open:             round(open),
		High:             round(high),
		Low:              round(low),
		PreviousClose:    round(prev),
		Volume:           int64(100_000 + seed%10_000_000),
		LatestTradingDay: today,
		FetchedAt:        now,
		Source:           SourceMock,
	}
	q.Change = q.Price.Sub(q.PreviousClose)
	q.ChangePercent = folio.Percent(q.Change.Div(q.PreviousClose).Mul(decimal.NewFromInt(100)).Round(4).InexactFloat64())
	return q, nil
}

// jitter returns a pseudo random value in [-amplitude, amplitude) fixed for a seed and a day.
func jitter(seed uint64, day date.Date, amplitude float64) float64 {
	r := rand.New(rand.NewPCG(seed, uint64(day.Time().Unix())))
	return (r.Float64()*2 - 1) * amplitude
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
