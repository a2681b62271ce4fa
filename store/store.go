// Package store persists the portfolio of each user.
//
// Three backends implement Store: File keeps JSON documents in a directory,
// SQLite a local database, and Firestore the cloud document store shared with
// the web and mobile apps.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/folio"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrPermission    = errors.New("permission denied")
)

// Store persists users, their positions, goals, settings and snapshots.
type Store interface {
	// EnsureUser creates the user record if missing, and records the visit.
	EnsureUser(ctx context.Context, userID string) (User, error)

	LoadStocks(ctx context.Context, userID string) ([]folio.Stock, error)
	SaveStock(ctx context.Context, userID string, s folio.Stock) error
	DeleteStock(ctx context.Context, userID, id string) error
	// ReplaceStocks replaces every position of the user at once.
	ReplaceStocks(ctx context.Context, userID string, stocks []folio.Stock) error

	LoadGoals(ctx context.Context, userID string) ([]folio.Goal, error)
	SaveGoal(ctx context.Context, userID string, g folio.Goal) error
	DeleteGoal(ctx context.Context, userID, id string) error

	// LoadSettings returns the default settings when the user saved none.
	LoadSettings(ctx context.Context, userID string) (folio.Settings, error)
	SaveSettings(ctx context.Context, userID string, s folio.Settings) error

	SaveSnapshot(ctx context.Context, s Snapshot) error
	// LoadSnapshots returns the latest 'limit' snapshots, most recent first. limit <= 0 returns all.
	LoadSnapshots(ctx context.Context, userID string, limit int) ([]Snapshot, error)

	Close() error
}

// User is the owner of a portfolio.
type User struct {
	ID        string    `json:"id" firestore:"id"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	LastSeen  time.Time `json:"lastSeen" firestore:"lastSeen"`
}

// Snapshot records the valuation of a portfolio at some point in time.
type Snapshot struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	TakenAt         time.Time       `json:"takenAt"`
	Currency        string          `json:"currency"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	TotalCost       decimal.Decimal `json:"totalCost"`
	TotalProfitLoss decimal.Decimal `json:"totalProfitLoss"`
	Positions       []Position      `json:"positions"`
}

// Position is one line of a Snapshot.
type Position struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
}

// NewSnapshot captures the current valuation of 'p'.
func NewSnapshot(userID string, p *folio.Portfolio, at time.Time) Snapshot {
	sum := p.Summary()
	snap := Snapshot{
		ID:              uuid.NewString(),
		UserID:          userID,
		TakenAt:         at.UTC(),
		Currency:        p.Currency(),
		TotalValue:      sum.TotalValue.Decimal(),
		TotalCost:       sum.TotalCost.Decimal(),
		TotalProfitLoss: sum.TotalProfitLoss.Decimal(),
	}
	for _, s := range p.Stocks() {
		snap.Positions = append(snap.Positions, Position{
			Ticker:   s.Ticker,
			Quantity: s.Quantity.Decimal(),
			Price:    s.CurrentPrice.Decimal(),
			Value:    folio.MarketValue(s).Decimal(),
		})
	}
	return snap
}

// Load reads the whole portfolio of a user: settings, positions and goals.
func Load(ctx context.Context, st Store, userID string) (*folio.Portfolio, folio.Settings, error) {
	settings, err := st.LoadSettings(ctx, userID)
	if err != nil {
		return nil, settings, err
	}
	stocks, err := st.LoadStocks(ctx, userID)
	if err != nil {
		return nil, settings, err
	}
	goals, err := st.LoadGoals(ctx, userID)
	if err != nil {
		return nil, settings, err
	}

	p := folio.NewPortfolio(settings.Currency)
	for _, s := range stocks {
		if _, err := p.Add(s); err != nil {
			return nil, settings, fmt.Errorf("stored position %s: %w", s.Ticker, err)
		}
	}
	for _, g := range goals {
		if _, err := p.AddGoal(g); err != nil {
			return nil, settings, fmt.Errorf("stored goal %q: %w", g.Title, err)
		}
	}
	return p, settings, nil
}
