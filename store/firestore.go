package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collections, shared with the web and mobile apps.
const (
	usersCollection      = "users"
	portfoliosCollection = "portfolios"
	stocksCollection     = "stocks"
	goalsCollection      = "goals"
	settingsCollection   = "userSettings"
)

// Firestore stores the portfolios in Cloud Firestore.
//
// Stocks, goals and snapshots are top-level documents carrying a userId field;
// users and userSettings documents are keyed by the user id.
type Firestore struct {
	client *firestore.Client
}

// OpenFirestore connects to the Firestore database of 'projectID'.
// When FIRESTORE_EMULATOR_HOST is set the client connects to the emulator.
func OpenFirestore(ctx context.Context, projectID string, opts ...option.ClientOption) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to firestore: %w", firestoreError(err))
	}
	return &Firestore{client: client}, nil
}

func (f *Firestore) Close() error { return f.client.Close() }

// firestoreError maps gRPC status codes to store errors.
func firestoreError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", ErrPermission, err)
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}

type stockDoc struct {
	UserID       string    `firestore:"userId"`
	Ticker       string    `firestore:"ticker"`
	BuyPrice     float64   `firestore:"buyPrice"`
	CurrentPrice float64   `firestore:"currentPrice"`
	Quantity     float64   `firestore:"quantity"`
	Currency     string    `firestore:"currency,omitempty"`
	LastUpdated  time.Time `firestore:"lastUpdated"`
}

func toStockDoc(userID string, s folio.Stock) stockDoc {
	return stockDoc{
		UserID:       userID,
		Ticker:       s.Ticker,
		BuyPrice:     s.BuyPrice.AsFloat(),
		CurrentPrice: s.CurrentPrice.AsFloat(),
		Quantity:     s.Quantity.AsFloat(),
		Currency:     s.Currency(),
		LastUpdated:  s.LastUpdated,
	}
}

func (d stockDoc) stock(id string) folio.Stock {
	return folio.Stock{
		ID:           id,
		Ticker:       d.Ticker,
		BuyPrice:     folio.M(d.BuyPrice, d.Currency),
		CurrentPrice: folio.M(d.CurrentPrice, d.Currency),
		Quantity:     folio.Q(d.Quantity),
		LastUpdated:  d.LastUpdated,
	}
}

type goalDoc struct {
	UserID              string    `firestore:"userId"`
	Title               string    `firestore:"title"`
	Type                string    `firestore:"type"`
	TargetAmount        float64   `firestore:"targetAmount"`
	CurrentAmount       float64   `firestore:"currentAmount"`
	TargetDate          string    `firestore:"targetDate"`
	MonthlyContribution float64   `firestore:"monthlyContribution"`
	Category            string    `firestore:"category"`
	IsActive            bool      `firestore:"isActive"`
	Currency            string    `firestore:"currency,omitempty"`
	CreatedAt           time.Time `firestore:"createdAt"`
}

func toGoalDoc(userID string, g folio.Goal) goalDoc {
	return goalDoc{
		UserID:              userID,
		Title:               g.Title,
		Type:                string(g.Type),
		TargetAmount:        g.TargetAmount.AsFloat(),
		CurrentAmount:       g.CurrentAmount.AsFloat(),
		TargetDate:          g.TargetDate.String(),
		MonthlyContribution: g.MonthlyContribution.AsFloat(),
		Category:            g.Category,
		IsActive:            g.IsActive,
		Currency:            g.Currency(),
		CreatedAt:           g.CreatedAt,
	}
}

func (d goalDoc) goal(id string) (folio.Goal, error) {
	g := folio.Goal{
		ID:                  id,
		Title:               d.Title,
		Type:                folio.GoalType(d.Type),
		TargetAmount:        folio.M(d.TargetAmount, d.Currency),
		CurrentAmount:       folio.M(d.CurrentAmount, d.Currency),
		MonthlyContribution: folio.M(d.MonthlyContribution, d.Currency),
		Category:            d.Category,
		IsActive:            d.IsActive,
		CreatedAt:           d.CreatedAt,
	}
	if d.TargetDate != "" {
		var err error
		if g.TargetDate, err = date.Parse(d.TargetDate); err != nil {
			return g, fmt.Errorf("goal %s: %w", id, err)
		}
	}
	return g, nil
}

type settingsDoc struct {
	UserID          string `firestore:"userId"`
	Currency        string `firestore:"currency"`
	RefreshInterval int    `firestore:"refreshInterval"`
	MockData        bool   `firestore:"mockData"`
	NewsCountry     string `firestore:"newsCountry"`
	NewsCategory    string `firestore:"newsCategory"`
	SortBy          string `firestore:"sortBy"`
	SortDesc        bool   `firestore:"sortDesc"`
}

type positionDoc struct {
	Ticker   string  `firestore:"ticker"`
	Quantity float64 `firestore:"quantity"`
	Price    float64 `firestore:"price"`
	Value    float64 `firestore:"value"`
}

type snapshotDoc struct {
	UserID          string        `firestore:"userId"`
	TakenAt         time.Time     `firestore:"takenAt"`
	Currency        string        `firestore:"currency"`
	TotalValue      float64       `firestore:"totalValue"`
	TotalCost       float64       `firestore:"totalCost"`
	TotalProfitLoss float64       `firestore:"totalProfitLoss"`
	Positions       []positionDoc `firestore:"positions"`
}

func (f *Firestore) EnsureUser(ctx context.Context, userID string) (User, error) {
	ref := f.client.Collection(usersCollection).Doc(userID)
	var user User
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now().UTC().Truncate(time.Microsecond) // firestore precision
		user = User{ID: userID, CreatedAt: now}
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if err := snap.DataTo(&user); err != nil {
				return err
			}
		}
		user.LastSeen = now
		return tx.Set(ref, user)
	})
	if err != nil {
		return User{}, fmt.Errorf("ensure user: %w", firestoreError(err))
	}
	return user, nil
}

func (f *Firestore) LoadStocks(ctx context.Context, userID string) ([]folio.Stock, error) {
	docs, err := f.client.Collection(stocksCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", firestoreError(err))
	}
	stocks := make([]folio.Stock, 0, len(docs))
	for _, doc := range docs {
		var d stockDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("stock %s: %w", doc.Ref.ID, err)
		}
		stocks = append(stocks, d.stock(doc.Ref.ID))
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].Ticker < stocks[j].Ticker })
	return stocks, nil
}

func (f *Firestore) SaveStock(ctx context.Context, userID string, s folio.Stock) error {
	if _, err := f.client.Collection(stocksCollection).Doc(s.ID).Set(ctx, toStockDoc(userID, s)); err != nil {
		return fmt.Errorf("save stock %s: %w", s.Ticker, firestoreError(err))
	}
	return nil
}

// deleteOwned deletes a document of 'collection' if it belongs to the user.
func (f *Firestore) deleteOwned(ctx context.Context, collection, userID, id string) error {
	ref := f.client.Collection(collection).Doc(id)
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if owner, _ := snap.DataAt("userId"); owner != userID {
			return status.Errorf(codes.NotFound, "%s/%s not owned by %s", collection, id, userID)
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, firestoreError(err))
	}
	return nil
}

func (f *Firestore) DeleteStock(ctx context.Context, userID, id string) error {
	return f.deleteOwned(ctx, stocksCollection, userID, id)
}

func (f *Firestore) ReplaceStocks(ctx context.Context, userID string, stocks []folio.Stock) error {
	col := f.client.Collection(stocksCollection)
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(col.Where("userId", "==", userID)).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range existing {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		for _, s := range stocks {
			if err := tx.Set(col.Doc(s.ID), toStockDoc(userID, s)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace stocks: %w", firestoreError(err))
	}
	return nil
}

func (f *Firestore) LoadGoals(ctx context.Context, userID string) ([]folio.Goal, error) {
	docs, err := f.client.Collection(goalsCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", firestoreError(err))
	}
	goals := make([]folio.Goal, 0, len(docs))
	for _, doc := range docs {
		var d goalDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("goal %s: %w", doc.Ref.ID, err)
		}
		g, err := d.goal(doc.Ref.ID)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].CreatedAt.Before(goals[j].CreatedAt) })
	return goals, nil
}

func (f *Firestore) SaveGoal(ctx context.Context, userID string, g folio.Goal) error {
	if _, err := f.client.Collection(goalsCollection).Doc(g.ID).Set(ctx, toGoalDoc(userID, g)); err != nil {
		return fmt.Errorf("save goal %q: %w", g.Title, firestoreError(err))
	}
	return nil
}

func (f *Firestore) DeleteGoal(ctx context.Context, userID, id string) error {
	return f.deleteOwned(ctx, goalsCollection, userID, id)
}

func (f *Firestore) LoadSettings(ctx context.Context, userID string) (folio.Settings, error) {
	snap, err := f.client.Collection(settingsCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return folio.DefaultSettings(), nil
	}
	if err != nil {
		return folio.DefaultSettings(), fmt.Errorf("get settings: %w", firestoreError(err))
	}
	var d settingsDoc
	if err := snap.DataTo(&d); err != nil {
		return folio.DefaultSettings(), fmt.Errorf("corrupted settings: %w", err)
	}
	return folio.Settings{
		Currency:        d.Currency,
		RefreshInterval: d.RefreshInterval,
		MockData:        d.MockData,
		NewsCountry:     d.NewsCountry,
		NewsCategory:    d.NewsCategory,
		SortBy:          folio.SortKey(d.SortBy),
		SortDesc:        d.SortDesc,
	}.WithDefaults(), nil
}

func (f *Firestore) SaveSettings(ctx context.Context, userID string, s folio.Settings) error {
	d := settingsDoc{
		UserID:          userID,
		Currency:        s.Currency,
		RefreshInterval: s.RefreshInterval,
		MockData:        s.MockData,
		NewsCountry:     s.NewsCountry,
		NewsCategory:    s.NewsCategory,
		SortBy:          string(s.SortBy),
		SortDesc:        s.SortDesc,
	}
	if _, err := f.client.Collection(settingsCollection).Doc(userID).Set(ctx, d); err != nil {
		return fmt.Errorf("save settings: %w", firestoreError(err))
	}
	return nil
}

func (f *Firestore) SaveSnapshot(ctx context.Context, s Snapshot) error {
	d := snapshotDoc{
		UserID:          s.UserID,
		TakenAt:         s.TakenAt,
		Currency:        s.Currency,
		TotalValue:      s.TotalValue.InexactFloat64(),
		TotalCost:       s.TotalCost.InexactFloat64(),
		TotalProfitLoss: s.TotalProfitLoss.InexactFloat64(),
	}
	for _, p := range s.Positions {
		d.Positions = append(d.Positions, positionDoc{
			Ticker:   p.Ticker,
			Quantity: p.Quantity.InexactFloat64(),
			Price:    p.Price.InexactFloat64(),
			Value:    p.Value.InexactFloat64(),
		})
	}
	if _, err := f.client.Collection(portfoliosCollection).Doc(s.ID).Set(ctx, d); err != nil {
		return fmt.Errorf("save snapshot: %w", firestoreError(err))
	}
	return nil
}

func (f *Firestore) LoadSnapshots(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	// sorted here rather than in the query, which would need a composite index.
	docs, err := f.client.Collection(portfoliosCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", firestoreError(err))
	}
	snaps := make([]Snapshot, 0, len(docs))
	for _, doc := range docs {
		var d snapshotDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", doc.Ref.ID, err)
		}
		snap := Snapshot{
			ID:              doc.Ref.ID,
			UserID:          d.UserID,
			TakenAt:         d.TakenAt,
			Currency:        d.Currency,
			TotalValue:      decimal.NewFromFloat(d.TotalValue),
			TotalCost:       decimal.NewFromFloat(d.TotalCost),
			TotalProfitLoss: decimal.NewFromFloat(d.TotalProfitLoss),
		}
		for _, p := range d.Positions {
			snap.Positions = append(snap.Positions, Position{
				Ticker:   p.Ticker,
				Quantity: decimal.NewFromFloat(p.Quantity),
				Price:    decimal.NewFromFloat(p.Price),
				Value:    decimal.NewFromFloat(p.Value),
			})
		}
		snaps = append(snaps, snap)
	}
	return latest(snaps, limit), nil
}
