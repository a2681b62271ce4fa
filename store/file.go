package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/etnz/folio"
)

// DocumentQuota is the maximum size of a File store document.
const DocumentQuota = 5 << 20

// Documents of a File store. Each one maps a user id to that user's data.
const (
	usersDoc      = "users.json"
	stocksDoc     = "stocks.json"
	goalsDoc      = "goals.json"
	settingsFile  = "settings.json"
	portfoliosDoc = "portfolios.json"
)

// File stores JSON documents in a directory.
// It is safe for concurrent use within one process.
type File struct {
	dir string
	mu  sync.Mutex
}

// OpenFile opens, and creates if needed, a File store in 'dir'.
func OpenFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fileError(err)
	}
	return &File{dir: dir}, nil
}

func (f *File) Close() error { return nil }

// fileError maps file system errors to store errors.
func fileError(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	return err
}

// read decodes a whole document, an absent document is empty.
func read[T any](f *File, name string) (map[string]T, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]T), nil
	}
	if err != nil {
		return nil, fileError(err)
	}
	doc := make(map[string]T)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupted %s: %w", name, err)
	}
	return doc, nil
}

// write atomically replaces a whole document.
func write[T any](f *File, name string, doc map[string]T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if len(data) > DocumentQuota {
		return fmt.Errorf("%s is %d bytes: %w", name, len(data), ErrQuotaExceeded)
	}
	tmp, err := os.CreateTemp(f.dir, name+".*")
	if err != nil {
		return fileError(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fileError(err)
	}
	if err := tmp.Close(); err != nil {
		return fileError(err)
	}
	return fileError(os.Rename(tmp.Name(), filepath.Join(f.dir, name)))
}

// update applies 'fn' to the user's entry of a document and writes it back.
func update[T any](f *File, name, userID string, fn func(T) (T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := read[T](f, name)
	if err != nil {
		return err
	}
	v, err := fn(doc[userID])
	if err != nil {
		return err
	}
	doc[userID] = v
	return write(f, name, doc)
}

func get[T any](f *File, name, userID string) (T, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := read[T](f, name)
	if err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := doc[userID]
	return v, ok, nil
}

func (f *File) EnsureUser(ctx context.Context, userID string) (User, error) {
	var user User
	err := update(f, usersDoc, userID, func(u User) (User, error) {
		now := time.Now().UTC()
		if u.ID == "" {
			u = User{ID: userID, CreatedAt: now}
		}
		u.LastSeen = now
		user = u
		return u, nil
	})
	return user, err
}

func (f *File) LoadStocks(ctx context.Context, userID string) ([]folio.Stock, error) {
	stocks, _, err := get[[]folio.Stock](f, stocksDoc, userID)
	return stocks, err
}

func (f *File) SaveStock(ctx context.Context, userID string, s folio.Stock) error {
	return update(f, stocksDoc, userID, func(stocks []folio.Stock) ([]folio.Stock, error) {
		for i := range stocks {
			if stocks[i].ID == s.ID {
				stocks[i] = s
				return stocks, nil
			}
		}
		return append(stocks, s), nil
	})
}

func (f *File) DeleteStock(ctx context.Context, userID, id string) error {
	return update(f, stocksDoc, userID, func(stocks []folio.Stock) ([]folio.Stock, error) {
		for i := range stocks {
			if stocks[i].ID == id {
				return append(stocks[:i], stocks[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("stock %s: %w", id, ErrNotFound)
	})
}

func (f *File) ReplaceStocks(ctx context.Context, userID string, stocks []folio.Stock) error {
	return update(f, stocksDoc, userID, func([]folio.Stock) ([]folio.Stock, error) {
		if stocks == nil {
			return []folio.Stock{}, nil
		}
		return stocks, nil
	})
}

func (f *File) LoadGoals(ctx context.Context, userID string) ([]folio.Goal, error) {
	goals, _, err := get[[]folio.Goal](f, goalsDoc, userID)
	return goals, err
}

func (f *File) SaveGoal(ctx context.Context, userID string, g folio.Goal) error {
	return update(f, goalsDoc, userID, func(goals []folio.Goal) ([]folio.Goal, error) {
		for i := range goals {
			if goals[i].ID == g.ID {
				goals[i] = g
				return goals, nil
			}
		}
		return append(goals, g), nil
	})
}

func (f *File) DeleteGoal(ctx context.Context, userID, id string) error {
	return update(f, goalsDoc, userID, func(goals []folio.Goal) ([]folio.Goal, error) {
		for i := range goals {
			if goals[i].ID == id {
				return append(goals[:i], goals[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	})
}

func (f *File) LoadSettings(ctx context.Context, userID string) (folio.Settings, error) {
	s, ok, err := get[folio.Settings](f, settingsFile, userID)
	if err != nil || !ok {
		return folio.DefaultSettings(), err
	}
	return s.WithDefaults(), nil
}

func (f *File) SaveSettings(ctx context.Context, userID string, s folio.Settings) error {
	return update(f, settingsFile, userID, func(folio.Settings) (folio.Settings, error) { return s, nil })
}

func (f *File) SaveSnapshot(ctx context.Context, s Snapshot) error {
	return update(f, portfoliosDoc, s.UserID, func(snaps []Snapshot) ([]Snapshot, error) {
		return append(snaps, s), nil
	})
}

func (f *File) LoadSnapshots(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	snaps, _, err := get[[]Snapshot](f, portfoliosDoc, userID)
	if err != nil {
		return nil, err
	}
	return latest(snaps, limit), nil
}

// latest sorts snapshots most recent first and keeps 'limit' of them.
func latest(snaps []Snapshot, limit int) []Snapshot {
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].TakenAt.After(snaps[j].TakenAt) })
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps
}
