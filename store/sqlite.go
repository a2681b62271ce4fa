package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLite stores the portfolios in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens, and migrates if needed, the database at 'path'.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", sqliteError(err))
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		last_seen DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stocks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		ticker TEXT NOT NULL,
		buy_price TEXT NOT NULL,
		current_price TEXT NOT NULL,
		quantity TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT '',
		last_updated DATETIME
	);
	CREATE INDEX IF NOT EXISTS stocks_user ON stocks(user_id);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		target_amount TEXT NOT NULL,
		current_amount TEXT NOT NULL,
		target_date TEXT NOT NULL DEFAULT '',
		monthly_contribution TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		currency TEXT NOT NULL DEFAULT '',
		created_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS goals_user ON goals(user_id);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_id TEXT PRIMARY KEY,
		settings TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS portfolios (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		taken_at DATETIME NOT NULL,
		snapshot TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS portfolios_user ON portfolios(user_id, taken_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", sqliteError(err))
	}
	return nil
}

// sqliteError maps driver errors to store errors.
func sqliteError(err error) error {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Code {
	case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly, sqlite3.ErrCantOpen:
		return fmt.Errorf("%w: %v", ErrPermission, err)
	case sqlite3.ErrFull, sqlite3.ErrTooBig:
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}

func (s *SQLite) EnsureUser(ctx context.Context, userID string) (User, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users(id, created_at, last_seen) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`, userID, now, now)
	if err != nil {
		return User{}, fmt.Errorf("upsert user: %w", sqliteError(err))
	}
	u := User{ID: userID}
	err = s.db.QueryRowContext(ctx, `SELECT created_at, last_seen FROM users WHERE id = ?`, userID).
		Scan(&u.CreatedAt, &u.LastSeen)
	if err != nil {
		return User{}, fmt.Errorf("fetch user: %w", sqliteError(err))
	}
	return u, nil
}

func (s *SQLite) LoadStocks(ctx context.Context, userID string) ([]folio.Stock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, buy_price, current_price, quantity, currency, last_updated
		FROM stocks WHERE user_id = ? ORDER BY rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", sqliteError(err))
	}
	defer rows.Close()

	var stocks []folio.Stock
	for rows.Next() {
		var (
			st                folio.Stock
			buy, current, qty decimal.Decimal
			currency          string
			lastUpdated       sql.NullTime
		)
		if err := rows.Scan(&st.ID, &st.Ticker, &buy, &current, &qty, &currency, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		st.BuyPrice = folio.M(buy, currency)
		st.CurrentPrice = folio.M(current, currency)
		st.Quantity = folio.Q(qty)
		st.LastUpdated = lastUpdated.Time
		stocks = append(stocks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stocks: %w", err)
	}
	return stocks, nil
}

func nullTime(t time.Time) sql.NullTime { return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()} }

func (s *SQLite) SaveStock(ctx context.Context, userID string, st folio.Stock) error {
	return saveStock(ctx, s.db, userID, st)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveStock(ctx context.Context, db execer, userID string, st folio.Stock) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO stocks(id, user_id, ticker, buy_price, current_price, quantity, currency, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ticker = excluded.ticker,
			buy_price = excluded.buy_price,
			current_price = excluded.current_price,
			quantity = excluded.quantity,
			currency = excluded.currency,
			last_updated = excluded.last_updated
		WHERE stocks.user_id = excluded.user_id`,
		st.ID, userID, st.Ticker, st.BuyPrice.Decimal().String(), st.CurrentPrice.Decimal().String(),
		st.Quantity.Decimal().String(), st.Currency(), nullTime(st.LastUpdated))
	if err != nil {
		return fmt.Errorf("save stock %s: %w", st.Ticker, sqliteError(err))
	}
	return nil
}

// deleteRow deletes a row of 'table' owned by the user.
func (s *SQLite) deleteRow(ctx context.Context, table, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, sqliteError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", strings.TrimSuffix(table, "s"), id, ErrNotFound)
	}
	return nil
}

func (s *SQLite) DeleteStock(ctx context.Context, userID, id string) error {
	return s.deleteRow(ctx, "stocks", userID, id)
}

func (s *SQLite) ReplaceStocks(ctx context.Context, userID string, stocks []folio.Stock) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", sqliteError(err))
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM stocks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear stocks: %w", sqliteError(err))
	}
	for _, st := range stocks {
		if err := saveStock(ctx, tx, userID, st); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", sqliteError(err))
	}
	return nil
}

func (s *SQLite) LoadGoals(ctx context.Context, userID string) ([]folio.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, type, target_amount, current_amount, target_date, monthly_contribution,
		       category, is_active, currency, created_at
		FROM goals WHERE user_id = ? ORDER BY rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", sqliteError(err))
	}
	defer rows.Close()

	var goals []folio.Goal
	for rows.Next() {
		var (
			g                        folio.Goal
			target, current, monthly decimal.Decimal
			targetDate, currency     string
			createdAt                sql.NullTime
		)
		if err := rows.Scan(&g.ID, &g.Title, &g.Type, &target, &current, &targetDate, &monthly,
			&g.Category, &g.IsActive, &currency, &createdAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if targetDate != "" {
			if g.TargetDate, err = date.Parse(targetDate); err != nil {
				return nil, fmt.Errorf("goal %s: %w", g.ID, err)
			}
		}
		g.TargetAmount = folio.M(target, currency)
		g.CurrentAmount = folio.M(current, currency)
		g.MonthlyContribution = folio.M(monthly, currency)
		g.CreatedAt = createdAt.Time
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

func (s *SQLite) SaveGoal(ctx context.Context, userID string, g folio.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals(id, user_id, title, type, target_amount, current_amount, target_date,
		                  monthly_contribution, category, is_active, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			type = excluded.type,
			target_amount = excluded.target_amount,
			current_amount = excluded.current_amount,
			target_date = excluded.target_date,
			monthly_contribution = excluded.monthly_contribution,
			category = excluded.category,
			is_active = excluded.is_active,
			currency = excluded.currency
		WHERE goals.user_id = excluded.user_id`,
		g.ID, userID, g.Title, string(g.Type), g.TargetAmount.Decimal().String(), g.CurrentAmount.Decimal().String(),
		g.TargetDate.String(), g.MonthlyContribution.Decimal().String(), g.Category, g.IsActive, g.Currency(),
		nullTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("save goal %q: %w", g.Title, sqliteError(err))
	}
	return nil
}

func (s *SQLite) DeleteGoal(ctx context.Context, userID, id string) error {
	return s.deleteRow(ctx, "goals", userID, id)
}

func (s *SQLite) LoadSettings(ctx context.Context, userID string) (folio.Settings, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT settings FROM user_settings WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return folio.DefaultSettings(), nil
	}
	if err != nil {
		return folio.DefaultSettings(), fmt.Errorf("query settings: %w", sqliteError(err))
	}
	var settings folio.Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return folio.DefaultSettings(), fmt.Errorf("corrupted settings: %w", err)
	}
	return settings.WithDefaults(), nil
}

func (s *SQLite) SaveSettings(ctx context.Context, userID string, settings folio.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_settings(user_id, settings) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET settings = excluded.settings`, userID, string(data))
	if err != nil {
		return fmt.Errorf("save settings: %w", sqliteError(err))
	}
	return nil
}

func (s *SQLite) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO portfolios(id, user_id, taken_at, snapshot) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.UserID, snap.TakenAt.UTC(), string(data))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", sqliteError(err))
	}
	return nil
}

func (s *SQLite) LoadSnapshots(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1 // no LIMIT in sqlite
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot FROM portfolios WHERE user_id = ? ORDER BY taken_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", sqliteError(err))
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var snap Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("corrupted snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}
