// Package cmd implements the pft commands to manage a stock portfolio.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/quote"
	"github.com/etnz/folio/store"
	"github.com/etnz/folio/webapi"
	"github.com/google/subcommands"
	"google.golang.org/api/option"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	Verbose    = flag.Bool("v", false, "print diagnostic logs to stderr")
	Raw        = flag.Bool("raw", false, "print markdown as is, without rendering it for the terminal")
	configFile = flag.String("config", DefaultConfigFile(), "path to the YAML config file")

	flags    Config // global flags overriding the config file and environment
	mockFlag optionalBool
)

func init() {
	flag.StringVar(&flags.Store, "store", "", "storage backend: file, sqlite or firestore (default file)")
	flag.StringVar(&flags.User, "user", "", "id of the user owning the portfolio (default local)")
	flag.StringVar(&flags.DataDir, "data", "", "data directory of the file and sqlite stores")
	flag.StringVar(&flags.CacheDir, "cache", "", "directory of the HTTP response cache")
	flag.StringVar(&flags.AlphaVantageKey, "alphavantage-key", "", "Alpha Vantage API key")
	flag.StringVar(&flags.NewsKey, "news-key", "", "News API key")
	flag.StringVar(&flags.FirebaseProject, "firebase-project", "", "Firebase project id, for the firestore store")
	flag.StringVar(&flags.Credentials, "credentials", "", "Google credentials file, for the firestore store")
	flag.BoolVar(&flags.Strict, "strict", false, "fail instead of using mock quotes when the quote API is unavailable")
	flag.Var(&mockFlag, "mock", "use mock quotes and news instead of the APIs")
}

// optionalBool is a boolean flag that knows whether it was set.
type optionalBool struct{ v *bool }

func (b *optionalBool) String() string {
	if b == nil || b.v == nil {
		return ""
	}
	return strconv.FormatBool(*b.v)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.v = &v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

type group struct {
	name     string
	commands []subcommands.Command
}

func groups() []group {
	return []group{
		{"positions", []subcommands.Command{&addCmd{}, &editCmd{}, &removeCmd{}, &listCmd{}, &summaryCmd{}}},
		{"market", []subcommands.Command{&quoteCmd{}, &refreshCmd{}, &watchCmd{}, &newsCmd{}}},
		{"goals", []subcommands.Command{&goalCmd{}}},
		{"data", []subcommands.Command{&exportCmd{}, &importCmd{}, &settingsCmd{}}},
		{"help", []subcommands.Command{&assistCmd{}, &topicCmd{}}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range groups() {
		for _, cmd := range g.commands {
			c.Register(cmd, g.name)
		}
	}
}

// Commands returns every command registered by Register.
func Commands() []subcommands.Command {
	var all []subcommands.Command
	for _, g := range groups() {
		all = append(all, g.commands...)
	}
	return all
}

// LoadConfig reads the config file, then applies the environment and the global flags.
func LoadConfig() (Config, error) {
	file, err := ReadConfig(*configFile)
	if err != nil {
		return Config{}, err
	}
	f := flags
	f.Mock = mockFlag.v
	return file.merge(os.Getenv, f)
}

// app is the state shared by the commands: the user's portfolio and where it is stored.
type app struct {
	cfg       Config
	store     store.Store
	portfolio *folio.Portfolio
	settings  folio.Settings
	now       func() time.Time
}

// open loads the portfolio of the configured user.
func open(ctx context.Context) (*app, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if env(os.Getenv, envSupabase) != "" {
		log.Printf("Supabase is not a supported backend, VITE_SUPABASE_* variables are ignored")
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := st.EnsureUser(ctx, cfg.User); err != nil {
		st.Close()
		return nil, err
	}
	p, settings, err := store.Load(ctx, st, cfg.User)
	if err != nil {
		st.Close()
		return nil, err
	}
	log.Printf("loaded %d positions and %d goals of %q from the %s store", len(p.Stocks()), len(p.Goals()), cfg.User, cfg.Store)
	return &app{cfg: cfg, store: st, portfolio: p, settings: settings, now: time.Now}, nil
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Store {
	case StoreSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return store.OpenSQLite(filepath.Join(cfg.DataDir, "folio.db"))
	case StoreFirestore:
		var opts []option.ClientOption
		if cfg.Credentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
		}
		return store.OpenFirestore(ctx, cfg.FirebaseProject, opts...)
	default:
		return store.OpenFile(cfg.DataDir)
	}
}

func (a *app) Close() error { return a.store.Close() }

func (a *app) user() string { return a.cfg.User }

// mock reports whether market data is simulated.
func (a *app) mock() bool {
	if a.cfg.Mock != nil {
		return *a.cfg.Mock
	}
	return a.settings.MockData
}

func (a *app) cacheDir() string {
	if a.cfg.CacheDir != "" {
		return a.cfg.CacheDir
	}
	return webapi.DefaultCacheDir()
}

// quotes returns the quote service for the configured mode.
func (a *app) quotes() *quote.Service {
	if a.mock() {
		return quote.NewMockService()
	}
	httpClient := webapi.NewCachingClient(filepath.Join(a.cacheDir(), "quotes"), time.Minute, quote.IsCacheable)
	return quote.NewService(quote.NewAlphaVantage(a.cfg.AlphaVantageKey, httpClient), quote.Options{MockFallback: !a.cfg.Strict})
}

// feed returns the news feed for the configured mode.
func (a *app) feed() news.Feed {
	if a.mock() {
		return news.Mock{}
	}
	httpClient := webapi.NewCachingClient(filepath.Join(a.cacheDir(), "news"), news.CacheTTL, nil)
	return news.NewClient(a.cfg.NewsKey, httpClient)
}
