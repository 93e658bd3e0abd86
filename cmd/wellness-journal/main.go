// Command wellness-journal runs the wellness journal API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-wellness-journal/internal/aggregate"
	"github.com/justestif/go-wellness-journal/internal/artifacts"
	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/db"
	"github.com/justestif/go-wellness-journal/internal/journal"
	"github.com/justestif/go-wellness-journal/internal/llm"
	"github.com/justestif/go-wellness-journal/internal/logger"
	"github.com/justestif/go-wellness-journal/internal/querycache"
	"github.com/justestif/go-wellness-journal/internal/redisbus"
	"github.com/justestif/go-wellness-journal/internal/rollover"
	"github.com/justestif/go-wellness-journal/internal/store"
	"github.com/justestif/go-wellness-journal/internal/web"
)

type Globals struct {
	TimeZone    string `name:"timezone" help:"Reference timezone for day boundaries." default:"${timezone}" env:"JOURNAL_TIMEZONE"`
	Store       string `help:"Storage backend." enum:"memory,postgres" default:"memory" env:"JOURNAL_STORE"`
	DatabaseURL string `name:"database-url" help:"PostgreSQL connection string." env:"DATABASE_URL"`
	LogMode     string `name:"log-mode" help:"Log mode (development, production, silent)." default:"development" env:"LOG_MODE"`
}

var cli struct {
	Globals

	Serve    serveCmd    `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate  migrateCmd  `cmd:"" help:"Apply the PostgreSQL schema."`
	Snapshot snapshotCmd `cmd:"" help:"Print the aggregated snapshot of a day."`
}

// app holds the components shared by every command.
type app struct {
	log      *logger.Logger
	resolver *calendar.Resolver
	store    store.Store
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.log.Sync()
}

func (g *Globals) open(ctx context.Context) (*app, error) {
	log, err := logger.New(g.LogMode)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	resolver, err := calendar.NewResolver(g.TimeZone)
	if err != nil {
		return nil, err
	}

	a := &app{log: log, resolver: resolver}
	switch g.Store {
	case "postgres":
		database, err := g.connect(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, database.Close)
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
		a.store = store.NewPostgresStore(database, resolver)
	default:
		a.store = store.NewMemoryStore(resolver)
	}
	return a, nil
}

func (g *Globals) connect(ctx context.Context) (*db.DB, error) {
	if g.DatabaseURL == "" {
		return nil, errors.New("please set DATABASE_URL for the postgres store")
	}
	database, err := db.New(ctx, g.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return database, nil
}

type serveCmd struct {
	Addr             string        `help:"Listen address." default:"${addr}" env:"JOURNAL_ADDR"`
	UserID           int64         `name:"user-id" help:"Demo user every request acts as." default:"1" env:"JOURNAL_USER_ID"`
	RedisAddr        string        `name:"redis-addr" help:"Redis address for cross-instance invalidation." env:"REDIS_ADDR"`
	RedisChannel     string        `name:"redis-channel" help:"Redis invalidation channel." default:"${channel}" env:"REDIS_CHANNEL"`
	RolloverInterval time.Duration `name:"rollover-interval" help:"How often to check for a new day." default:"${interval}" env:"JOURNAL_ROLLOVER_INTERVAL"`
}

func (c *serveCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var completer artifacts.Completer
	llmCfg, err := llm.LoadConfig()
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		a.log.Warn("OPENAI_API_KEY not set; summaries and generation are disabled")
	case err != nil:
		return err
	default:
		completer = llm.NewClient(llmCfg)
	}

	cache := querycache.New()
	generator := artifacts.NewGenerator(a.store, aggregate.New(a.store), completer, a.resolver.Location())

	var (
		opts        []journal.Option
		invalidator rollover.Invalidator = cache
	)
	if c.RedisAddr != "" {
		bus, err := redisbus.New(ctx, c.RedisAddr, c.RedisChannel, a.log)
		if err != nil {
			return err
		}
		defer bus.Close()
		if err := bus.Subscribe(ctx, cache.Apply); err != nil {
			return err
		}
		opts = append(opts, journal.WithPublisher(bus))
		invalidator = rollover.Fanout{cache, bus}
		a.log.Info("Cache invalidation shared over Redis", "addr", c.RedisAddr, "channel", c.RedisChannel)
	}

	svc := journal.New(a.store, a.resolver, cache, generator, a.log, opts...)
	monitor := rollover.New(a.resolver.Today, a.store, invalidator, querycache.DateScopedKeys, a.log,
		rollover.WithInterval(c.RolloverInterval),
		rollover.WithResetHook(svc.ResetDayState),
	)

	server, err := web.NewServer(web.ServerConfig{
		Addr:    c.Addr,
		UserID:  c.UserID,
		Journal: svc,
		Monitor: monitor,
		Log:     a.log,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return monitor.Run(gctx) })
	group.Go(func() error { return server.Run(gctx) })
	return group.Wait()
}

type migrateCmd struct{}

func (c *migrateCmd) Run(g *Globals) error {
	ctx := context.Background()
	database, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	fmt.Println("Schema applied.")
	return nil
}

type snapshotCmd struct {
	Date   string `arg:"" optional:"" help:"Day to aggregate (YYYY-MM-DD). Defaults to today."`
	UserID int64  `name:"user-id" help:"User to read." default:"1" env:"JOURNAL_USER_ID"`
}

func (c *snapshotCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	date := c.Date
	if date == "" {
		date = a.resolver.Today()
	}
	if !calendar.ValidDate(date) {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	snap, err := aggregate.New(a.store).BuildDailySnapshot(ctx, c.UserID, date)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("wellness-journal"),
		kong.Description("Personal daily wellness journal API."),
		kong.UsageOnError(),
		kong.Vars{
			"timezone": calendar.DefaultTimeZone,
			"addr":     web.DefaultAddr,
			"channel":  redisbus.DefaultChannel,
			"interval": rollover.DefaultInterval.String(),
		},
	)

	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
