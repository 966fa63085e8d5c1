package arena

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/park285/cheese-arena/internal/adapter/arenapresenter"
	"github.com/park285/cheese-arena/internal/config"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/internal/gamemode"
	"github.com/park285/cheese-arena/internal/history"
	"github.com/park285/cheese-arena/internal/matchmaking"
	"github.com/park285/cheese-arena/internal/metrics"
	"github.com/park285/cheese-arena/internal/msgcat"
	"github.com/park285/cheese-arena/internal/notify"
	"github.com/park285/cheese-arena/internal/obslog"
	"github.com/park285/cheese-arena/internal/opponent"
	"github.com/park285/cheese-arena/internal/profilestore"
	"github.com/park285/cheese-arena/internal/rating"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Build wires every component from cfg. Redis and Postgres are optional;
// without them the arena runs on in-memory stores.
func Build(cfg *config.AppConfig, logger *zap.Logger) (*Arena, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = obslog.L()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var rdb *redis.Client
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := parseRedisURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
	}

	var db *sql.DB
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		var err error
		db, err = openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			closeAll(rdb, nil)
			return nil, err
		}
	}

	a, err := build(ctx, cfg, logger, rdb, db)
	if err != nil {
		closeAll(rdb, db)
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, rdb *redis.Client, db *sql.DB) (*Arena, error) {
	if logger == nil {
		logger = obslog.L()
	}

	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	modes, err := loadModes(cfg.ModeCatalogFile)
	if err != nil {
		return nil, err
	}

	catalog, err := loadOpponents(cfg.OpponentCatalogFile)
	if err != nil {
		return nil, err
	}

	difficulty, err := opponent.ParseDifficulty(cfg.DefaultDifficulty)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_DIFFICULTY: %w", err)
	}

	store, kind, err := profilestore.Open(cfg.ProfileStore, rdb, db)
	if err != nil {
		return nil, err
	}
	if pg, ok := store.(*profilestore.Postgres); ok {
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	var histStore history.Store = history.NewMemory(0)
	if db != nil {
		pg := history.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		histStore = pg
	}

	bus := events.NewBus()
	formatter := arenapresenter.NewFormatter(msgs)
	m := metrics.New(nil)
	bus.Subscribe(m.Handle)

	ratingCfg := rating.DefaultConfig()
	ratingCfg.PlayerName = cfg.PlayerName
	ratingCfg.KFactor = cfg.RatingKFactor
	engine, err := rating.NewEngine(ratingCfg, store, bus, logger.Named("rating"))
	if err != nil {
		return nil, err
	}
	if err := engine.Load(ctx); err != nil {
		logger.Warn("rating_load_failed", zap.String("store", kind), zap.Error(err))
	}

	mm, err := matchmaking.New(matchmaking.Config{
		SearchTimeMin:       cfg.SearchTimeMin,
		SearchTimeMax:       cfg.SearchTimeMax,
		MaxRatingDifference: cfg.MaxRatingDiff,
	}, catalog, engine, bus,
		matchmaking.WithMessages(msgs),
		matchmaking.WithLogger(logger.Named("matchmaking")),
	)
	if err != nil {
		return nil, err
	}

	var notifier *notify.Notifier
	if strings.TrimSpace(cfg.WebhookURL) != "" {
		client := notify.NewClient(cfg.WebhookURL, notify.WithTimeout(cfg.WebhookTimeout))
		notifier = notify.NewNotifier(client, formatter.Event, logger.Named("notify"))
		bus.Subscribe(notifier.Handle)
	}

	a := &Arena{
		cfg:        cfg,
		logger:     logger,
		bus:        bus,
		modes:      modes,
		opponents:  catalog,
		msgs:       msgs,
		formatter:  formatter,
		rating:     engine,
		matchmaker: mm,
		journal:    history.NewJournal(histStore, ratingCfg.PlayerName),
		metrics:    m,
		notifier:   notifier,
		rdb:        rdb,
		db:         db,
		difficulty: difficulty,
		tick:       cfg.ClockTick,
	}
	bus.Subscribe(a.onEvent)

	logger.Info("arena_ready",
		zap.String("profile_store", kind),
		zap.Bool("postgres_history", db != nil),
		zap.Bool("webhook", notifier != nil),
		zap.Int("modes", len(modes.All())),
		zap.Int("opponents", catalog.Len()),
	)
	return a, nil
}

func loadModes(path string) (*gamemode.Modes, error) {
	if strings.TrimSpace(path) == "" {
		return gamemode.Default()
	}
	modes, err := gamemode.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load modes: %w", err)
	}
	return modes, nil
}

func loadOpponents(path string) (*opponent.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return opponent.Default(nil)
	}
	c, err := opponent.LoadFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("load opponents: %w", err)
	}
	return c, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func closeAll(rdb *redis.Client, db *sql.DB) {
	if rdb != nil {
		_ = rdb.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}

// parseRedisURL accepts redis:// and rediss:// URLs; rediss enables TLS.
func parseRedisURL(raw string) (*redis.Options, error) {
	return redis.ParseURL(strings.TrimSpace(raw))
}
