package nakama

import (
	"context"
	"database/sql"
	"os"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"domino/internal/app"
	"domino/internal/bot"
	"domino/internal/config"
	"domino/internal/ports"
	"domino/internal/ports/memstore"
	"domino/internal/ports/natsbus"
	"domino/internal/ports/pgarchive"
	"domino/internal/ports/redisstore"
)

const (
	configPath        = "data/domino.yaml"
	botIdentitiesPath = "data/bot_identities.json"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("Could not load %s, using defaults: %v", configPath, err)
	}
	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("Could not load bot identities: %v", err)
	}
	bot.ProvisionBots(ctx, nk, logger)

	svc, conns := newService(ctx, logger, config.GetGameConfig())
	if err := initializer.RegisterShutdown(func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) {
		conns.Close(logger)
	}); err != nil {
		conns.Close(logger)
		return err
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameDomino, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(svc), nil
	}); err != nil {
		return err
	}

	logger.Info("Domino Go module loaded.")
	return nil
}

// backends holds what newService wired so the connections can be released on shutdown.
type backends struct {
	history ports.HistoryStore
	redis   *redis.Client
	nats    *nats.Conn
	pg      *pgxpool.Pool
}

// Close drains the event bus and closes the store and archive connections.
func (b *backends) Close(logger runtime.Logger) {
	if b.nats != nil {
		if err := b.nats.Drain(); err != nil {
			logger.Warn("Event bus drain failed: %v", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logger.Warn("History store close failed: %v", err)
		}
	}
	if b.pg != nil {
		b.pg.Close()
	}
}

// newService builds the app service with whichever outer adapters are configured.
// An adapter that cannot connect is skipped so matches still run, and history
// falls back to process memory.
func newService(ctx context.Context, logger runtime.Logger, cfg *config.GameConfig) (*app.Service, *backends) {
	zl := zerolog.New(os.Stdout).With().Timestamp().Str("module", "domino").Logger()
	conns := &backends{}

	if addr := cfg.History.RedisAddr; addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.History.RedisPassword,
			DB:       cfg.History.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("History store %s unreachable: %v", addr, err)
			_ = rdb.Close()
		} else {
			conns.redis = rdb
			conns.history = redisstore.New(rdb, cfg.History.TTL)
			logger.Info("History store: redis %s", addr)
		}
	}
	if conns.history == nil {
		conns.history = memstore.New()
		logger.Info("History store: memory")
	}
	opts := []app.Option{app.WithLogger(zl), app.WithHistoryStore(conns.history)}

	if url := cfg.Events.NATSURL; url != "" {
		publisher, nc, err := natsbus.Connect(url, cfg.Events.MaxReconnects, cfg.Events.ReconnectWait)
		if err != nil {
			logger.Warn("Event bus %s unreachable: %v", url, err)
		} else {
			conns.nats = nc
			opts = append(opts, app.WithPublisher(publisher))
			logger.Info("Event bus: nats %s", url)
		}
	}

	if dsn := cfg.Archive.DSN; dsn != "" {
		archive, pool, err := pgarchive.Open(ctx, dsn)
		if err != nil {
			logger.Warn("Match archive unavailable: %v", err)
		} else {
			conns.pg = pool
			opts = append(opts, app.WithArchive(archive))
			logger.Info("Match archive: postgres")
		}
	}

	return app.NewService(opts...), conns
}
