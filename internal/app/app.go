package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkvault/internal/auth"
	"github.com/MrSnakeDoc/linkvault/internal/config"
	"github.com/MrSnakeDoc/linkvault/internal/events"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
	"github.com/MrSnakeDoc/linkvault/internal/redis"
	"github.com/MrSnakeDoc/linkvault/internal/scheduler"
	sessions "github.com/MrSnakeDoc/linkvault/internal/store/redis"
	sqlstore "github.com/MrSnakeDoc/linkvault/internal/store/sql"
	"github.com/MrSnakeDoc/linkvault/internal/vault"
	"github.com/MrSnakeDoc/linkvault/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       *sqlstore.Store
	redisClient *goredis.Client
	exporter    *events.NATSExporter
	registry    *events.Registry
	importer    *scheduler.Importer
	backup      *scheduler.Backup
}

// New wires every component from the environment. Required dependencies
// (database, Redis when configured) fail fast.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	dialect, err := sqlstore.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("opening database", logger.String("driver", string(dialect)))
	store, err := sqlstore.Open(ctx, sqlstore.Options{Dialect: dialect, DSN: cfg.DBDSN})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   loggerClient,
		store:    store,
		registry: events.NewRegistry(),
	}

	if cfg.SeedDefaults {
		if err := scheduler.NewSeeder(store, loggerClient).Seed(ctx); err != nil {
			a.closeResources()
			return nil, fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	password, err := auth.NewPassword(cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	// Sessions are optional: without Redis only the static token grants admin.
	var sessionStore *sessions.SessionStore
	if cfg.SessionsEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		a.redisClient, err = redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		sessionStore = sessions.NewSessionStore(a.redisClient, cfg.SessionTTL)
		loggerClient.Info("Redis initialized successfully")
	} else {
		loggerClient.Warn("redis not configured, password login disabled")
	}

	var exporter events.Exporter
	if cfg.NATSURL != "" {
		a.exporter, err = events.NewNATSExporter(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			a.closeResources()
			return nil, err
		}
		exporter = a.exporter
		loggerClient.Info("exporting events to NATS",
			logger.String("prefix", cfg.NATSSubjectPrefix))
	}

	broadcaster := events.NewBroadcaster(a.registry, exporter, loggerClient)
	svc := vault.NewService(store, broadcaster, loggerClient)

	var importTrigger chan struct{}
	if cfg.ImportEnabled() {
		importTrigger = make(chan struct{}, 1)
		a.importer = scheduler.NewImporter(scheduler.ImporterOptions{
			BookmarksFile: cfg.ImportFile,
			ServicesFile:  cfg.ImportServicesFile,
			Private:       cfg.ImportPrivate,
			Interval:      cfg.ImportInterval,
		}, svc, loggerClient, importTrigger)
	}

	if cfg.BackupBucket != "" {
		dest, err := scheduler.NewS3Destination(ctx, scheduler.S3Options{
			Bucket:   cfg.BackupBucket,
			Key:      cfg.BackupKey,
			Region:   cfg.BackupRegion,
			Endpoint: cfg.BackupEndpoint,
		})
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("failed to configure backups: %w", err)
		}
		a.backup = scheduler.NewBackup(svc, dest, loggerClient, cfg.BackupInterval)
	}

	// A typed nil *SessionStore must not reach the checker as a non-nil interface.
	var validator auth.SessionValidator
	if sessionStore != nil {
		validator = sessionStore
	}

	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		Vault:             svc,
		Registry:          a.registry,
		Database:          store,
		Checker:           auth.NewSessionChecker(validator, cfg.AdminToken, loggerClient),
		Password:          password,
		SessionTTL:        cfg.SessionTTL,
		SecureCookies:     cfg.SecureCookies,
		StreamKeepAlive:   cfg.StreamKeepAlive,
		StreamMaxDuration: cfg.StreamMaxDuration,
		StreamBuffer:      cfg.StreamBuffer,
		LoginBurst:        cfg.LoginBurst,
		LoginRefillPerMin: cfg.LoginRefillPerMin,
		ImportTrigger:     importTrigger,
	}
	if sessionStore != nil {
		d.Sessions = sessionStore
	}
	if a.exporter != nil {
		d.Exporter = a.exporter.Connected
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

// Run starts background jobs and the HTTP server, then blocks until a
// signal or a server error.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting LinkVault v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("LinkVault %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.closeResources()

	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start homepage importer: %w", err)
		}
		defer a.importer.Stop()
		a.logger.Info("homepage importer started",
			logger.Duration("interval", a.cfg.ImportInterval))
	}

	if a.backup != nil {
		if err := a.backup.Start(ctx); err != nil {
			return fmt.Errorf("failed to start backups: %w", err)
		}
		defer a.backup.Stop()
		a.logger.Info("backups started",
			logger.Duration("interval", a.cfg.BackupInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Open streams never finish on their own; end them before draining.
	n := a.registry.CloseAll()
	a.logger.Info("closed live streams", logger.Int("clients", n))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ LinkVault stopped cleanly")
	return nil
}

func (a *App) closeResources() {
	if a.exporter != nil {
		if err := a.exporter.Close(); err != nil {
			a.logger.Warnf("failed to close NATS: %v", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warnf("failed to close database: %v", err)
		}
	}
}
