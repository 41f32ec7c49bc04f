package cmd

import (
	"context"
	"fmt"
	"net/http"

	"backoffice/api"
	"backoffice/api/health"
	apisale "backoffice/api/sale"
	saleapp "backoffice/application/sale"
	"backoffice/config"
	"backoffice/infrastructure/auth"
	"backoffice/infrastructure/notify"
	"backoffice/infrastructure/persistence/gormdb"
	"backoffice/infrastructure/persistence/retry"
	"backoffice/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppBuilder wires the application from configuration.
type AppBuilder struct {
	cfg         *config.Config
	db          *gorm.DB
	withHTTP    bool
	withRelay   bool
	skipLogInit bool
}

func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg, withHTTP: true, withRelay: cfg.Notify.Relay.Enabled}
}

// WithDB reuses an open connection instead of dialing one from config.
func (b *AppBuilder) WithDB(db *gorm.DB) *AppBuilder {
	b.db = db
	return b
}

// WithoutHTTP builds a relay-only App.
func (b *AppBuilder) WithoutHTTP() *AppBuilder {
	b.withHTTP = false
	return b
}

func (b *AppBuilder) WithRelay(enabled bool) *AppBuilder {
	b.withRelay = enabled
	return b
}

// SkipLoggerInit keeps whatever global logger is installed, for tests.
func (b *AppBuilder) SkipLoggerInit() *AppBuilder {
	b.skipLogInit = true
	return b
}

// Build connects the database and assembles every component. On error the
// resources opened so far are released.
func (b *AppBuilder) Build() (*App, error) {
	if !b.skipLogInit {
		if err := logger.Init(&b.cfg.Log, b.cfg.App.Env); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env))

	built := &App{config: b.cfg}
	if err := b.assemble(built); err != nil {
		if cerr := built.Close(); cerr != nil {
			logger.Warn("Failed to release partially built application", zap.Error(cerr))
		}
		return nil, err
	}
	return built, nil
}

func (b *AppBuilder) assemble(app *App) error {
	db, err := b.openDatabase(app)
	if err != nil {
		return err
	}
	app.db = db

	if b.withHTTP {
		if err := b.buildHTTP(app, db); err != nil {
			return err
		}
	}
	if b.withRelay {
		if err := b.buildRelay(app, db); err != nil {
			return err
		}
	}
	return nil
}

func (b *AppBuilder) openDatabase(app *App) (*gorm.DB, error) {
	db := b.db
	if db == nil {
		var err error
		db, err = gormdb.FromAppConfig(b.cfg).Connect()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.closers = append(app.closers, func() error { return gormdb.Close(db) })
	}

	if err := gormdb.Ping(context.Background(), db); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if b.cfg.Database.AutoMigrate {
		if err := gormdb.AutoMigrate(context.Background(), db); err != nil {
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
	}
	return db, nil
}

func (b *AppBuilder) buildHTTP(app *App, db *gorm.DB) error {
	sinks, err := notify.NewSinks(&b.cfg.Notify)
	if err != nil {
		return fmt.Errorf("failed to build notify sinks: %w", err)
	}
	dispatcher := notify.NewDispatcher(b.cfg.Notify.DispatchTimeout, sinks...)
	app.closers = append(app.closers, dispatcher.Close)
	logger.Info("Notification sinks registered", zap.Strings("sinks", dispatcher.Sinks()))

	uowFactory := gormdb.NewUnitOfWorkFactory(db, retry.FromAppConfig(b.cfg), dispatcher)
	if b.cfg.Notify.SinkEnabled("outbox") {
		uowFactory.WithOutbox(gormdb.NewOutboxRepository(db))
		logger.Info("Transactional outbox enabled")
	}

	service := saleapp.NewWorkflowService(
		gormdb.NewSaleRepository(db),
		gormdb.NewOrderRepository(db),
		gormdb.NewCatalogRepository(db),
		gormdb.NewSaleQueryService(db),
		uowFactory,
		dispatcher,
	)

	resolver, err := auth.NewJWTResolver(auth.OptionsFromConfig(&b.cfg.Auth))
	if err != nil {
		return fmt.Errorf("failed to build token resolver: %w", err)
	}

	probes := map[string]health.Probe{
		"database": func(ctx context.Context) error { return gormdb.Ping(ctx, db) },
	}
	for _, s := range sinks {
		if c, ok := s.(notify.Checker); ok {
			probes["notify_"+s.Name()] = c.Check
		}
	}

	router := api.NewRouter(b.cfg, resolver, health.NewController(b.cfg, probes), apisale.NewController(service))
	router.SetupRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}
	return nil
}

func (b *AppBuilder) buildRelay(app *App, db *gorm.DB) error {
	relayCfg := b.cfg.Notify.Relay
	sink, err := notify.NewSink(relayCfg.Sink, &b.cfg.Notify)
	if err != nil {
		return fmt.Errorf("failed to build relay sink: %w", err)
	}
	if closer, ok := sink.(interface{ Close() error }); ok {
		app.closers = append(app.closers, closer.Close)
	}

	relay, err := gormdb.NewOutboxRelay(
		gormdb.NewOutboxRepository(db),
		sink,
		relayCfg.PollInterval,
		relayCfg.BatchSize,
		relayCfg.MaxRetries,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox relay: %w", err)
	}
	app.relay = relay
	return nil
}
