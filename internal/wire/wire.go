// Package wire provides dependency injection for the loadmatch application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/loadmatch/internal/adapters/cli"
	"github.com/example/loadmatch/internal/adapters/filesystem"
	"github.com/example/loadmatch/internal/adapters/payload"
	"github.com/example/loadmatch/internal/adapters/sqlite"
	"github.com/example/loadmatch/internal/app"
	"github.com/example/loadmatch/internal/config"
	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/db"
	"github.com/example/loadmatch/internal/logging"
	"github.com/example/loadmatch/internal/ports/primary"
)

// Options are the process-level flags that shape initialization.
type Options struct {
	ConfigPath string // empty means config.DefaultPath()
	Verbose    bool
}

// Container holds the initialized process singletons.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *sql.DB
	Capabilities capability.Set
	Inbound      primary.InboundService
	Intake       primary.IntakeService
}

var (
	opts      Options
	container *Container
	initErr   error
	once      sync.Once
)

// Configure sets the options used by the first call to Get. Later calls
// have no effect once services exist.
func Configure(o Options) {
	opts = o
}

// Get returns the singleton container, initializing it on first use.
func Get() (*Container, error) {
	once.Do(func() {
		container, initErr = build(context.Background(), opts)
	})
	return container, initErr
}

// build initializes all services and their dependencies.
func build(ctx context.Context, o Options) (*Container, error) {
	path := o.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging, o.Verbose)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path, cfg.Database.BusyTimeoutMs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	caps, err := sqlite.LoadCapabilities(ctx, database)
	if err != nil {
		return nil, err
	}
	if missing := caps.Missing(); len(missing) > 0 {
		logger.Debug("optional columns absent", zap.Int("count", len(missing)), zap.Stringers("fields", missing))
	}

	// Secondary adapters
	imports := sqlite.NewImportRepository(database, caps)
	shipments := sqlite.NewShipmentRepository(database, caps)
	tx := sqlite.NewTransactor(database)
	normalizer := payload.NewNormalizer()

	// Core collaborators
	engine := app.NewMatchEngine(
		normalizer,
		app.NewDriverResolver(sqlite.NewDirectoryRepository(database)),
		app.NewRouteResolver(sqlite.NewLocationRepository(database)),
	)
	writer := app.NewShipmentWriter(caps, shipments, imports, logger)

	inbound := app.NewInboundService(imports, shipments, tx, engine, writer, app.NewGroupLocker(), app.InboundOptions{
		QueueDefaultLimit: cfg.Queue.DefaultLimit,
		QueueMaxLimit:     cfg.Queue.MaxLimit,
		BatchCap:          cfg.Processing.BatchCap,
		Workers:           cfg.Processing.Workers,
	}, logger)
	intake := app.NewIntakeService(imports, normalizer, tx, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		DB:           database,
		Capabilities: caps,
		Inbound:      inbound,
		Intake:       intake,
	}, nil
}

// Close flushes the logger and closes the database if they were opened.
func Close() error {
	if container == nil {
		return nil
	}
	// Sync on stderr reports EINVAL on some platforms; it is not actionable.
	_ = container.Logger.Sync()
	return db.Close()
}

// InboundAdapter returns a new InboundAdapter writing to out.
// Each call creates a new adapter (adapters are stateless translators).
func InboundAdapter(out io.Writer, asJSON bool) (*cliadapter.InboundAdapter, error) {
	c, err := Get()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewInboundAdapter(c.Inbound, out, asJSON), nil
}

// IntakeAdapter returns a new IntakeAdapter writing to out.
func IntakeAdapter(out io.Writer) (*cliadapter.IntakeAdapter, error) {
	c, err := Get()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewIntakeAdapter(c.Intake, out, c.Logger), nil
}

// Inbox returns the inbox adapter for dir, falling back to the configured
// inbox directory.
func Inbox(dir string) (*filesystem.InboxAdapter, error) {
	c, err := Get()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = c.Config.Inbox.Dir
	}
	if dir == "" {
		return nil, errors.New("no inbox directory: pass one or set inbox.dir in the config")
	}
	return filesystem.NewInboxAdapter(dir, c.Config.Inbox.Pattern, c.Logger)
}
