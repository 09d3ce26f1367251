package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensesync/internal/amqp"
	"expensesync/internal/backend"
	"expensesync/internal/config"
	"expensesync/internal/images"
	"expensesync/internal/log"
	"expensesync/internal/otel"
	"expensesync/internal/remote"
	"expensesync/internal/repository"
	"expensesync/internal/services"
	"expensesync/internal/storage"
	"expensesync/internal/watch"
)

// App is the fully wired object graph used by both binaries.
type App struct {
	Config     *config.Config
	Store      *storage.SQLiteRepository
	Hub        *watch.Hub
	Images     *images.Processor
	Categories *repository.CategoryRepository
	Expenses   *repository.ExpenseRepository
	Sync       *services.SyncService
	Service    *services.ExpenseService

	// AMQP is nil when AMQP_URL is unset or the broker was unreachable.
	AMQP *amqp.Client

	shutdownTracing func(context.Context) error
}

// AppOption adjusts how NewApp wires dependencies.
type AppOption func(*appOptions)

type appOptions struct {
	backend     *backend.Result
	repoOptions []repository.Option
	serviceName string
}

// WithBackend skips the backend factory and uses the given remote and object
// store.
func WithBackend(rem remote.Service, objects remote.ObjectStore) AppOption {
	return func(o *appOptions) { o.backend = &backend.Result{Remote: rem, Objects: objects} }
}

// WithRepositoryOptions forwards options to both repositories.
func WithRepositoryOptions(opts ...repository.Option) AppOption {
	return func(o *appOptions) { o.repoOptions = append(o.repoOptions, opts...) }
}

// WithServiceName sets the tracing service name.
func WithServiceName(name string) AppOption {
	return func(o *appOptions) { o.serviceName = name }
}

// NewApp opens the local store and wires repositories, services and the
// optional AMQP publisher from cfg. Default categories are seeded into an
// empty store on every start.
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppOption) (*App, error) {
	o := appOptions{serviceName: "expensesync"}
	for _, opt := range opts {
		opt(&o)
	}

	shutdownTracing, err := otel.Setup(ctx, otel.Config{
		ServiceName: o.serviceName,
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	res := o.backend
	if res == nil {
		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("backend config: %w", err)
		}
		res, err = backend.NewFactory(slog.Default()).CreateBackend(ctx, bcfg)
		if err != nil {
			return nil, fmt.Errorf("create backend: %w", err)
		}
	}

	processor, err := images.NewProcessor(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("create image processor: %w", err)
	}

	store, err := InitSQLite(cfg.SQLiteDBPath)
	if err != nil {
		return nil, err
	}

	hub := watch.NewHub()
	app := &App{
		Config:          cfg,
		Store:           store,
		Hub:             hub,
		Images:          processor,
		Categories:      repository.NewCategoryRepository(store, res.Remote, hub, o.repoOptions...),
		Expenses:        repository.NewExpenseRepository(store, res.Remote, res.Objects, processor, hub, o.repoOptions...),
		shutdownTracing: shutdownTracing,
	}
	app.Sync = services.NewSyncService(app.Categories, app.Expenses)

	if _, err := app.Categories.CreateDefaultCategories(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed default categories: %w", err)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync requests",
				log.FieldComponent, log.ComponentAMQP,
				log.FieldError, err)
		} else {
			app.AMQP = client
			slog.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	var publisher services.SyncRequester
	if app.AMQP != nil {
		publisher = app.AMQP
	}
	app.Service = services.NewExpenseService(app.Expenses, publisher)

	return app, nil
}

// Close releases the broker connection, the database and the tracer
// provider, returning every failure joined.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.AMQP != nil {
		if err := a.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp: %w", err))
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}
