package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/catalog"
	"github.com/nikolayk812/orderflow/internal/config"
	"github.com/nikolayk812/orderflow/internal/lifecycle"
	"github.com/nikolayk812/orderflow/internal/media"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/notify"
	"github.com/nikolayk812/orderflow/internal/port"
	"github.com/nikolayk812/orderflow/internal/repository"
	"github.com/nikolayk812/orderflow/internal/repository/memrepo"
	"github.com/nikolayk812/orderflow/internal/returns"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repositories struct {
	orders        port.OrderRepository
	returns       port.ReturnRepository
	notifications port.NotificationRepository
	products      port.ProductRepository
	uow           port.UnitOfWork
}

// app holds the wired services and whatever must be closed on exit.
type app struct {
	engine        *lifecycle.Engine
	autoCompleter *lifecycle.AutoCompleter
	returns       *returns.Workflow
	inbox         *notify.Inbox
	catalog       *catalog.Coordinator
	products      port.ProductRepository
	metrics       *metrics.Metrics

	closers []func() error
	log     *zap.Logger
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *app, err error) {
	a := &app{metrics: metrics.New(), log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	repos, err := a.newRepositories(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.products = repos.products

	push := a.newPushTransport(cfg)
	dispatcher := notify.NewDispatcher(repos.notifications, push, a.metrics, log)

	a.engine, err = lifecycle.NewEngine(lifecycle.EngineDeps{
		Orders:   repos.orders,
		Notifier: dispatcher,
		Metrics:  a.metrics,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	a.autoCompleter, err = lifecycle.NewAutoCompleter(a.engine, cfg.AutoComplete.After, cfg.AutoComplete.BatchSize, a.metrics, log)
	if err != nil {
		return nil, err
	}

	a.returns, err = returns.NewWorkflow(returns.WorkflowDeps{
		UnitOfWork: repos.uow,
		Returns:    repos.returns,
		Orders:     repos.orders,
		Engine:     a.engine,
		Notifier:   dispatcher,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	a.inbox = notify.NewInbox(repos.notifications)

	var store port.MediaStore
	if cfg.Storage.Bucket != "" {
		s3Store, err := media.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("media.NewS3Store: %w", err)
		}
		store = s3Store
	} else {
		log.Warn("storage.bucket is empty, product media will not be stored or deleted")
	}

	a.catalog, err = catalog.NewCoordinator(repos.products, store, a.metrics, log)
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *app) newRepositories(ctx context.Context, cfg config.DatabaseConfig) (repositories, error) {
	if cfg.Driver == config.DriverMemory {
		a.log.Warn("using the in-memory store, data is lost on exit")
		store := memrepo.NewStore()
		return repositories{
			orders:        store.Orders(),
			returns:       store.Returns(),
			notifications: store.Notifications(),
			products:      store.Products(),
			uow:           store.UnitOfWork(),
		}, nil
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	return repositories{
		orders:        repository.NewOrder(pool),
		returns:       repository.NewReturn(pool),
		notifications: repository.NewNotification(pool),
		products:      repository.NewProduct(pool),
		uow:           repository.NewUnitOfWork(pool),
	}, nil
}

// newPushTransport returns nil when no transport is configured.
func (a *app) newPushTransport(cfg *config.Config) port.PushTransport {
	var transports notify.Fanout

	breaker := func(name string, next port.PushTransport) port.PushTransport {
		return notify.NewBreakerTransport(next, notify.BreakerSettings{
			Name:             name,
			FailureThreshold: cfg.Notify.FailureThreshold,
			Timeout:          cfg.Notify.CircuitTimeout,
			PushTimeout:      cfg.Notify.PushTimeout,
		})
	}

	if cfg.Redis.Address != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		transports = append(transports, breaker("redis", notify.NewRedisTransport(client, cfg.Redis.Channel)))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		writer := notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, writer.Close)
		transports = append(transports, breaker("kafka", notify.NewKafkaTransport(writer)))
	}

	switch len(transports) {
	case 0:
		return nil
	case 1:
		return transports[0]
	default:
		return transports
	}
}

func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("close resources", zap.Error(err))
	}
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return pool, nil
}
