package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/handlers/bookings"
	"eventmarket/internal/app/handlers/offers"
	"eventmarket/internal/app/middleware"
	appoutbox "eventmarket/internal/app/outbox"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/queries"
	"eventmarket/internal/app/schedule"
	"eventmarket/internal/app/uow"
	"eventmarket/internal/domain/settlement"
	"eventmarket/internal/infra/broker/kafka"
	rediscache "eventmarket/internal/infra/cache/redis"
	"eventmarket/internal/infra/config"
	mongostore "eventmarket/internal/infra/db/mongo"
	"eventmarket/internal/infra/db/postgres"
	ginserver "eventmarket/internal/infra/http/gin"
	"eventmarket/internal/infra/inbox"
	"eventmarket/internal/infra/obs"
	"eventmarket/internal/infra/outbox"
	"eventmarket/internal/infra/payments"
	"eventmarket/internal/infra/storage/memory"
)

const paymentsConsumer = "payments"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := obs.NewLogger(os.Getenv("APP_ENV"))
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger = obs.NewLogger(cfg.Env)

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	app, err := buildApplication(cfg, st, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "worker", name, "error", err)
			}
		}()
	}

	run("scheduler", func(ctx context.Context) error {
		schedule.Scheduler{Logger: logger}.Start(ctx, schedule.OfferExpiry(app.commands, cfg.OfferExpiryInterval, 0))
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		relay := &outbox.Worker{
			Store:       st.relay,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "eventmarket",
			Backoff:     cfg.RetryBackoff,
		}
		run("outbox-relay", relay.Run)

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, payments.Handler{
			Commands: app.commands,
			Inbox:    st.inbox,
			Logger:   logger,
		}, logger)
		if err != nil {
			logger.Error("kafka consumer init failed", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
		if len(cfg.RetryBackoff) > 0 {
			consumer.RetryDelay = cfg.RetryBackoff[0]
		}
		run("payments-consumer", func(ctx context.Context) error {
			return consumer.Run(ctx, []string{cfg.PaymentsTopic})
		})
	} else {
		logger.Warn("KAFKA_BROKERS not set; outbox relay and payments consumer disabled")
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: st.ready, Timeout: 2 * time.Second}, app.handlers)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		stop()
	}
	wg.Wait()
	logger.Info("HTTP server stopped")
}

// storage bundles the driver-specific adapters.
type storage struct {
	factory     uow.Factory
	outbox      appoutbox.Outbox
	relay       outbox.Store
	idempotency middleware.IdempotencyStore
	inbox       inbox.Deduplicator
	ready       func(ctx context.Context) error
	closers     []func()
}

func (s storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	var st storage
	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storage{}, err
		}
		st.closers = append(st.closers, func() { _ = client.Close(context.Background()) })
		if err := mongostore.EnsureIndexes(ctx, client.DB); err != nil {
			return storage{}, err
		}
		box, err := outbox.NewMongoStore(ctx, client.DB)
		if err != nil {
			return storage{}, err
		}
		idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return storage{}, err
		}
		in, err := inbox.NewStore(ctx, client.DB, paymentsConsumer)
		if err != nil {
			return storage{}, err
		}
		st.factory, st.outbox, st.relay, st.idempotency, st.inbox = mongostore.NewFactory(client.DB), box, box, idem, in
		st.ready = client.Ping
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return storage{}, err
		}
		st.closers = append(st.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			return storage{}, err
		}
		box := postgres.NewOutboxStore(pool)
		st.factory, st.outbox, st.relay = postgres.NewFactory(pool), box, box
		st.idempotency = postgres.NewIdempotencyStore(pool, cfg.IdempotencyTTL)
		st.inbox = postgres.NewInbox(pool, paymentsConsumer)
		st.ready = pool.Ping
	default:
		box := memory.NewOutbox()
		st.factory, st.outbox, st.relay = memory.NewFactory(), box, box
		st.idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		st.inbox = memory.NewInbox()
		st.ready = func(context.Context) error { return nil }
	}

	if cfg.RedisAddr != "" {
		client := rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		st.closers = append(st.closers, func() { _ = client.Close() })
		st.idempotency = rediscache.NewIdempotencyStore(client, cfg.IdempotencyTTL)
		storeReady := st.ready
		st.ready = func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return err
			}
			return storeReady(ctx)
		}
		logger.Info("idempotency records kept in redis", "addr", cfg.RedisAddr)
	}
	return st, nil
}

type application struct {
	commands commands.Bus
	queries  queries.Bus
	handlers ginserver.Handlers
}

func buildApplication(cfg config.Config, st storage, logger *slog.Logger) (application, error) {
	policy := settlement.DefaultPolicy()
	policy.MinimumAdvanceDays = cfg.Settlement.MinimumAdvanceDays
	policy.CancellationMinimumDays = cfg.Settlement.CancellationMinimumDays
	policy.DepositPercent = cfg.Settlement.DepositPercent
	policy.FinalPaymentLeadDays = cfg.Settlement.FinalPaymentLeadDays
	policy.MaxInstallments = cfg.Settlement.MaxInstallments
	svc, err := settlement.NewService(policy)
	if err != nil {
		return application{}, err
	}
	commission, err := policies.NewFlatCommission(cfg.CommissionRate)
	if err != nil {
		return application{}, err
	}

	encoder := appoutbox.JSONEventEncoder{IDGenerator: uuid.NewString}
	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	offers.Register(cmdBus, queryBus, offers.Deps{
		UoW:             st.factory,
		Outbox:          st.outbox,
		Encoder:         encoder,
		Settlement:      svc,
		NewID:           uuid.NewString,
		Logger:          logger,
		DefaultValidity: cfg.OfferValidity,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	bookings.Register(cmdBus, queryBus, bookings.Deps{
		UoW:             st.factory,
		Outbox:          st.outbox,
		Encoder:         encoder,
		Settlement:      svc,
		Commission:      commission,
		NewID:           uuid.NewString,
		Logger:          logger,
		DefaultCurrency: cfg.DefaultCurrency,
		AutoConfirm:     cfg.Settlement.AutoConfirm,
	})

	pipeline := middleware.Deps{
		Logger:      logger,
		Validator:   middleware.NewStructValidator(),
		Idempotency: st.idempotency,
		UoW:         st.factory,
		Outbox:      st.outbox,
	}
	cmds := middleware.StandardCommands(cmdBus, pipeline)
	qs := middleware.StandardQueries(queryBus, pipeline)

	return application{
		commands: cmds,
		queries:  qs,
		handlers: ginserver.Handlers{
			Offers:   ginserver.OfferHandler{Commands: cmds, Queries: qs, Logger: logger},
			Bookings: ginserver.BookingHandler{Commands: cmds, Queries: qs, Logger: logger},
		},
	}, nil
}
