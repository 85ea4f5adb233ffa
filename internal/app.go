package internal

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"rental-project/internal/adapters/filestorage"
	"rental-project/internal/adapters/httpapi"
	postgres_adapter "rental-project/internal/adapters/postgres"
	rabbitmq_adapter "rental-project/internal/adapters/rabbitmq"
	redis_adapter "rental-project/internal/adapters/redis"
	"rental-project/internal/configs"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
	"rental-project/internal/core/usecase"
	"rental-project/internal/locale"
	"rental-project/pkg/postgres"
	"rental-project/pkg/rabbitmq/rabbitmq_common"
	"rental-project/pkg/rabbitmq/rabbitmq_consumer"
	"rental-project/pkg/rabbitmq/rabbitmq_producer"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived resource of the process.
type App struct {
	config *configs.AppConfig

	// Outgoing infrastructure; nil when the component is disabled
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client
	eventProducer *rabbitmq_producer.Publisher

	// Incoming
	httpServer     *httpapi.Server
	changeListener port.EventListenerPort
}

// NewApp connects the configured backends and wires use cases to them.
// Everything opened so far is closed again when a later step fails.
func NewApp(ctx context.Context, appConfig *configs.AppConfig) (*App, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("application configuration is required")
	}
	app := &App{config: appConfig}

	gateway, profiles, err := app.initStorage(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	if appConfig.Admin.Email != "" {
		if err := usecase.EnsureProfile(ctx, gateway, profiles, appConfig.Admin.Email, appConfig.Admin.Password, domain.RoleAdmin); err != nil {
			app.close()
			return nil, fmt.Errorf("failed to bootstrap admin profile: %w", err)
		}
	}

	var searchCache port.SearchCachePort
	if appConfig.Redis.Enabled {
		client, err := redis_adapter.NewRedisClient(ctx, appConfig.Redis.URL)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.redisClient = client

		cached, err := redis_adapter.NewCachedGateway(gateway, client, appConfig.Redis.TTL)
		if err != nil {
			app.close()
			return nil, err
		}
		gateway = cached
		searchCache = cached
		log.Printf("Search page cache enabled (ttl %s).\n", appConfig.Redis.TTL)
	}

	var events port.ListingEventsPort
	if appConfig.RabbitMQ.Enabled {
		publisher, err := app.initEvents()
		if err != nil {
			app.close()
			return nil, err
		}
		events = publisher
	}

	auth, err := usecase.NewAuthUseCase(profiles)
	if err != nil {
		app.close()
		return nil, err
	}
	curation, err := usecase.NewCurationUseCase(gateway, events)
	if err != nil {
		app.close()
		return nil, err
	}
	catalog, err := usecase.NewAdminCatalog(gateway, events)
	if err != nil {
		app.close()
		return nil, err
	}
	log.Println("All use cases initialized.")

	if appConfig.RabbitMQ.Enabled && searchCache != nil {
		if err := app.initChangeListener(usecase.NewInvalidateSearchCacheUseCase(searchCache)); err != nil {
			app.close()
			return nil, err
		}
	}

	defaultLocale, ok := locale.Parse(appConfig.DefaultLocale)
	if !ok {
		log.Printf("Warning: DEFAULT_LOCALE %q is not supported, using %s\n", appConfig.DefaultLocale, locale.Default)
	}
	catalogStrings, err := locale.Load()
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to load locale catalogs: %w", err)
	}

	server, err := httpapi.NewServer(httpapi.Deps{
		Gateway:       gateway,
		Auth:          auth,
		Curation:      curation,
		Catalog:       catalog,
		Strings:       catalogStrings,
		JWTSecret:     appConfig.HTTP.JWTSecret,
		JWTTTL:        appConfig.HTTP.JWTTTL,
		PageSize:      appConfig.SearchPageSize,
		DefaultLocale: defaultLocale,
	})
	if err != nil {
		app.close()
		return nil, err
	}
	app.httpServer = server
	log.Println("HTTP server initialized.")

	return app, nil
}

func (a *App) initStorage(ctx context.Context) (port.GatewayPort, port.ProfileRepositoryPort, error) {
	switch a.config.Storage.Driver {
	case configs.StorageDriverFile:
		store, err := filestorage.NewGateway(a.config.Storage.DataFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		log.Printf("Using file storage at %q.\n", a.config.Storage.DataFile)
		return store, store, nil

	case configs.StorageDriverPostgres:
		dbPool, err := postgres.NewClient(ctx, postgres.Config{
			DatabaseURL: a.config.Storage.URL,
			MaxConns:    a.config.Storage.MaxConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.dbPool = dbPool
		log.Println("Successfully connected to PostgreSQL pool!")

		if err := postgres_adapter.EnsureSchema(ctx, dbPool); err != nil {
			return nil, nil, err
		}
		gateway, err := postgres_adapter.NewPostgresGatewayAdapter(dbPool)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres gateway adapter: %w", err)
		}
		profiles, err := postgres_adapter.NewPostgresProfileRepository(dbPool)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres profile repository: %w", err)
		}
		return gateway, profiles, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", a.config.Storage.Driver)
}

func (a *App) initEvents() (*rabbitmq_adapter.RabbitMQListingEventsAdapter, error) {
	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: a.config.RabbitMQ.URL, ConnectionName: "rental-project-publisher"},
		ExchangeName:             constants.ExchangeListings,
		ExchangeType:             "direct",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.eventProducer = producer
	log.Println("RabbitMQ Event Producer initialized.")

	adapter, err := rabbitmq_adapter.NewRabbitMQListingEventsAdapter(producer, constants.RoutingKeyListingChanged)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

func (a *App) initChangeListener(invalidate *usecase.InvalidateSearchCacheUseCase) error {
	listener, err := rabbitmq_adapter.NewListingChangeConsumerAdapter(rabbitmq_consumer.ConsumerConfig{
		Config:              rabbitmq_common.Config{URL: a.config.RabbitMQ.URL, ConnectionName: "rental-project-consumer"},
		QueueName:           constants.QueueListingChanges,
		DeclareQueue:        true,
		DurableQueue:        true,
		ExchangeNameForBind: constants.ExchangeListings,
		RoutingKeyForBind:   constants.RoutingKeyListingChanged,
		PrefetchCount:       5,
		ConsumerTag:         "search-cache-invalidator",
	}, invalidate)
	if err != nil {
		return err
	}
	a.changeListener = listener
	log.Println("Listing Change Events Listener initialized.")
	return nil
}

// Run serves until SIGINT/SIGTERM or until a component fails.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	defer func() {
		log.Println("App: Shutdown sequence initiated...")
		log.Println("App: Waiting for background processes to finish...")
		wg.Wait()
		log.Println("App: All background processes finished.")
		a.close()
		log.Println("Application shut down gracefully.")
	}()

	log.Println("Application is starting...")

	componentErrors := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.httpServer.Listen(a.config.HTTP.Addr); err != nil {
			log.Printf("App: HTTP server stopped with an unexpected error: %v", err)
			componentErrors <- fmt.Errorf("http server error: %w", err)
		}
	}()

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		log.Printf("App: Starting %s...", name)
		if err := listener.Start(appCtx); err != nil {
			log.Printf("App: %s stopped with an unexpected error: %v", name, err)
			componentErrors <- fmt.Errorf("%s error: %w", name, err)
		} else {
			log.Printf("App: %s stopped gracefully due to context cancellation.", name)
		}
	}
	if a.changeListener != nil {
		wg.Add(1)
		go startListener("Listing Change Events Listener", a.changeListener)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	log.Println("Application running. Waiting for signals or component error...")

	var runErr error
	select {
	case receivedSignal := <-quit:
		log.Printf("App: Received signal: %s. Shutting down...\n", receivedSignal)
	case err := <-componentErrors:
		log.Printf("App: A critical component failed: %v. Shutting down...\n", err)
		runErr = err
	}

	cancelApp()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("App: Error shutting down HTTP server: %v\n", err)
	}
	return runErr
}

// close releases resources in reverse order of acquisition.
func (a *App) close() {
	if a.changeListener != nil {
		if err := a.changeListener.Close(); err != nil {
			log.Printf("App: Error closing listing change listener: %v\n", err)
		}
		a.changeListener = nil
	}
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			log.Printf("App: Error closing event producer: %v\n", err)
		}
		a.eventProducer = nil
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			log.Printf("App: Error closing Redis client: %v\n", err)
		}
		a.redisClient = nil
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
		log.Println("App: PostgreSQL pool closed.")
	}
}
