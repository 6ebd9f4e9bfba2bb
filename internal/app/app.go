package app

import (
	"context"
	"net/http"
	"os"
	"time"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"hotelops/internal/application/usecases/booking"
	"hotelops/internal/application/usecases/order"
	"hotelops/internal/application/usecases/payment"
	"hotelops/internal/config"
	"hotelops/internal/domain/payments"
	"hotelops/internal/domain/registry"
	"hotelops/internal/infrastructure/cache"
	"hotelops/internal/infrastructure/clients"
	"hotelops/internal/infrastructure/event_publisher"
	"hotelops/internal/infrastructure/resilience"
	"hotelops/internal/interfaces/events"
	httpiface "hotelops/internal/interfaces/http"
	"hotelops/internal/repository"
)

type App struct {
	watermillLogger watermill.LoggerAdapter
	logger          zerolog.Logger
	router          *message.Router
	srv             *httpiface.Server
	db              *sqlx.DB
}

func NewApp(
	cfg config.App,
	watermillLogger watermill.LoggerAdapter,
	redisClient *redis.Client,
	db *sqlx.DB,
	notifier events.Notifier,
) (*App, error) {
	trManager := manager.Must(trmsqlx.NewDefaultFactory(db))
	trGetter := trmsqlx.DefaultCtxGetter

	roomBookingsRepo := repository.NewRoomBookingsRepo(db, trGetter)
	tableBookingsRepo := repository.NewTableBookingsRepo(db, trGetter)
	ordersRepo := repository.NewOrdersRepo(db, trGetter)
	paymentsRepo := repository.NewPaymentsRepo(db, trGetter)

	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, err
	}

	var publisher message.Publisher
	publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, watermillLogger)
	if err != nil {
		return nil, err
	}

	publisher = event_publisher.CorrelationPublisherDecorator{
		Publisher: publisher,
	}
	eventBus, err := events.NewEventBus(publisher, watermillLogger)
	if err != nil {
		return nil, err
	}

	callerCfg := resilience.DefaultConfig()
	callerCfg.Timeout = cfg.CollaboratorTimeout
	httpClient := &http.Client{Timeout: cfg.CollaboratorTimeout}

	var resources registry.ResourceRegistry = clients.NewHotelClient(
		cfg.HotelServiceURL,
		httpClient,
		resilience.New("hotel-service", callerCfg),
	)
	resources = cache.NewResourceRegistryCache(resources, redisClient, cfg.RegistryCacheTTL)

	menu := clients.NewMenuClient(
		cfg.RestaurantServiceURL,
		httpClient,
		resilience.New("restaurant-service", callerCfg),
	)

	bookingsService := booking.NewUsecase(roomBookingsRepo, tableBookingsRepo, resources, trManager, eventBus)
	ordersService := order.NewUsecase(ordersRepo, menu, trManager, eventBus)

	gateway := clients.NewSimulatedGateway(cfg.GatewaySuccessRate)
	paymentsService := payment.NewUsecase(
		paymentsRepo,
		gateway,
		map[payments.Type]payments.ReferenceService{
			payments.TypeRoomBooking:  booking.NewRoomReference(bookingsService),
			payments.TypeTableBooking: booking.NewTableReference(bookingsService),
			payments.TypeFoodOrder:    order.NewReference(ordersService),
		},
		trManager,
		eventBus,
	)

	e := commonHTTP.NewEcho()
	srv := httpiface.NewServer(
		e,
		cfg.HTTPAddr,
		bookingsService,
		ordersService,
		paymentsService,
		router.IsRunning,
	)

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(events.CorrelationIDMiddleware)
	router.AddMiddleware(events.LoggingMiddleware)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)

	// skip marshalling errors before retrying
	router.AddMiddleware(events.SkipMarshallingErrorsMiddleware)

	processor, err := events.NewEventProcessor(router, redisClient, watermillLogger)
	if err != nil {
		return nil, err
	}
	err = processor.AddHandlers(
		events.BookingConfirmedHandler(notifier),
		events.OrderPlacedHandler(notifier),
		events.OrderConfirmedHandler(notifier),
		events.PaymentProcessedHandler(notifier),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		watermillLogger: watermillLogger,
		logger:          zerolog.New(os.Stdout),
		router:          router,
		srv:             srv,
		db:              db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := repository.InitializeDBSchema(a.db)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().Msg("starting router")

		return a.router.Run(ctx)
	})

	g.Go(func() error {
		<-a.router.Running()
		a.logger.Info().Msg("router is running")

		a.logger.Info().Msg("starting server")
		return a.srv.Start()
	})

	g.Go(func() error {
		// Shut down
		<-ctx.Done()

		err := a.srv.Stop(ctx)
		if err != nil {
			a.logger.Err(err).Msg("error stopping server")
		}

		return err
	})

	return g.Wait()
}
