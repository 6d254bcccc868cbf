package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/gateway"
	mongoadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/mongo"
	natsadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/oauth"
	redisadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/router"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/ws"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "marketplace-service"

type App struct {
	cfg            *config.Config
	log            logger.Logger
	httpServer     *http.Server
	metricsServer  *http.Server
	hub            *ws.Hub
	sweeper        *service.ExpirySweeper
	subscriber     *natsadapter.Subscriber
	tracerProvider *sdktrace.TracerProvider
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	natsConn       *nats.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
		Output:     cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s", cfg.Env, cfg.HTTPServer.Port)

	tp := tracer.InitTracer(cfg.Tracing, cfg.Env, appLogger)
	metricsManager := metrics.NewMetricsManager("marketplace")

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	db := mongoClient.Database(cfg.MongoDB.Database)

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}

	users, err := mongoadapter.NewUserRepository(db)
	if err != nil {
		return nil, err
	}
	sellers, err := mongoadapter.NewSellerRepository(db)
	if err != nil {
		return nil, err
	}
	products, err := mongoadapter.NewProductRepository(db)
	if err != nil {
		return nil, err
	}
	orders, err := mongoadapter.NewOrderRepository(db)
	if err != nil {
		return nil, err
	}
	bargains, err := mongoadapter.NewBargainRepository(db)
	if err != nil {
		return nil, err
	}
	challenges, err := mongoadapter.NewChallengeRepository(db)
	if err != nil {
		return nil, err
	}
	appLogger.Info("Mongo repositories initialized")

	var txManager = mongoadapter.NewDirectTxManager()
	if cfg.MongoDB.UseTransactions {
		txManager = mongoadapter.NewTxManager(mongoClient, appLogger)
	} else {
		appLogger.Warn("Mongo transactions disabled; order placement relies on compensation")
	}

	cartRepo := redisadapter.NewCartRepository(redisClient)
	productCache := redisadapter.NewProductCache(redisClient)
	oauthStates := redisadapter.NewOAuthStateStore(redisClient)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	hub := ws.NewHub(tokens, cfg.HTTPServer.AllowedOrigins, appLogger)

	var (
		natsConn   *nats.Conn
		subscriber *natsadapter.Subscriber
		publisher  natsadapter.MessagePublisher
	)
	if cfg.NATS.Enabled {
		natsConn, err = natsadapter.NewConnection(cfg.NATS, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher, err = natsadapter.NewNATSPublisher(natsConn, appLogger)
		if err != nil {
			return nil, err
		}
		subscriber = natsadapter.NewSubscriber(natsConn, appLogger)
		for _, subject := range ws.OrderSubjects {
			if err := subscriber.Subscribe(subject, hub.HandleOrderMessage); err != nil {
				return nil, err
			}
		}
	} else {
		appLogger.Warn("NATS disabled; order events are relayed to websocket clients in-process")
		publisher = ws.NewRelayPublisher(hub, natsadapter.NewNoopPublisher(appLogger))
	}

	images, err := newImageStore(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	var sender email.EmailSender
	if cfg.SMTP.Enabled() {
		sender, err = email.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
	} else {
		appLogger.Info("SMTP not configured, emails are written to the log")
		sender = email.NewLogSender(appLogger)
	}
	notifier := service.NewEmailNotifier(sender, users, appLogger)

	var google oauth.Provider
	if cfg.GoogleOAuth.Enabled() {
		google = oauth.NewGoogleProvider(cfg.GoogleOAuth)
	}

	authService := service.NewAuthService(users, sellers, oauthStates, tokens, google, service.AuthServiceConfig{
		StateTTL:    cfg.GoogleOAuth.StateTTL,
		FrontendURL: cfg.GoogleOAuth.FrontendURL,
	}, appLogger)
	sellerService := service.NewSellerService(sellers, users, appLogger)
	productService := service.NewProductService(products, sellers, productCache, images,
		storage.Processor{MaxBytes: cfg.Uploads.MaxBytes, MaxWidth: cfg.Uploads.MaxWidth},
		service.ProductServiceConfig{CacheTTL: cfg.ProductCache.TTL, MaxFiles: cfg.Uploads.MaxFiles},
		appLogger)
	orderService := service.NewOrderService(orders, products, sellers, bargains, challenges, productCache,
		txManager, publisher, notifier, metricsManager, appLogger)
	cartService := service.NewCartService(cartRepo, productService, orderService, appLogger,
		service.CartServiceConfig{CartTTL: cfg.Cart.TTL})
	paymentService := service.NewPaymentService(orders, sellers, gateway.NewHTTPGateway(cfg.Payment, appLogger),
		publisher, notifier, metricsManager, appLogger)
	bargainService := service.NewBargainService(bargains, products, sellers, publisher, metricsManager,
		cfg.Negotiation.BargainTTL, appLogger)
	challengeService := service.NewChallengeService(challenges, products, sellers, publisher, metricsManager,
		service.ChallengeServiceConfig{TTL: cfg.Negotiation.ChallengeTTL, Ratio: cfg.Negotiation.ChallengeRatio},
		appLogger)
	sweeper := service.NewExpirySweeper(bargains, challenges, cfg.Negotiation.SweepInterval, metricsManager, appLogger)
	appLogger.Info("Services initialized")

	out := response.NewWriter(appLogger, metricsManager, cfg.IsDevelopment())
	checks := map[string]handler.HealthCheck{
		"mongo": func(ctx context.Context) error { return mongoadapter.Ping(ctx, mongoClient) },
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	if natsConn != nil {
		checks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		}
	}

	uploadsDir := ""
	if cfg.Uploads.Driver != "s3" {
		uploadsDir = cfg.Uploads.Dir
	}
	mux := router.New(router.Handlers{
		Health:     handler.NewHealthHandler(serviceName, checks, out),
		Auth:       handler.NewAuthHandler(authService, out),
		Seller:     handler.NewSellerHandler(sellerService, out),
		Product:    handler.NewProductHandler(productService, out, cfg.Uploads.MaxBytes*int64(max(cfg.Uploads.MaxFiles, 1))+(1<<20)),
		Cart:       handler.NewCartHandler(cartService, out),
		Order:      handler.NewOrderHandler(orderService, service.NewReceiptService(orderService, sellers, appLogger), out),
		Payment:    handler.NewPaymentHandler(paymentService, out),
		Bargain:    handler.NewBargainHandler(bargainService, out),
		Challenge:  handler.NewChallengeHandler(challengeService, out),
		OrdersLive: hub.HandleOrders,
	}, tokens, out, metricsManager, appLogger, router.Options{
		RequestTimeout:   cfg.HTTPServer.RequestTimeout,
		AllowedOrigins:   cfg.HTTPServer.AllowedOrigins,
		UploadsDir:       uploadsDir,
		UploadsURLPrefix: cfg.Uploads.PublicPrefix,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		cfg:            cfg,
		log:            appLogger,
		httpServer:     httpServer,
		metricsServer:  metrics.NewMetricsServer(cfg.Metrics.Port, metricsManager.Registry, appLogger),
		hub:            hub,
		sweeper:        sweeper,
		subscriber:     subscriber,
		tracerProvider: tp,
		mongoClient:    mongoClient,
		redisClient:    redisClient,
		natsConn:       natsConn,
	}, nil
}

func newImageStore(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.ImageStore, error) {
	switch cfg.Uploads.Driver {
	case "s3":
		s3, err := storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return s3, nil
	case "", "local":
		local, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.PublicPrefix, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return local, nil
	default:
		return nil, fmt.Errorf("unknown uploads driver %q", cfg.Uploads.Driver)
	}
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	bgCtx, stopBackground := context.WithCancel(context.Background())
	go a.hub.Run(bgCtx)
	go a.sweeper.Run(bgCtx)

	go func() {
		a.log.Infof("HTTP server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Errorf("Metrics server failed: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped successfully")
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("Error shutting down metrics server: %v", err)
		}
	}
	stopBackground()

	if a.subscriber != nil {
		a.subscriber.Close()
	}
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}

	a.log.Info("Closing database connections...")
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}

	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}
