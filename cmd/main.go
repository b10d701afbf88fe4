package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cancelBookingHandler "github.com/m04kA/SMC-TableReservation/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-TableReservation/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-TableReservation/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-TableReservation/internal/api/handlers/get_booking"
	getRestaurantBookingsHandler "github.com/m04kA/SMC-TableReservation/internal/api/handlers/get_restaurant_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-TableReservation/internal/api/handlers/get_user_bookings"
	updateBookingStatusHandler "github.com/m04kA/SMC-TableReservation/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-TableReservation/internal/api/middleware"
	"github.com/m04kA/SMC-TableReservation/internal/api/ws"
	"github.com/m04kA/SMC-TableReservation/internal/config"
	"github.com/m04kA/SMC-TableReservation/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/booking"
	branchRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/branch"
	"github.com/m04kA/SMC-TableReservation/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TableReservation/internal/integrations/broker"
	"github.com/m04kA/SMC-TableReservation/internal/integrations/identity"
	"github.com/m04kA/SMC-TableReservation/internal/realtime"
	bookingsService "github.com/m04kA/SMC-TableReservation/internal/service/bookings"
	"github.com/m04kA/SMC-TableReservation/internal/telemetry"
	createBookingUC "github.com/m04kA/SMC-TableReservation/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-TableReservation/internal/usecase/get_availability"
	"github.com/m04kA/SMC-TableReservation/pkg/dbmetrics"
	"github.com/m04kA/SMC-TableReservation/pkg/logger"
	"github.com/m04kA/SMC-TableReservation/pkg/metrics"
	"github.com/m04kA/SMC-TableReservation/pkg/txmanager"
)

// branchStore общий контракт PostgreSQL- и memory-репозиториев филиалов
type branchStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Branch, error)
}

// bookingStore общий контракт PostgreSQL- и memory-репозиториев бронирований
type bookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	ListForCapacity(ctx context.Context, branchID int64, date time.Time) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, booking *domain.Booking) error
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
	Close() error
}

type storage struct {
	branches  branchStore
	bookings  bookingStore
	txManager txManager
	close     func() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-TableReservation...")

	// Инициализируем метрики (если включены); nil-коллектор ничего не пишет
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Трассировка
	shutdownTracing, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Metrics.ServiceName,
	})
	if err != nil {
		log.Warn("Tracing disabled: %v", err)
	}

	// Хранилище
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to open storage: %v", err)
	}
	defer store.close()

	// Реестр WebSocket-соединений и доставка событий
	registry := realtime.NewRegistry(
		time.Duration(cfg.WebSocket.SweepIntervalSeconds)*time.Second,
		metricsCollector,
		log,
	)
	registryCtx, stopRegistry := context.WithCancel(context.Background())
	registryDone := make(chan struct{})
	go func() {
		registry.Run(registryCtx)
		close(registryDone)
	}()
	notifier := realtime.NewNotifier(registry)

	// Внешний брокер событий (опционально)
	var publisher eventPublisher = broker.NopPublisher{}
	if cfg.Broker.Enabled {
		publisher = broker.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange, log)
		log.Info("Broker publisher enabled (exchange=%s)", cfg.Broker.Exchange)
	}

	resolver := identity.NewResolver(cfg.Auth.JWTSecret)

	// Инициализируем use cases и сервисы
	createBookingUseCase := createBookingUC.NewUseCase(
		store.branches,
		store.bookings,
		store.txManager,
		notifier,
		publisher,
		metricsCollector,
		cfg.Booking.InitialBookingStatus(),
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(store.branches, store.bookings, log)
	bookingSvc := bookingsService.NewService(
		store.bookings,
		store.txManager,
		notifier,
		publisher,
		metricsCollector,
		cfg.Booking.LenientCompletion,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, cfg.Booking.LenientCompletion, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getRestaurantBookings := getRestaurantBookingsHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	markArrived, err := updateBookingStatusHandler.NewHandler(bookingSvc, domain.ActionArrive, log)
	if err != nil {
		log.Fatal("Failed to create arrive handler: %v", err)
	}
	markCompleted, err := updateBookingStatusHandler.NewHandler(bookingSvc, domain.ActionComplete, log)
	if err != nil {
		log.Fatal("Failed to create complete handler: %v", err)
	}
	wsHandler := ws.NewHandler(registry, resolver, ws.Config{
		CookieName:   cfg.Auth.CookieName,
		SendBuffer:   cfg.WebSocket.SendBuffer,
		WriteTimeout: time.Duration(cfg.WebSocket.WriteTimeoutSeconds) * time.Second,
		PingInterval: time.Duration(cfg.WebSocket.SweepIntervalSeconds) * time.Second / 2,
	}, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		if err := limiter.TrustProxies(cfg.RateLimit.TrustedProxies); err != nil {
			log.Fatal("Invalid rate_limit.trusted_proxies: %v", err)
		}
		r.Use(limiter.Middleware)
		log.Info("Rate limit enabled (%d req/min, burst %d)", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// WebSocket: личность проверяется при рукопожатии, ошибка уходит кадром
	r.Handle("/ws", wsHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/branches/{branchId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (Bearer-токен или cookie)
	// ============================================================

	auth := middleware.Auth(resolver, cfg.Auth.CookieName, log)

	// --- Пользователь ---
	users := api.PathPrefix("/bookings").Subrouter()
	users.Use(auth)
	users.HandleFunc("", createBooking.Handle).Methods(http.MethodPost)
	users.HandleFunc("", getUserBookings.Handle).Methods(http.MethodGet)
	users.HandleFunc("/{bookingId:[0-9]+}", getBooking.Handle).Methods(http.MethodGet)
	users.HandleFunc("/{bookingId:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// --- Ресторан ---
	restaurant := api.PathPrefix("/restaurant/bookings").Subrouter()
	restaurant.Use(auth, middleware.RequireKind(domain.ActorRestaurant))
	restaurant.HandleFunc("/{restaurantId:[0-9]+}", getRestaurantBookings.Handle).Methods(http.MethodGet)
	restaurant.HandleFunc("/{bookingId:[0-9]+}/arrive", markArrived.Handle).Methods(http.MethodPost)
	restaurant.HandleFunc("/{bookingId:[0-9]+}/complete", markCompleted.Handle).Methods(http.MethodPost)
	restaurant.HandleFunc("/{bookingId:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	var handler http.Handler = r
	if cfg.Telemetry.Enabled {
		handler = otelhttp.NewHandler(r, cfg.Metrics.ServiceName)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	// Порядок: HTTP сервер, реестр соединений, брокер
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopRegistry()
	<-registryDone
	log.Info("Connection registry stopped")

	if err := publisher.Close(); err != nil {
		log.Error("Failed to close broker publisher: %v", err)
	}

	close(stopMetricsCh)

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// openStorage открывает PostgreSQL (с метриками запросов) или хранилище в памяти
func openStorage(cfg *config.Config, recorder *metrics.Metrics, stop <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		store := memory.NewStore()
		for _, seed := range cfg.SeedBranches {
			branch, err := seed.ToDomain()
			if err != nil {
				return nil, err
			}
			if err := store.PutBranch(branch); err != nil {
				return nil, fmt.Errorf("seed branch %d: %w", seed.ID, err)
			}
		}
		log.Info("Using in-memory storage with %d branch(es)", len(cfg.SeedBranches))

		return &storage{
			branches:  memory.NewBranchRepository(store),
			bookings:  memory.NewBookingRepository(store),
			txManager: memory.NewTxManager(store),
			close:     func() error { return nil },
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if recorder != nil {
		wrappedDB = dbmetrics.WrapWithDefault(db, recorder, stop)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	return &storage{
		branches:  branchRepo.NewRepository(wrappedDB),
		bookings:  bookingRepo.NewRepository(wrappedDB),
		txManager: txmanager.NewTransactionManager(wrappedDB),
		close:     db.Close,
	}, nil
}
