package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/metinatakli/movie-booking/internal/booking"
	"github.com/metinatakli/movie-booking/internal/catalog"
	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/metinatakli/movie-booking/internal/events"
	"github.com/metinatakli/movie-booking/internal/mailer"
	"github.com/metinatakli/movie-booking/internal/orchestrator"
	"github.com/metinatakli/movie-booking/internal/repository"
	appvalidator "github.com/metinatakli/movie-booking/internal/validator"
	"github.com/metinatakli/movie-booking/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	publisher      events.Publisher
	metrics        *metrics

	userRepo  domain.UserRepository
	gateway   domain.CatalogGateway
	submitter orchestrator.BookingSubmitter
	sessions  *orchestrator.Registry
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Events           EventsConfig
	Catalog          CatalogConfig
	Booking          BookingConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type EventsConfig struct {
	// Broker is one of "", "amqp" or "kafka". Events are dropped when empty.
	Broker       string
	AMQPURL      string
	KafkaBrokers string
	KafkaTopic   string
}

type CatalogConfig struct {
	ReadAttempts     uint
	RetryInterval    time.Duration
	MaxRetryInterval time.Duration
}

type BookingConfig struct {
	SessionIdleTimeout time.Duration
	SweepInterval      time.Duration
	Location           string
}

func Run() error {
	// a missing .env file is fine, flags and the environment still apply
	_ = godotenv.Load()

	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", os.Getenv("OTEL_COLLECTOR_URL"), "OpenTelemetry collector gRPC endpoint")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", os.Getenv("BOOKING_DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", os.Getenv("BOOKING_REDIS_URL"), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", os.Getenv("BOOKING_SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", os.Getenv("BOOKING_SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "CineX <no-reply@cinex.metinatakli.net>", "SMTP sender")

	flag.StringVar(&cfg.Events.Broker, "events-broker", "", "Booking event broker (amqp|kafka), empty to disable")
	flag.StringVar(&cfg.Events.AMQPURL, "amqp-url", os.Getenv("BOOKING_AMQP_URL"), "RabbitMQ URL")
	flag.StringVar(&cfg.Events.KafkaBrokers, "kafka-brokers", "localhost:9092", "Comma separated Kafka seed brokers")
	flag.StringVar(&cfg.Events.KafkaTopic, "kafka-topic", "booking-events", "Kafka topic for booking events")

	flag.UintVar(&cfg.Catalog.ReadAttempts, "catalog-read-attempts", 1, "Attempts per catalog read (1 disables retries)")
	flag.DurationVar(&cfg.Catalog.RetryInterval, "catalog-retry-interval", 100*time.Millisecond, "Initial backoff between catalog read attempts")
	flag.DurationVar(&cfg.Catalog.MaxRetryInterval, "catalog-max-retry-interval", 2*time.Second, "Maximum backoff between catalog read attempts")

	flag.DurationVar(&cfg.Booking.SessionIdleTimeout, "booking-session-idle-timeout", 30*time.Minute, "Idle time after which a booking session expires")
	flag.DurationVar(&cfg.Booking.SweepInterval, "booking-session-sweep-interval", time.Minute, "How often expired booking sessions are swept")
	flag.StringVar(&cfg.Booking.Location, "booking-location", "Local", "Time zone schedule dates are interpreted in")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stdoutHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(NewMultiHandler(stdoutHandler, otelslog.NewHandler(serviceName)))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	location, err := time.LoadLocation(cfg.Booking.Location)
	if err != nil {
		return fmt.Errorf("invalid booking location: %w", err)
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := NewPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	userRepo := repository.NewPostgresUserRepository(db)

	gateway := catalog.NewGateway(
		repository.NewPostgresGenreRepository(db),
		repository.NewPostgresTheaterRepository(db),
		repository.NewPostgresScheduleRepository(db),
		repository.NewPostgresBookingRepository(db),
		logger,
		catalog.Config{
			MaxAttempts:     cfg.Catalog.ReadAttempts,
			InitialInterval: cfg.Catalog.RetryInterval,
			MaxInterval:     cfg.Catalog.MaxRetryInterval,
		},
	)

	submitter := booking.NewSubmitter(gateway, NewUserProvider(userRepo), logger, booking.WithLocation(location))

	sessions := orchestrator.NewRegistry(cfg.Booking.SessionIdleTimeout, logger)

	err = registerSessionGauge(otel.Meter(telemetryScope), sessions)
	if err != nil {
		return err
	}

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		NewSessionManager(redisClient),
		publisher,
		userRepo,
		gateway,
		submitter,
		sessions,
	)

	return app.run()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	publisher events.Publisher,
	userRepo domain.UserRepository,
	gateway domain.CatalogGateway,
	submitter orchestrator.BookingSubmitter,
	sessions *orchestrator.Registry) *Application {

	return &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      validator,
		mailer:         mailer,
		sessionManager: sessionManager,
		publisher:      publisher,
		metrics:        newMetrics(sessions),
		userRepo:       userRepo,
		gateway:        gateway,
		submitter:      submitter,
		sessions:       sessions,
	}
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb)); err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// NewPublisher connects to the configured booking event broker.
func NewPublisher(cfg Config) (events.Publisher, error) {
	switch cfg.Events.Broker {
	case "":
		return events.NopPublisher{}, nil
	case "amqp":
		publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL)
		if err != nil {
			return nil, err
		}

		return publisher, nil
	case "kafka":
		brokers := strings.Split(cfg.Events.KafkaBrokers, ",")

		publisher, err := events.NewKafkaPublisher(brokers, cfg.Events.KafkaTopic, serviceName)
		if err != nil {
			return nil, err
		}

		return publisher, nil
	default:
		return nil, fmt.Errorf("unknown events broker %q", cfg.Events.Broker)
	}
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()

	go app.sessions.Run(sweepCtx, app.config.Booking.SweepInterval)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
