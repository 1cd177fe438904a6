package integration_test

import (
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking/internal/app"
	"github.com/metinatakli/movie-booking/internal/booking"
	"github.com/metinatakli/movie-booking/internal/catalog"
	"github.com/metinatakli/movie-booking/internal/events"
	"github.com/metinatakli/movie-booking/internal/mailer"
	"github.com/metinatakli/movie-booking/internal/orchestrator"
	"github.com/metinatakli/movie-booking/internal/repository"
	appvalidator "github.com/metinatakli/movie-booking/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App            *app.Application
	DB             *pgxpool.Pool
	RedisClient    *redis.Client
	SessionManager *scs.SessionManager
	Sessions       *orchestrator.Registry
	Mailer         *mailer.MockMailer
	Publisher      *events.MockPublisher
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()
	publisher := events.NewMockPublisher()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	userRepo := repository.NewPostgresUserRepository(db)

	gateway := catalog.NewGateway(
		repository.NewPostgresGenreRepository(db),
		repository.NewPostgresTheaterRepository(db),
		repository.NewPostgresScheduleRepository(db),
		repository.NewPostgresBookingRepository(db),
		logger,
		catalog.DefaultConfig(),
	)

	submitter := booking.NewSubmitter(gateway, app.NewUserProvider(userRepo), logger, booking.WithLocation(time.UTC))
	sessions := orchestrator.NewRegistry(cfg.Booking.SessionIdleTimeout, logger)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		sessionManager,
		publisher,
		userRepo,
		gateway,
		submitter,
		sessions,
	)

	return &TestApp{
		App:            application,
		DB:             db,
		RedisClient:    redisClient,
		SessionManager: sessionManager,
		Sessions:       sessions,
		Mailer:         mailer,
		Publisher:      publisher,
	}, nil
}
