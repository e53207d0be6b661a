package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/app"
	"github.com/metinatakli/cinex-booking/internal/events"
	"github.com/metinatakli/cinex-booking/internal/identity"
	"github.com/metinatakli/cinex-booking/internal/mailer"
	"github.com/metinatakli/cinex-booking/internal/payment"
	"github.com/metinatakli/cinex-booking/internal/repository"
	appvalidator "github.com/metinatakli/cinex-booking/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App       *app.Application
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Mailer    *mailer.MockMailer
	Publisher *events.MockPublisher
	Payments  *payment.MockPaymentProvider
	Identity  *identity.Provider
	Bookings  *repository.PostgresBookingRepository
	Catalog   *repository.PostgresCatalogRepository
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
	identityProvider := identity.NewProvider(cfg.Identity.LoginURL, cfg.Identity.Issuer, cfg.Identity.Secret)

	catalog := repository.NewPostgresCatalogRepository(db)
	bookings := repository.NewPostgresBookingRepository(db)

	paymentProvider := payment.NewMockPaymentProvider()

	application := app.NewApp(
		cfg,
		logger,
		redisClient,
		validator,
		mailer,
		publisher,
		sessionManager,
		identityProvider,
		catalog,
		bookings,
		paymentProvider,
	)

	return &TestApp{
		App:       application,
		DB:        db,
		Redis:     redisClient,
		Mailer:    mailer,
		Publisher: publisher,
		Payments:  paymentProvider,
		Identity:  identityProvider,
		Bookings:  bookings,
		Catalog:   catalog,
	}, nil
}
