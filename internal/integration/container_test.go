package integration_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	pgxstd "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	migrationsURL  = "file://../../migrations"
	startupTimeout = time.Minute
)

// backingServices are the stores the booking service runs against in the
// integration suite.
type backingServices struct {
	postgres *postgres.PostgresContainer
	redis    *tcredis.RedisContainer

	// DSN reaches the migrated booking database.
	DSN string
	// RedisAddr is the host:port the workflow store and sessions use.
	RedisAddr string
}

func startBackingServices(ctx context.Context) (*backingServices, error) {
	services := &backingServices{}

	if err := services.startPostgres(ctx); err != nil {
		_ = services.stop()
		return nil, err
	}

	if err := services.startRedis(ctx); err != nil {
		_ = services.stop()
		return nil, err
	}

	return services, nil
}

func (b *backingServices) startPostgres(ctx context.Context) error {
	ready := wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
		return postgresURL(host, port.Port())
	}).WithStartupTimeout(startupTimeout)

	container, err := postgres.Run(ctx, dbImageName,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(ready),
	)
	if err != nil {
		return fmt.Errorf("starting postgres: %w", err)
	}

	b.postgres = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("postgres connection string: %w", err)
	}

	if err := migrateUp(dsn); err != nil {
		return err
	}

	b.DSN = dsn

	return nil
}

func (b *backingServices) startRedis(ctx context.Context) error {
	container, err := tcredis.Run(ctx, cacheImageName)
	if err != nil {
		return fmt.Errorf("starting redis: %w", err)
	}

	b.redis = container

	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		return fmt.Errorf("redis endpoint: %w", err)
	}

	b.RedisAddr = addr

	return nil
}

// stop terminates whatever was started and returns the joined failures.
func (b *backingServices) stop() error {
	var errs []error

	if b.postgres != nil {
		errs = append(errs, testcontainers.TerminateContainer(b.postgres))
	}

	if b.redis != nil {
		errs = append(errs, testcontainers.TerminateContainer(b.redis))
	}

	return errors.Join(errs...)
}

func postgresURL(host, port string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port, dbName)
}

func migrateUp(dsn string) error {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parsing dsn: %w", err)
	}

	db := pgxstd.OpenDB(*connConfig)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsURL, "pgx", driver)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}
