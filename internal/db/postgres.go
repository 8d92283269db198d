package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"luna-bot/config"
	"luna-bot/internal/models"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *PostgresDB) Migrate(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS users (
            id                  BIGINT PRIMARY KEY,
            gender              TEXT,
            color_type          TEXT,
            palette             TEXT,
            subscription_expiry TIMESTAMPTZ,
            created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )
    `
	if _, err := db.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func (db *PostgresDB) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `
        SELECT id, gender, color_type, palette, subscription_expiry
        FROM users
        WHERE id = $1
    `

	var (
		id                         int64
		gender, colorType, palette *string
		expiry                     *time.Time
	)
	err := db.pool.QueryRow(ctx, query, userID).Scan(&id, &gender, &colorType, &palette, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return profileFromRow(id, gender, colorType, palette, expiry)
}

// Upsert inserts the row or updates only the supplied columns in one statement.
func (db *PostgresDB) Upsert(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	args, err := newUpsertArgs(update)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO users (id, gender, color_type, palette, subscription_expiry)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE
        SET gender              = CASE WHEN $6::boolean THEN EXCLUDED.gender ELSE users.gender END,
            color_type          = CASE WHEN $7::boolean THEN EXCLUDED.color_type ELSE users.color_type END,
            palette             = CASE WHEN $8::boolean THEN EXCLUDED.palette ELSE users.palette END,
            subscription_expiry = CASE WHEN $9::boolean THEN EXCLUDED.subscription_expiry ELSE users.subscription_expiry END,
            updated_at          = NOW()
    `

	_, err = db.pool.Exec(ctx, query,
		userID, args.gender, args.colorType, args.palette, args.expiry,
		args.set[0], args.set[1], args.set[2], args.set[3],
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return nil
}
