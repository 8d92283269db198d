package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"luna-bot/internal/models"
)

// ISO-8601 with fixed precision so stored expiries compare lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one writer; per-user serialization happens above the store
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &SQLiteDB{db: conn}, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Migrate(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS users (
            id                  INTEGER PRIMARY KEY,
            gender              TEXT,
            color_type          TEXT,
            palette             TEXT,
            subscription_expiry TEXT,
            updated_at          TEXT
        )
    `
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func (s *SQLiteDB) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `SELECT id, gender, color_type, palette, subscription_expiry FROM users WHERE id = ?`

	var (
		id                                 int64
		gender, colorType, palette, expiry sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&id, &gender, &colorType, &palette, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	var expiryTime *time.Time
	if expiry.Valid && expiry.String != "" {
		t, err := time.Parse(sqliteTimeLayout, expiry.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse subscription expiry %q: %w", expiry.String, err)
		}
		expiryTime = &t
	}

	return profileFromRow(id, nullable(gender), nullable(colorType), nullable(palette), expiryTime)
}

func (s *SQLiteDB) Upsert(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	args, err := newUpsertArgs(update)
	if err != nil {
		return err
	}

	var expiry *string
	if args.expiry != nil {
		e := args.expiry.UTC().Format(sqliteTimeLayout)
		expiry = &e
	}

	query := `
        INSERT INTO users (id, gender, color_type, palette, subscription_expiry, updated_at)
        VALUES (?1, ?2, ?3, ?4, ?5, ?10)
        ON CONFLICT (id) DO UPDATE
        SET gender              = CASE WHEN ?6 THEN excluded.gender ELSE users.gender END,
            color_type          = CASE WHEN ?7 THEN excluded.color_type ELSE users.color_type END,
            palette             = CASE WHEN ?8 THEN excluded.palette ELSE users.palette END,
            subscription_expiry = CASE WHEN ?9 THEN excluded.subscription_expiry ELSE users.subscription_expiry END,
            updated_at          = excluded.updated_at
    `

	_, err = s.db.ExecContext(ctx, query,
		userID, args.gender, args.colorType, args.palette, expiry,
		args.set[0], args.set[1], args.set[2], args.set[3],
		time.Now().UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
