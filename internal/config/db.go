package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConnectDB establishes a connection to the PostgreSQL database, retrying
// while the database comes up.
func ConnectDB(cfg *Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(context.Background(), cfg.DSN())
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				logger.Info("Connected to PostgreSQL",
					zap.String("host", cfg.DBHost),
					zap.String("database", cfg.DBName),
				)
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn("Failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Int("maxAttempts", maxRetries),
			zap.Duration("retryIn", retryInterval),
			zap.Error(err),
		)
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates the users table and its indexes if they don't exist.
func AutoMigrate(db *pgxpool.Pool, logger *zap.Logger) error {
	sql := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('USER', 'ADMIN')) DEFAULT 'USER',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		phone_country_code TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		credits INTEGER NOT NULL DEFAULT 100,
		password_hash TEXT,
		provider TEXT,
		provider_id TEXT,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		-- Exactly one credential form: a password hash or a federated identity pair.
		CONSTRAINT users_one_credential CHECK (
			(password_hash IS NOT NULL AND provider IS NULL AND provider_id IS NULL)
			OR (password_hash IS NULL AND provider IS NOT NULL AND provider_id IS NOT NULL)
		)
	);

	-- Uniqueness covers active rows only; soft-deleted rows free their email and phone.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active ON users(email) WHERE is_deleted = FALSE;
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_phone_active ON users(phone_number) WHERE is_deleted = FALSE;

    -- Function to update updated_at column
    CREATE OR REPLACE FUNCTION update_updated_at_column()
    RETURNS TRIGGER AS $$
    BEGIN
       NEW.updated_at = NOW();
       RETURN NEW;
    END;
    $$ language 'plpgsql';

    -- Trigger for users table
    DO $$
    BEGIN
        IF NOT EXISTS (
            SELECT 1
            FROM pg_trigger
            WHERE tgname = 'set_users_updated_at' AND tgrelid = 'users'::regclass
        ) THEN
            CREATE TRIGGER set_users_updated_at
            BEFORE UPDATE ON users
            FOR EACH ROW
            EXECUTE FUNCTION update_updated_at_column();
        END IF;
    END
    $$;
	`
	_, err := db.Exec(context.Background(), sql)
	if err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	logger.Info("AutoMigrate applied successfully")
	return nil
}
