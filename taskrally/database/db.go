package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"log/slog"

	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/taskrally/taskrally-backend/taskrally/logger"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	// Retry the initial reachability check; container orchestration tends to
	// start the database a beat after the app.
	var conn net.Conn
	var err error

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = net.DialTimeout("tcp", addr, defaultConnTimeout)
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	defer conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(cfg)}, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func (db *DB) GetPool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func newBunDB(cfg DBConfig) *bun.DB {
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates all required database tables and indexes
func (db *DB) InitializeSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'worker',
			xp BIGINT NOT NULL DEFAULT 0,
			online_xp BIGINT NOT NULL DEFAULT 0,
			onsite_xp BIGINT NOT NULL DEFAULT 0,
			feed_privacy_default TEXT NOT NULL DEFAULT 'ASK',
			api_token TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_api_token ON users (api_token) WHERE api_token IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS missions (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			space TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'OPEN',
			slots_max INT NOT NULL,
			slots_taken INT NOT NULL DEFAULT 0,
			base_xp BIGINT NOT NULL DEFAULT 0,
			bonus_xp BIGINT NOT NULL DEFAULT 0,
			owner_id BIGINT NOT NULL REFERENCES users(id),
			organization_id BIGINT,
			reward_text TEXT,
			reward_media_ref TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT missions_slots_check CHECK (slots_taken >= 0 AND slots_taken <= slots_max)
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id BIGSERIAL PRIMARY KEY,
			mission_id BIGINT NOT NULL REFERENCES missions(id),
			user_id BIGINT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'PENDING',
			feed_override TEXT NOT NULL DEFAULT 'INHERIT',
			decision_at TIMESTAMPTZ,
			reward_media_ref TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_mission ON submissions (mission_id)`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			mission_id BIGINT,
			kind TEXT NOT NULL,
			delta BIGINT NOT NULL,
			track TEXT,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user ON ledger_entries (user_id)`,
		`CREATE TABLE IF NOT EXISTS threads (
			id BIGSERIAL PRIMARY KEY,
			submission_id BIGINT NOT NULL UNIQUE REFERENCES submissions(id),
			owner_id BIGINT NOT NULL REFERENCES users(id),
			worker_id BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			thread_id BIGINT NOT NULL REFERENCES threads(id),
			author_id BIGINT NOT NULL REFERENCES users(id),
			type TEXT NOT NULL DEFAULT 'TEXT',
			content TEXT NOT NULL,
			media_ref TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages (thread_id)`,
		`CREATE TABLE IF NOT EXISTS feed_posts (
			id BIGSERIAL PRIMARY KEY,
			mission_id BIGINT NOT NULL REFERENCES missions(id),
			submission_id BIGINT NOT NULL UNIQUE REFERENCES submissions(id),
			author_id BIGINT NOT NULL REFERENCES users(id),
			space TEXT NOT NULL,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			editable_until TIMESTAMPTZ,
			text TEXT NOT NULL DEFAULT '',
			media_urls JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS follows (
			id BIGSERIAL PRIMARY KEY,
			follower_id BIGINT NOT NULL REFERENCES users(id),
			organization_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (follower_id, organization_id)
		)`,
	}

	for _, stmt := range statements {
		start := time.Now()
		_, err := db.pool.Exec(ctx, stmt)
		logger.LogQuery(firstLine(stmt), time.Since(start), err)
		if err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	slog.Info("Database schema initialized", slog.String("type", "db"))
	return nil
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}
