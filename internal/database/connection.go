package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dogubilet/ticket-backend/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// maskPassword masks the password in a database URL for safe logging
func maskPassword(url string) string {
	re := regexp.MustCompile(`(postgres(?:ql)?://[^:]+:)([^@]+)(@.+)`)
	return re.ReplaceAllString(url, "${1}****${3}")
}

// NewConnection opens a pooled Postgres connection through the pgx stdlib driver
func NewConnection(cfg config.DatabaseConfig, logger *logrus.Logger) (*sqlx.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	logger.WithField("url", maskPassword(cfg.URL)).Info("Connecting to database")

	pgxConfig, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Transaction-mode poolers (PgBouncer, Supavisor on 6543) cannot hold prepared statements
	if strings.Contains(cfg.URL, ":6543") || strings.Contains(cfg.URL, "pgbouncer=true") {
		pgxConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		logger.Info("Using simple protocol for connection pooler")
	}

	connStr := stdlib.RegisterConnConfig(pgxConfig)

	db, err := sqlx.Connect("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
