package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// PostgresStore persiste las claves del diseñador en una tabla clave/valor
type PostgresStore struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

// NewPostgresStore crea el almacenamiento sobre una conexión abierta
func NewPostgresStore(db *sql.DB, table string, logger *logrus.Logger) (*PostgresStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid state table name: %q", table)
	}
	return &PostgresStore{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		logger: logger,
	}, nil
}

// EnsureSchema crea la tabla si no existe
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	query := `CREATE TABLE IF NOT EXISTS ` + p.table + ` (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error creating state table: %w", err)
	}
	return nil
}

// Get obtiene el valor de una clave
func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	query := `SELECT value FROM ` + p.table + ` WHERE key = $1`

	var value []byte
	err := p.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("error querying key %s: %w", key, err)
	}
	return value, nil
}

// Set guarda el valor de una clave (UPSERT)
func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	query := `
		INSERT INTO ` + p.table + ` (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := p.db.ExecContext(ctx, query, key, string(value)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			p.logger.WithFields(logrus.Fields{
				"key":  key,
				"code": string(pqErr.Code),
			}).Error("PostgreSQL rejected designer state write")
		}
		return fmt.Errorf("error writing key %s: %w", key, err)
	}
	return nil
}

// HealthCheck verifica la salud de la base de datos
func (p *PostgresStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
