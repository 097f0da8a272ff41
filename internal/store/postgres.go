package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/painel-economico/indicadores-server/internal/config"
	"github.com/painel-economico/indicadores-server/internal/indicator"
	"github.com/painel-economico/indicadores-server/internal/store/auth"
)

// PostgresStore persists the snapshot and annotations in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store backed by a new connection pool for
// the configured database. The connection is verified before returning.
func NewPostgresStore(ctx context.Context, cfg *config.Config) (*PostgresStore, error) {
	if cfg == nil || cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for postgres storage")
	}

	pool, err := buildConnectionPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	store := NewPostgresStoreWithPool(pool)
	if err := store.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.InfoContext(ctx, "Database connection established",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Database)
	return store, nil
}

// NewPostgresStoreWithPool wraps an existing pool. The caller keeps
// ownership questions out of this constructor: Close still closes the
// pool.
func NewPostgresStoreWithPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// buildConnectionPool creates a database connection pool with proper configuration.
func buildConnectionPool(ctx context.Context, dbCfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	var connStr string
	var err error

	if dbCfg.DynamicAuth != nil {
		// Credentials are resolved per connection by the auth hook, so
		// the connection string carries none.
		connStr = dbCfg.BuildConnectionStringWithAuth(dbCfg.User, "")
	} else {
		connStr, err = dbCfg.GetConnectionString()
		if err != nil {
			return nil, err
		}
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	// Configure pool settings from config
	if dbCfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = dbCfg.MaxOpenConns
	}
	if dbCfg.MaxIdleConns > 0 {
		poolConfig.MinConns = dbCfg.MaxIdleConns
	}
	if dbCfg.ConnMaxLifetime != "" {
		lifetime, err := time.ParseDuration(dbCfg.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connMaxLifetime: %w", err)
		}
		poolConfig.MaxConnLifetime = lifetime
	}

	if dbCfg.DynamicAuth != nil {
		authFn, err := auth.NewDynamicAuth(ctx, dbCfg, dbCfg.User)
		if err != nil {
			return nil, fmt.Errorf("failed to configure dynamic authentication: %w", err)
		}
		poolConfig.BeforeConnect = authFn
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	return pool, nil
}

// ReplaceAll replaces the persisted snapshot inside one transaction.
// Row ids are assigned by slice position, starting at 1.
func (s *PostgresStore) ReplaceAll(ctx context.Context, items []indicator.Indicator) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "Failed to roll back snapshot transaction", "error", rollbackErr)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM indicadores`); err != nil {
		return fmt.Errorf("failed to clear indicators: %w", err)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"indicadores"},
		[]string{"id", "nome", "valor", "descricao", "fonte", "valor_bruto", "validado"},
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			item := items[i]
			return []any{i + 1, item.Name, item.Value, item.Description, item.Source, item.RawValue, item.Validated}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert indicators: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// SelectAll returns the persisted snapshot ordered by row id.
func (s *PostgresStore) SelectAll(ctx context.Context) ([]indicator.Indicator, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT nome, valor, descricao, fonte, valor_bruto, validado
		 FROM indicadores
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query indicators: %w", err)
	}
	defer rows.Close()

	var items []indicator.Indicator
	for rows.Next() {
		var item indicator.Indicator
		if err := rows.Scan(&item.Name, &item.Value, &item.Description, &item.Source, &item.RawValue, &item.Validated); err != nil {
			return nil, fmt.Errorf("failed to scan indicator row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read indicator rows: %w", err)
	}
	return items, nil
}

// GetAnnotation returns the annotation for a slug.
func (s *PostgresStore) GetAnnotation(ctx context.Context, slug string) (Annotation, error) {
	annotation := Annotation{Slug: slug}
	err := s.pool.QueryRow(ctx,
		`SELECT texto, atualizado_em FROM anotacoes WHERE slug = $1`,
		slug,
	).Scan(&annotation.Text, &annotation.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Annotation{}, ErrAnnotationNotFound
	}
	if err != nil {
		return Annotation{}, fmt.Errorf("failed to query annotation: %w", err)
	}
	return annotation, nil
}

// PutAnnotation creates or updates the annotation for a slug.
func (s *PostgresStore) PutAnnotation(ctx context.Context, slug, text string) (Annotation, error) {
	annotation := Annotation{Slug: slug, Text: text}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO anotacoes (slug, texto, atualizado_em)
		 VALUES ($1, $2, now())
		 ON CONFLICT (slug) DO UPDATE SET texto = EXCLUDED.texto, atualizado_em = now()
		 RETURNING atualizado_em`,
		slug, text,
	).Scan(&annotation.UpdatedAt)
	if err != nil {
		return Annotation{}, fmt.Errorf("failed to upsert annotation: %w", err)
	}
	return annotation, nil
}

// Ping verifies the database connection is still alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	slog.Info("Closing database connection pool")
	s.pool.Close()
}
