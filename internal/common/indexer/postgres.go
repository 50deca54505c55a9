package indexer

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// PostgresIndexer indexes list entries to PostgreSQL
type PostgresIndexer struct {
	db        *sql.DB
	tableName string
	logger    zerolog.Logger
}

// NewPostgresIndexer opens the database and makes sure the entries table exists
func NewPostgresIndexer(ctx context.Context, connStr, tableName string, logger zerolog.Logger) (*PostgresIndexer, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	indexer := &PostgresIndexer{
		db:        db,
		tableName: tableName,
		logger:    logger,
	}

	if err := indexer.ensureTable(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	return indexer, nil
}

func (i *PostgresIndexer) Name() string {
	return "postgres"
}

func (i *PostgresIndexer) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			list_url TEXT NOT NULL,
			position INTEGER NOT NULL,
			source_url TEXT NOT NULL,
			slug TEXT,
			title TEXT NOT NULL,
			tmdb_id TEXT,
			media_type TEXT NOT NULL,
			tmdb_url TEXT,
			resolved BOOLEAN DEFAULT FALSE,
			exported_at TIMESTAMP WITH TIME ZONE,
			indexed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, i.tableName)

	_, err := i.db.ExecContext(ctx, query)
	return err
}

// BulkIndex upserts entries in a single transaction.
// A failing row is logged and skipped so the rest of the batch still lands.
func (i *PostgresIndexer) BulkIndex(ctx context.Context, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, list_url, position, source_url, slug, title,
			tmdb_id, media_type, tmdb_url, resolved, exported_at, indexed_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position,
			title = EXCLUDED.title,
			tmdb_id = EXCLUDED.tmdb_id,
			media_type = EXCLUDED.media_type,
			tmdb_url = EXCLUDED.tmdb_url,
			resolved = EXCLUDED.resolved,
			exported_at = EXCLUDED.exported_at,
			indexed_at = EXCLUDED.indexed_at,
			updated_at = NOW()
	`, i.tableName)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		// Savepoints keep the transaction usable after a failed row
		if _, err := tx.ExecContext(ctx, "SAVEPOINT entry"); err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}

		_, err := stmt.ExecContext(ctx,
			e.ID, e.ListURL, e.Position, e.SourceURL, e.Slug, e.Title,
			nullString(e.TMDBID), string(e.MediaType), nullString(e.TMDBURL), e.Resolved, e.ExportedAt, e.IndexedAt,
		)
		if err != nil {
			i.logger.Warn().Err(err).Str("id", e.ID).Msg("index entry failed")
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT entry"); rbErr != nil {
				return fmt.Errorf("rollback to savepoint: %w", rbErr)
			}
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Close closes the database connection
func (i *PostgresIndexer) Close() error {
	return i.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
