package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"latthi-storefront/internal/domain"
)

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Store over the documents table created by the
// migrations in internal/migrate.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresStore{pool: pool, logger: logger}
}

func (s *postgresStore) Get(ctx context.Context, path string) (*Document, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	const q = `
SELECT path, body, version, updated_at
FROM documents
WHERE path = $1
`
	var d Document
	err := s.pool.QueryRow(ctx, q, path).Scan(&d.Path, &d.Data, &d.Version, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.logger.Printf("docstore: get path=%s error=%v", path, err)
		return nil, err
	}
	if d.Data == nil {
		d.Data = map[string]interface{}{}
	}
	return &d, nil
}

func (s *postgresStore) List(ctx context.Context, prefix string) ([]Document, error) {
	if err := validatePath(prefix); err != nil {
		return nil, err
	}
	const q = `
SELECT path, body, version, updated_at
FROM documents
WHERE starts_with(path, $1)
ORDER BY path ASC
`
	rows, err := s.pool.Query(ctx, q, prefix+"/")
	if err != nil {
		s.logger.Printf("docstore: list prefix=%s error=%v", prefix, err)
		return nil, err
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Path, &d.Data, &d.Version, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if d.Data == nil {
			d.Data = map[string]interface{}{}
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		s.logger.Printf("docstore: list rows prefix=%s error=%v", prefix, err)
		return nil, err
	}
	return result, nil
}

func (s *postgresStore) Commit(ctx context.Context, writes ...Write) error {
	if err := validateWrites(writes); err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, w := range writes {
		if err := s.applyInTx(ctx, tx, w); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Printf("docstore: commit writes=%d error=%v", len(writes), err)
		return err
	}
	return nil
}

func (s *postgresStore) applyInTx(ctx context.Context, tx pgx.Tx, w Write) error {
	var (
		body    map[string]interface{}
		version int64
		exists  = true
	)
	err := tx.QueryRow(ctx, `
SELECT body, version
FROM documents
WHERE path = $1
FOR UPDATE
`, w.Path).Scan(&body, &version)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		exists = false
	}

	if err := checkVersion(w, exists, version); err != nil {
		return err
	}

	if w.Delete {
		if !exists {
			return nil
		}
		_, err := tx.Exec(ctx, `DELETE FROM documents WHERE path = $1`, w.Path)
		return err
	}

	next, err := applyWrite(body, w)
	if err != nil {
		return fmt.Errorf("apply write %s: %w", w.Path, err)
	}

	if !exists && w.IfVersion != nil {
		// FOR UPDATE locks nothing on a missing row, so a concurrent create
		// of the same path is only caught by the insert itself.
		tag, err := tx.Exec(ctx, `
INSERT INTO documents (path, body, version, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (path) DO NOTHING
`, w.Path, next)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s already exists", domain.ErrVersionConflict, w.Path)
		}
		return nil
	}

	_, err = tx.Exec(ctx, `
INSERT INTO documents (path, body, version, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (path) DO UPDATE
SET body = EXCLUDED.body,
    version = documents.version + 1,
    updated_at = now()
`, w.Path, next)
	return err
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
