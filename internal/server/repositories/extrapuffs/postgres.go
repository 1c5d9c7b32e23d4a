// Package extrapuffs provides the PostgreSQL repository for the extra_puffs
// event log.
package extrapuffs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/puffkeeper/internal/dbx"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores puff and fills CreatedAt from the database default.
func (r *PostgresRepository) Insert(ctx context.Context, puff *models.ExtraPuff) (*models.ExtraPuff, error) {
	query := `
		INSERT INTO extra_puffs (id, timestamp)
		VALUES ($1, $2)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, puff.ID, puff.Timestamp).Scan(&puff.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return puff, nil
}

// Delete hard-deletes the row with the given id and reports whether a row
// was removed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM extra_puffs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// List returns all events, newest first. The slice is empty, not nil, when
// there are none.
func (r *PostgresRepository) List(ctx context.Context) ([]models.ExtraPuff, error) {
	query := `SELECT id, timestamp, created_at FROM extra_puffs ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select extra puffs: %w", err)
	}
	defer rows.Close()

	result := []models.ExtraPuff{}
	for rows.Next() {
		var p models.ExtraPuff
		if err := rows.Scan(&p.ID, &p.Timestamp, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan extra puff: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
