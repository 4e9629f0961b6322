package lists

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const listColumns = `id::text, user_id::text, name, template_id::text, created_at, updated_at`

func scanList(row pgx.Row) (*List, error) {
	var l List
	err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.TemplateID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) Insert(ctx context.Context, userID, name string, templateID *string, now time.Time) (*List, error) {
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO lists (user_id, name, template_id, created_at, updated_at)
		 VALUES ($1::uuid, $2, $3::uuid, $4, $4)
		 RETURNING `+listColumns,
		userID, name, templateID, now,
	)
	return scanList(row)
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]List, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+listColumns+`
		 FROM lists
		 WHERE user_id = $1::uuid
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]List, 0)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, userID, listID string) (*List, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = $1::uuid AND user_id = $2::uuid`,
		listID, userID,
	)
	return scanList(row)
}

func (r *Repository) UpdateName(ctx context.Context, userID, listID, name string, now time.Time) (*List, error) {
	row := r.Pool.QueryRow(ctx,
		`UPDATE lists SET name = $3, updated_at = $4
		 WHERE id = $1::uuid AND user_id = $2::uuid
		 RETURNING `+listColumns,
		listID, userID, name, now,
	)
	return scanList(row)
}

// Touch bumps updated_at to the given time. Reorder uses it so the list's
// "last modified" signal matches the items' shared timestamp.
func (r *Repository) Touch(ctx context.Context, userID, listID string, now time.Time) error {
	_, err := r.Pool.Exec(ctx,
		`UPDATE lists SET updated_at = $3 WHERE id = $1::uuid AND user_id = $2::uuid`,
		listID, userID, now,
	)
	return err
}

func (r *Repository) Delete(ctx context.Context, userID, listID string) error {
	ct, err := r.Pool.Exec(ctx,
		`DELETE FROM lists WHERE id = $1::uuid AND user_id = $2::uuid`,
		listID, userID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
