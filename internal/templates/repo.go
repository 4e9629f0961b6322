package templates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/00dav00/chopin-list-be/internal/patch"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const templateColumns = `id::text, user_id::text, name, created_at, updated_at`
const templateItemColumns = `id::text, user_id::text, template_id::text, name, qty, unit, sort_order, created_at, updated_at`

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTemplateItem(row pgx.Row) (*TemplateItem, error) {
	var it TemplateItem
	err := row.Scan(
		&it.ID,
		&it.UserID,
		&it.TemplateID,
		&it.Name,
		&it.Qty,
		&it.Unit,
		&it.SortOrder,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) Insert(ctx context.Context, userID, name string, now time.Time) (*Template, error) {
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO templates (user_id, name, created_at, updated_at)
		 VALUES ($1::uuid, $2, $3, $3)
		 RETURNING `+templateColumns,
		userID, name, now,
	)
	return scanTemplate(row)
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Template, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+templateColumns+`
		 FROM templates
		 WHERE user_id = $1::uuid
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, userID, templateID string) (*Template, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1::uuid AND user_id = $2::uuid`,
		templateID, userID,
	)
	return scanTemplate(row)
}

func (r *Repository) UpdateName(ctx context.Context, userID, templateID, name string, now time.Time) (*Template, error) {
	row := r.Pool.QueryRow(ctx,
		`UPDATE templates SET name = $3, updated_at = $4
		 WHERE id = $1::uuid AND user_id = $2::uuid
		 RETURNING `+templateColumns,
		templateID, userID, name, now,
	)
	return scanTemplate(row)
}

func (r *Repository) Delete(ctx context.Context, userID, templateID string) error {
	ct, err := r.Pool.Exec(ctx,
		`DELETE FROM templates WHERE id = $1::uuid AND user_id = $2::uuid`,
		templateID, userID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) InsertItem(ctx context.Context, it *TemplateItem, now time.Time) (*TemplateItem, error) {
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO template_items (user_id, template_id, name, qty, unit, sort_order, created_at, updated_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $7)
		 RETURNING `+templateItemColumns,
		it.UserID, it.TemplateID, it.Name, it.Qty, it.Unit, it.SortOrder, now,
	)
	return scanTemplateItem(row)
}

// InsertItems creates the inline items of a new template, all sharing one
// timestamp.
func (r *Repository) InsertItems(ctx context.Context, batchItems []TemplateItem, now time.Time) error {
	if len(batchItems) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, it := range batchItems {
		batch.Queue(
			`INSERT INTO template_items (user_id, template_id, name, qty, unit, sort_order, created_at, updated_at)
			 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $7)`,
			it.UserID, it.TemplateID, it.Name, it.Qty, it.Unit, it.SortOrder, now,
		)
	}

	br := r.Pool.SendBatch(ctx, batch)
	for range batchItems {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert template items: %w", err)
		}
	}
	return br.Close()
}

func (r *Repository) GetItemByID(ctx context.Context, userID, templateID, itemID string) (*TemplateItem, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+templateItemColumns+`
		 FROM template_items
		 WHERE id = $1::uuid AND template_id = $2::uuid AND user_id = $3::uuid`,
		itemID, templateID, userID,
	)
	return scanTemplateItem(row)
}

func (r *Repository) ListItems(ctx context.Context, userID, templateID string) ([]TemplateItem, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+templateItemColumns+`
		 FROM template_items
		 WHERE template_id = $1::uuid AND user_id = $2::uuid
		 ORDER BY sort_order ASC, created_at ASC`,
		templateID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TemplateItem, 0)
	for rows.Next() {
		it, err := scanTemplateItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// ItemUpdate carries the fields of a partial template item update.
type ItemUpdate struct {
	Name      patch.Field[string]
	Qty       patch.Field[float64]
	Unit      patch.Field[string]
	SortOrder patch.Field[int]
}

func (u ItemUpdate) Empty() bool {
	return !u.Name.Set && !u.Qty.Set && !u.Unit.Set && !u.SortOrder.Set
}

func (r *Repository) UpdateItem(ctx context.Context, userID, templateID, itemID string, u ItemUpdate, now time.Time) (*TemplateItem, error) {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 8)
	add := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Name.Set {
		add("name", u.Name.Value)
	}
	if u.Qty.Set {
		add("qty", u.Qty.Ptr())
	}
	if u.Unit.Set {
		add("unit", u.Unit.Ptr())
	}
	if u.SortOrder.Set {
		add("sort_order", u.SortOrder.Value)
	}
	add("updated_at", now)

	args = append(args, itemID, templateID, userID)
	query := fmt.Sprintf(
		"UPDATE template_items SET %s WHERE id = $%d::uuid AND template_id = $%d::uuid AND user_id = $%d::uuid RETURNING %s",
		strings.Join(set, ", "), len(args)-2, len(args)-1, len(args), templateItemColumns,
	)

	return scanTemplateItem(r.Pool.QueryRow(ctx, query, args...))
}

func (r *Repository) DeleteItem(ctx context.Context, userID, templateID, itemID string) error {
	ct, err := r.Pool.Exec(ctx,
		`DELETE FROM template_items WHERE id = $1::uuid AND template_id = $2::uuid AND user_id = $3::uuid`,
		itemID, templateID, userID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteItemsByTemplate removes every item of a template. Part of the
// explicit two-step template delete cascade.
func (r *Repository) DeleteItemsByTemplate(ctx context.Context, userID, templateID string) error {
	_, err := r.Pool.Exec(ctx,
		`DELETE FROM template_items WHERE template_id = $1::uuid AND user_id = $2::uuid`,
		templateID, userID,
	)
	return err
}
