package items

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

const itemColumns = `id::text, user_id::text, list_id::text, name, qty, unit, purchased, purchased_at, sort_order, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(
		&it.ID,
		&it.UserID,
		&it.ListID,
		&it.Name,
		&it.Qty,
		&it.Unit,
		&it.Purchased,
		&it.PurchasedAt,
		&it.SortOrder,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Insert creates an unpurchased item stamped with the given time.
func (r *Repository) Insert(ctx context.Context, it *Item, now time.Time) (*Item, error) {
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO items (user_id, list_id, name, qty, unit, purchased, purchased_at, sort_order, created_at, updated_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, false, NULL, $6, $7, $7)
		 RETURNING `+itemColumns,
		it.UserID, it.ListID, it.Name, it.Qty, it.Unit, it.SortOrder, now,
	)
	return scanItem(row)
}

// InsertMany creates a batch of unpurchased items sharing one timestamp.
// Used when instantiating a list from a template.
func (r *Repository) InsertMany(ctx context.Context, batchItems []Item, now time.Time) error {
	if len(batchItems) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, it := range batchItems {
		batch.Queue(
			`INSERT INTO items (user_id, list_id, name, qty, unit, purchased, purchased_at, sort_order, created_at, updated_at)
			 VALUES ($1::uuid, $2::uuid, $3, $4, $5, false, NULL, $6, $7, $7)`,
			it.UserID, it.ListID, it.Name, it.Qty, it.Unit, it.SortOrder, now,
		)
	}

	br := r.Pool.SendBatch(ctx, batch)
	for range batchItems {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert items: %w", err)
		}
	}
	return br.Close()
}

func (r *Repository) GetByID(ctx context.Context, userID, itemID string) (*Item, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1::uuid AND user_id = $2::uuid`,
		itemID, userID,
	)
	return scanItem(row)
}

// ListByList returns the items of a list in display order. Ties on
// sort_order break by creation time so equal sort keys stay deterministic.
func (r *Repository) ListByList(ctx context.Context, userID, listID string) ([]Item, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+itemColumns+`
		 FROM items
		 WHERE list_id = $1::uuid AND user_id = $2::uuid
		 ORDER BY sort_order ASC, created_at ASC`,
		listID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// IDsByList returns the full current id set for (list, owner).
func (r *Repository) IDsByList(ctx context.Context, userID, listID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id::text FROM items WHERE list_id = $1::uuid AND user_id = $2::uuid`,
		listID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update applies the set fields of u plus the purchased_at consistency rule
// in a single statement. The caller guarantees u is not empty.
func (r *Repository) Update(ctx context.Context, userID, itemID string, u Update, now time.Time) (*Item, error) {
	set := make([]string, 0, 7)
	args := make([]interface{}, 0, 9)
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
	if u.Purchased.Set {
		add("purchased", u.Purchased.Value)
		if u.Purchased.Value {
			add("purchased_at", now)
		} else {
			add("purchased_at", nil)
		}
	}
	add("updated_at", now)

	args = append(args, itemID, userID)
	query := fmt.Sprintf(
		"UPDATE items SET %s WHERE id = $%d::uuid AND user_id = $%d::uuid RETURNING %s",
		strings.Join(set, ", "), len(args)-1, len(args), itemColumns,
	)

	return scanItem(r.Pool.QueryRow(ctx, query, args...))
}

// Update carries the fields of a partial item update. Each field tracks
// whether it was present in the request, so absent never overwrites.
type Update struct {
	Name      patch.Field[string]
	Qty       patch.Field[float64]
	Unit      patch.Field[string]
	SortOrder patch.Field[int]
	Purchased patch.Field[bool]
}

func (u Update) Empty() bool {
	return !u.Name.Set && !u.Qty.Set && !u.Unit.Set && !u.SortOrder.Set && !u.Purchased.Set
}

// ReorderPositions assigns sort_order = position for every id in ids, all
// stamped with the same updated_at, in one bulk statement.
func (r *Repository) ReorderPositions(ctx context.Context, userID, listID string, ids []string, now time.Time) error {
	positions := make([]int32, len(ids))
	for i := range ids {
		positions[i] = int32(i)
	}

	_, err := r.Pool.Exec(ctx,
		`UPDATE items AS i
		 SET sort_order = u.position, updated_at = $4
		 FROM unnest($1::uuid[], $2::int[]) AS u(id, position)
		 WHERE i.id = u.id AND i.list_id = $3::uuid AND i.user_id = $5::uuid`,
		ids, positions, listID, now, userID,
	)
	return err
}

func (r *Repository) Delete(ctx context.Context, userID, itemID string) error {
	ct, err := r.Pool.Exec(ctx,
		`DELETE FROM items WHERE id = $1::uuid AND user_id = $2::uuid`,
		itemID, userID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteByList removes every item of a list. Part of the explicit two-step
// list delete cascade.
func (r *Repository) DeleteByList(ctx context.Context, userID, listID string) error {
	_, err := r.Pool.Exec(ctx,
		`DELETE FROM items WHERE list_id = $1::uuid AND user_id = $2::uuid`,
		listID, userID,
	)
	return err
}
