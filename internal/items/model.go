package items

import (
	"time"

	"github.com/00dav00/chopin-list-be/internal/patch"
)

// Item is a single line within a list. purchased and purchased_at move
// together: purchased_at is non-null exactly when purchased is true.
type Item struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ListID      string     `json:"list_id"`
	Name        string     `json:"name"`
	Qty         *float64   `json:"qty"`
	Unit        *string    `json:"unit"`
	Purchased   bool       `json:"purchased"`
	PurchasedAt *time.Time `json:"purchased_at"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type UpdateItemRequest struct {
	Name      patch.Field[string]  `json:"name"`
	Qty       patch.Field[float64] `json:"qty"`
	Unit      patch.Field[string]  `json:"unit"`
	SortOrder patch.Field[int]     `json:"sort_order"`
	Purchased patch.Field[bool]    `json:"purchased"`
}
