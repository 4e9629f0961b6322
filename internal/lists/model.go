package lists

import (
	"time"

	"github.com/00dav00/chopin-list-be/internal/patch"
)

// List is an owned collection of items. template_id records the template a
// list was instantiated from; it is informational only.
type List struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	TemplateID *string   `json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateListRequest struct {
	Name       string  `json:"name"`
	TemplateID *string `json:"template_id"`
}

type UpdateListRequest struct {
	Name patch.Field[string] `json:"name"`
}

type CreateItemRequest struct {
	Name      string   `json:"name"`
	Qty       *float64 `json:"qty"`
	Unit      *string  `json:"unit"`
	SortOrder int      `json:"sort_order"`
}

type ReorderRequest struct {
	ItemIDs []string `json:"item_ids"`
}
