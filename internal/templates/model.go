package templates

import (
	"time"

	"github.com/00dav00/chopin-list-be/internal/patch"
)

// Template is a reusable list blueprint.
type Template struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateItem mirrors an item minus the purchase fields.
type TemplateItem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TemplateID string    `json:"template_id"`
	Name       string    `json:"name"`
	Qty        *float64  `json:"qty"`
	Unit       *string   `json:"unit"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TemplateDetail is a template with its items in display order.
type TemplateDetail struct {
	Template
	Items []TemplateItem `json:"items"`
}

type CreateTemplateRequest struct {
	Name  string                      `json:"name"`
	Items []CreateTemplateItemRequest `json:"items"`
}

type UpdateTemplateRequest struct {
	Name patch.Field[string] `json:"name"`
}

type CreateTemplateItemRequest struct {
	Name      string   `json:"name"`
	Qty       *float64 `json:"qty"`
	Unit      *string  `json:"unit"`
	SortOrder int      `json:"sort_order"`
}

type UpdateTemplateItemRequest struct {
	Name      patch.Field[string]  `json:"name"`
	Qty       patch.Field[float64] `json:"qty"`
	Unit      patch.Field[string]  `json:"unit"`
	SortOrder patch.Field[int]     `json:"sort_order"`
}

type CreateListFromTemplateRequest struct {
	Name *string `json:"name"`
}
