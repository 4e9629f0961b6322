package items

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/00dav00/chopin-list-be/internal/auth"
	"github.com/00dav00/chopin-list-be/internal/patch"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// Update applies a partial item update. Only fields present in the payload
// are written; an empty update set returns the current record without
// touching updated_at.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID := c.Params("item_id")
	if err := parseID(itemID, "item_id"); err != nil {
		return err
	}

	ctx := c.UserContext()
	item, err := h.Repo.GetByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "Item not found.")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch item")
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := validateItemUpdate(&req); err != nil {
		return err
	}

	update := Update{
		Name:      req.Name,
		Qty:       req.Qty,
		Unit:      req.Unit,
		SortOrder: req.SortOrder,
		Purchased: req.Purchased,
	}
	if update.Empty() {
		return c.JSON(item)
	}

	updated, err := h.Repo.Update(ctx, userID, itemID, update, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update item")
	}
	return c.JSON(updated)
}

// Toggle flips the purchased flag to its complement, applying the same
// purchased_at rule as an explicit update.
func (h *Handler) Toggle(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID := c.Params("item_id")
	if err := parseID(itemID, "item_id"); err != nil {
		return err
	}

	ctx := c.UserContext()
	item, err := h.Repo.GetByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "Item not found.")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch item")
	}

	update := Update{Purchased: patch.Set(!item.Purchased)}

	updated, err := h.Repo.Update(ctx, userID, itemID, update, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to toggle item")
	}
	return c.JSON(updated)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID := c.Params("item_id")
	if err := parseID(itemID, "item_id"); err != nil {
		return err
	}

	if err := h.Repo.Delete(c.UserContext(), userID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "Item not found.")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func validateItemUpdate(req *UpdateItemRequest) error {
	if req.Name.Set && (!req.Name.Valid || !validName(req.Name.Value)) {
		return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
	}
	if req.SortOrder.Set && !req.SortOrder.Valid {
		return fiber.NewError(fiber.StatusBadRequest, "Sort order must not be null.")
	}
	if req.Purchased.Set && !req.Purchased.Valid {
		return fiber.NewError(fiber.StatusBadRequest, "Purchased must not be null.")
	}
	return nil
}

func validName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= 200
}

func parseID(value, name string) error {
	if _, err := uuid.Parse(value); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid "+name+".")
	}
	return nil
}
