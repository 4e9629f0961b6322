package lists

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/00dav00/chopin-list-be/internal/auth"
	"github.com/00dav00/chopin-list-be/internal/items"
)

type Handler struct {
	Repo  *Repository
	Items *items.Repository
}

func NewHandler(repo *Repository, itemsRepo *items.Repository) *Handler {
	return &Handler{Repo: repo, Items: itemsRepo}
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	out, err := h.Repo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch lists")
	}
	return c.JSON(out)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if !validName(req.Name) {
		return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
	}
	if req.TemplateID != nil {
		if err := parseID(*req.TemplateID, "template_id"); err != nil {
			return err
		}
	}

	list, err := h.Repo.Insert(c.UserContext(), userID, req.Name, req.TemplateID, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create list")
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	list, err := h.getListOr404(c, userID)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	list, err := h.getListOr404(c, userID)
	if err != nil {
		return err
	}

	var req UpdateListRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	// Absent name means nothing to update: return the record as stored,
	// with its existing updated_at.
	if !req.Name.Set {
		return c.JSON(list)
	}
	if !req.Name.Valid || !validName(req.Name.Value) {
		return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
	}

	updated, err := h.Repo.UpdateName(c.UserContext(), userID, list.ID, req.Name.Value, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update list")
	}
	return c.JSON(updated)
}

// Delete removes a list and then its items. Two separate statements, not a
// storage-level cascade.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	listID := c.Params("list_id")
	if err := parseID(listID, "list_id"); err != nil {
		return err
	}

	ctx := c.UserContext()
	if err := h.Repo.Delete(ctx, userID, listID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "List not found.")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete list")
	}
	if err := h.Items.DeleteByList(ctx, userID, listID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete list items")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListItems(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	list, err := h.getListOr404(c, userID)
	if err != nil {
		return err
	}

	out, err := h.Items.ListByList(c.UserContext(), userID, list.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch items")
	}
	return c.JSON(out)
}

func (h *Handler) CreateItem(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	list, err := h.getListOr404(c, userID)
	if err != nil {
		return err
	}

	var req CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if !validName(req.Name) {
		return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
	}

	item, err := h.Items.Insert(c.UserContext(), &items.Item{
		UserID:    userID,
		ListID:    list.ID,
		Name:      req.Name,
		Qty:       req.Qty,
		Unit:      req.Unit,
		SortOrder: req.SortOrder,
	}, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create item")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Reorder validates that the submitted ids are exactly a permutation of the
// list's current item set, then assigns sort_order by position. The bulk
// item update and the list timestamp bump share one precomputed time but
// are two separate writes.
func (h *Handler) Reorder(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	list, err := h.getListOr404(c, userID)
	if err != nil {
		return err
	}

	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	for _, id := range req.ItemIDs {
		if err := parseID(id, "item_id"); err != nil {
			return err
		}
	}

	ctx := c.UserContext()
	current, err := h.Items.IDsByList(ctx, userID, list.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch items")
	}
	if err := validateReorder(req.ItemIDs, current); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	now := time.Now().UTC()
	if err := h.Items.ReorderPositions(ctx, userID, list.ID, req.ItemIDs, now); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reorder items")
	}
	if err := h.Repo.Touch(ctx, userID, list.ID, now); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update list")
	}

	out, err := h.Items.ListByList(ctx, userID, list.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch items")
	}
	return c.JSON(out)
}

func (h *Handler) getListOr404(c *fiber.Ctx, userID string) (*List, error) {
	listID := c.Params("list_id")
	if err := parseID(listID, "list_id"); err != nil {
		return nil, err
	}

	list, err := h.Repo.GetByID(c.UserContext(), userID, listID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fiber.NewError(fiber.StatusNotFound, "List not found.")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch list")
	}
	return list, nil
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
