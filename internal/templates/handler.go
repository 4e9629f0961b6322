package templates

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/00dav00/chopin-list-be/internal/auth"
	"github.com/00dav00/chopin-list-be/internal/items"
	"github.com/00dav00/chopin-list-be/internal/lists"
)

type Handler struct {
	Repo  *Repository
	Lists *lists.Repository
	Items *items.Repository
}

func NewHandler(repo *Repository, listsRepo *lists.Repository, itemsRepo *items.Repository) *Handler {
	return &Handler{Repo: repo, Lists: listsRepo, Items: itemsRepo}
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	out, err := h.Repo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch templates")
	}
	return c.JSON(out)
}

// Create inserts the template and then its inline items under one shared
// timestamp, responding with the full detail.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if !validName(req.Name) {
		return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
	}
	for _, it := range req.Items {
		if !validName(it.Name) {
			return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
		}
	}

	ctx := c.UserContext()
	now := time.Now().UTC()
	tpl, err := h.Repo.Insert(ctx, userID, req.Name, now)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create template")
	}

	batch := make([]TemplateItem, 0, len(req.Items))
	for _, it := range req.Items {
		batch = append(batch, TemplateItem{
			UserID:     userID,
			TemplateID: tpl.ID,
			Name:       it.Name,
			Qty:        it.Qty,
			Unit:       it.Unit,
			SortOrder:  it.SortOrder,
		})
	}
	if err := h.Repo.InsertItems(ctx, batch, now); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create template items")
	}

	tplItems, err := h.Repo.ListItems(ctx, userID, tpl.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch template items")
	}
	return c.Status(fiber.StatusCreated).JSON(TemplateDetail{Template: *tpl, Items: tplItems})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tpl, err := h.getTemplateOr404(c, userID)
	if err != nil {
		return err
	}

	tplItems, err := h.Repo.ListItems(c.UserContext(), userID, tpl.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch template items")
	}
	return c.JSON(TemplateDetail{Template: *tpl, Items: tplItems})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tpl, err := h.getTemplateOr404(c, userID)
	if err != nil {
		return err
	}

	var req UpdateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if !req.Name.Set {
		return c.JSON(tpl)
	}
	if !req.Name.Valid || !validName(req.Name.Value) {
		return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
	}

	updated, err := h.Repo.UpdateName(c.UserContext(), userID, tpl.ID, req.Name.Value, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update template")
	}
	return c.JSON(updated)
}

// Delete removes a template and then its items. Two separate statements,
// not a storage-level cascade.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	templateID := c.Params("template_id")
	if err := parseID(templateID, "template_id"); err != nil {
		return err
	}

	ctx := c.UserContext()
	if err := h.Repo.Delete(ctx, userID, templateID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "Template not found.")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete template")
	}
	if err := h.Repo.DeleteItemsByTemplate(ctx, userID, templateID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete template items")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListItems(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tpl, err := h.getTemplateOr404(c, userID)
	if err != nil {
		return err
	}

	out, err := h.Repo.ListItems(c.UserContext(), userID, tpl.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch template items")
	}
	return c.JSON(out)
}

func (h *Handler) CreateItem(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tpl, err := h.getTemplateOr404(c, userID)
	if err != nil {
		return err
	}

	var req CreateTemplateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if !validName(req.Name) {
		return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
	}

	item, err := h.Repo.InsertItem(c.UserContext(), &TemplateItem{
		UserID:     userID,
		TemplateID: tpl.ID,
		Name:       req.Name,
		Qty:        req.Qty,
		Unit:       req.Unit,
		SortOrder:  req.SortOrder,
	}, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create template item")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateItem(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tpl, err := h.getTemplateOr404(c, userID)
	if err != nil {
		return err
	}

	item, err := h.getItemOr404(c, userID, tpl.ID)
	if err != nil {
		return err
	}

	var req UpdateTemplateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.Name.Set && (!req.Name.Valid || !validName(req.Name.Value)) {
		return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
	}
	if req.SortOrder.Set && !req.SortOrder.Valid {
		return fiber.NewError(fiber.StatusBadRequest, "Sort order must not be null.")
	}

	update := ItemUpdate{
		Name:      req.Name,
		Qty:       req.Qty,
		Unit:      req.Unit,
		SortOrder: req.SortOrder,
	}
	if update.Empty() {
		return c.JSON(item)
	}

	updated, err := h.Repo.UpdateItem(c.UserContext(), userID, tpl.ID, item.ID, update, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update template item")
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteItem(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tpl, err := h.getTemplateOr404(c, userID)
	if err != nil {
		return err
	}

	itemID := c.Params("item_id")
	if err := parseID(itemID, "template_item_id"); err != nil {
		return err
	}

	if err := h.Repo.DeleteItem(c.UserContext(), userID, tpl.ID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "Template item not found.")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete template item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateList instantiates the template as a new list: the list insert
// commits first, then the items are copied with purchase state reset, all
// sharing one timestamp. There is no transaction around the two steps; a
// failure after the first leaves an empty list behind, which stays visible.
func (h *Handler) CreateList(c *fiber.Ctx) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	tpl, err := h.getTemplateOr404(c, userID)
	if err != nil {
		return err
	}

	var req CreateListFromTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	name := tpl.Name
	if req.Name != nil {
		if !validName(*req.Name) {
			return fiber.NewError(fiber.StatusBadRequest, "Name must be 1-200 characters.")
		}
		name = *req.Name
	}

	ctx := c.UserContext()
	tplItems, err := h.Repo.ListItems(ctx, userID, tpl.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch template items")
	}

	now := time.Now().UTC()
	list, err := h.Lists.Insert(ctx, userID, name, &tpl.ID, now)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create list")
	}

	copies := make([]items.Item, 0, len(tplItems))
	for _, it := range tplItems {
		copies = append(copies, items.Item{
			UserID:    userID,
			ListID:    list.ID,
			Name:      it.Name,
			Qty:       it.Qty,
			Unit:      it.Unit,
			SortOrder: it.SortOrder,
		})
	}
	if err := h.Items.InsertMany(ctx, copies, now); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to copy template items")
	}

	return c.Status(fiber.StatusCreated).JSON(list)
}

func (h *Handler) getTemplateOr404(c *fiber.Ctx, userID string) (*Template, error) {
	templateID := c.Params("template_id")
	if err := parseID(templateID, "template_id"); err != nil {
		return nil, err
	}

	tpl, err := h.Repo.GetByID(c.UserContext(), userID, templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Template not found.")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch template")
	}
	return tpl, nil
}

func (h *Handler) getItemOr404(c *fiber.Ctx, userID, templateID string) (*TemplateItem, error) {
	itemID := c.Params("item_id")
	if err := parseID(itemID, "template_item_id"); err != nil {
		return nil, err
	}

	item, err := h.Repo.GetItemByID(c.UserContext(), userID, templateID, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Template item not found.")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch template item")
	}
	return item, nil
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
