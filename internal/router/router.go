package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/00dav00/chopin-list-be/internal/auth"
	"github.com/00dav00/chopin-list-be/internal/items"
	"github.com/00dav00/chopin-list-be/internal/lists"
	"github.com/00dav00/chopin-list-be/internal/templates"
)

type Router struct {
	AuthHandler      *auth.Handler
	ListsHandler     *lists.Handler
	ItemsHandler     *items.Handler
	TemplatesHandler *templates.Handler
	AuthMW           fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api", r.AuthMW)

	api.Get("/me", r.AuthHandler.Me)

	api.Get("/lists", r.ListsHandler.List)
	api.Post("/lists", r.ListsHandler.Create)
	api.Get("/lists/:list_id", r.ListsHandler.Get)
	api.Patch("/lists/:list_id", r.ListsHandler.Update)
	api.Delete("/lists/:list_id", r.ListsHandler.Delete)
	api.Get("/lists/:list_id/items", r.ListsHandler.ListItems)
	api.Post("/lists/:list_id/items", r.ListsHandler.CreateItem)
	api.Post("/lists/:list_id/reorder", r.ListsHandler.Reorder)

	api.Patch("/items/:item_id", r.ItemsHandler.Update)
	api.Post("/items/:item_id/toggle", r.ItemsHandler.Toggle)
	api.Delete("/items/:item_id", r.ItemsHandler.Delete)

	api.Get("/templates", r.TemplatesHandler.List)
	api.Post("/templates", r.TemplatesHandler.Create)
	api.Get("/templates/:template_id", r.TemplatesHandler.Get)
	api.Patch("/templates/:template_id", r.TemplatesHandler.Update)
	api.Delete("/templates/:template_id", r.TemplatesHandler.Delete)
	api.Get("/templates/:template_id/items", r.TemplatesHandler.ListItems)
	api.Post("/templates/:template_id/items", r.TemplatesHandler.CreateItem)
	api.Patch("/templates/:template_id/items/:item_id", r.TemplatesHandler.UpdateItem)
	api.Delete("/templates/:template_id/items/:item_id", r.TemplatesHandler.DeleteItem)
	api.Post("/templates/:template_id/create-list", r.TemplatesHandler.CreateList)
}
