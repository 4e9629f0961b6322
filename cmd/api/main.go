package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/00dav00/chopin-list-be/internal/auth"
	"github.com/00dav00/chopin-list-be/internal/config"
	"github.com/00dav00/chopin-list-be/internal/items"
	"github.com/00dav00/chopin-list-be/internal/lists"
	"github.com/00dav00/chopin-list-be/internal/router"
	"github.com/00dav00/chopin-list-be/internal/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("error pinging database: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	var verifier auth.TokenVerifier
	if cfg.IsDev() {
		secret := []byte(cfg.DevTokenSecret)
		verifier = auth.NewDevVerifier(secret)
		registerDevToken(app, secret)
		log.Println("dev token verifier enabled")
	} else {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}

	userStore := auth.NewStore(pool)
	itemsRepo := items.NewRepository(pool)
	listsRepo := lists.NewRepository(pool)
	templatesRepo := templates.NewRepository(pool)

	r := &router.Router{
		AuthHandler:      auth.NewHandler(),
		ListsHandler:     lists.NewHandler(listsRepo, itemsRepo),
		ItemsHandler:     items.NewHandler(itemsRepo),
		TemplatesHandler: templates.NewHandler(templatesRepo, listsRepo, itemsRepo),
		AuthMW:           auth.Middleware(verifier, userStore),
	}
	r.RegisterRoutes(app)

	log.Println("Listening on port", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// registerDevToken mints tokens the DevVerifier accepts so the API can be
// driven locally without Google credentials.
func registerDevToken(app *fiber.App, secret []byte) {
	app.Get("/dev/token", func(c *fiber.Ctx) error {
		claims := &auth.Claims{
			Subject: c.Query("sub", "dev-subject"),
			Email:   c.Query("email", "dev@example.com"),
			Name:    c.Query("name", "Dev User"),
			Issuer:  "accounts.google.com",
		}
		signed, err := auth.MintDevToken(secret, claims, 24*time.Hour)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"token": signed})
	})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		log.Printf("%s %s %d %s", c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}
