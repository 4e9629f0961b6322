package templates_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/00dav00/chopin-list-be/internal/auth"
	"github.com/00dav00/chopin-list-be/internal/items"
	"github.com/00dav00/chopin-list-be/internal/lists"
	"github.com/00dav00/chopin-list-be/internal/router"
	"github.com/00dav00/chopin-list-be/internal/templates"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping handler test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type staticVerifier struct {
	claims auth.Claims
}

func (v staticVerifier) Verify(_ context.Context, _ string) (*auth.Claims, error) {
	c := v.claims
	return &c, nil
}

func newTestApp(t *testing.T, pool *pgxpool.Pool) *fiber.App {
	t.Helper()

	sub := uuid.NewString()
	var userID string
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (google_sub, email, approved, created_at, last_login_at)
		 VALUES ($1, $2, true, now(), now())
		 RETURNING id::text`,
		sub, sub+"@example.com",
	).Scan(&userID)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM items WHERE user_id = $1::uuid`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM lists WHERE user_id = $1::uuid`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM template_items WHERE user_id = $1::uuid`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM templates WHERE user_id = $1::uuid`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, userID)
	})

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

	itemsRepo := items.NewRepository(pool)
	listsRepo := lists.NewRepository(pool)
	templatesRepo := templates.NewRepository(pool)

	verifier := staticVerifier{claims: auth.Claims{
		Subject: sub,
		Email:   sub + "@example.com",
		Issuer:  "accounts.google.com",
	}}

	r := &router.Router{
		AuthHandler:      auth.NewHandler(),
		ListsHandler:     lists.NewHandler(listsRepo, itemsRepo),
		ItemsHandler:     items.NewHandler(itemsRepo),
		TemplatesHandler: templates.NewHandler(templatesRepo, listsRepo, itemsRepo),
		AuthMW:           auth.Middleware(verifier, auth.NewStore(pool)),
	}
	r.RegisterRoutes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer test")

	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createTemplate(t *testing.T, app *fiber.App) templates.TemplateDetail {
	t.Helper()
	resp := doRequest(t, app, "POST", "/api/templates", fiber.Map{
		"name": "Weekly shop",
		"items": []fiber.Map{
			{"name": "Bananas", "qty": 2, "sort_order": 2},
			{"name": "Apples", "qty": 1, "sort_order": 1},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[templates.TemplateDetail](t, resp)
}

func TestCreateTemplateWithInlineItems(t *testing.T) {
	pool := testPool(t)
	app := newTestApp(t, pool)

	tpl := createTemplate(t, app)
	assert.Equal(t, "Weekly shop", tpl.Name)
	require.Len(t, tpl.Items, 2)
	for _, it := range tpl.Items {
		assert.Equal(t, tpl.ID, it.TemplateID)
		assert.True(t, it.CreatedAt.Equal(tpl.CreatedAt), "template and items share one creation time")
	}

	resp := doRequest(t, app, "GET", "/api/templates/"+tpl.ID+"/items", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[[]templates.TemplateItem](t, resp)
	require.Len(t, got, 2)
	assert.Equal(t, "Apples", got[0].Name)
	assert.Equal(t, "Bananas", got[1].Name)
}

func TestCreateListFromTemplate(t *testing.T) {
	pool := testPool(t)
	app := newTestApp(t, pool)
	tpl := createTemplate(t, app)

	resp := doRequest(t, app, "POST", "/api/templates/"+tpl.ID+"/create-list", fiber.Map{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	list := decodeBody[lists.List](t, resp)
	assert.Equal(t, tpl.Name, list.Name, "list name falls back to the template name")
	require.NotNil(t, list.TemplateID)
	assert.Equal(t, tpl.ID, *list.TemplateID)

	resp = doRequest(t, app, "GET", "/api/lists/"+list.ID+"/items", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[[]items.Item](t, resp)
	require.Len(t, got, 2)
	assert.Equal(t, "Apples", got[0].Name)
	assert.Equal(t, 1, got[0].SortOrder)
	assert.Equal(t, "Bananas", got[1].Name)
	assert.Equal(t, 2, got[1].SortOrder)
	for _, it := range got {
		assert.False(t, it.Purchased)
		assert.Nil(t, it.PurchasedAt)
		assert.True(t, it.CreatedAt.Equal(list.CreatedAt), "copied items share the list creation time")
	}
}

func TestCreateListFromTemplateWithName(t *testing.T) {
	pool := testPool(t)
	app := newTestApp(t, pool)
	tpl := createTemplate(t, app)

	resp := doRequest(t, app, "POST", "/api/templates/"+tpl.ID+"/create-list", fiber.Map{"name": "March groceries"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	list := decodeBody[lists.List](t, resp)
	assert.Equal(t, "March groceries", list.Name)
}

func TestUpdateTemplateName(t *testing.T) {
	pool := testPool(t)
	app := newTestApp(t, pool)
	tpl := createTemplate(t, app)

	resp := doRequest(t, app, "PATCH", "/api/templates/"+tpl.ID, fiber.Map{"name": "Monthly shop"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[templates.Template](t, resp)
	assert.Equal(t, "Monthly shop", got.Name)

	resp = doRequest(t, app, "PATCH", "/api/templates/"+tpl.ID, map[string]interface{}{"name": nil})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTemplateItem(t *testing.T) {
	pool := testPool(t)
	app := newTestApp(t, pool)
	tpl := createTemplate(t, app)
	item := tpl.Items[0]

	resp := doRequest(t, app, "PATCH", "/api/templates/"+tpl.ID+"/items/"+item.ID,
		map[string]interface{}{"qty": 3, "unit": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[templates.TemplateItem](t, resp)
	require.NotNil(t, got.Qty)
	assert.Equal(t, 3.0, *got.Qty)
	assert.Nil(t, got.Unit)
	assert.Equal(t, item.Name, got.Name)
}

func TestDeleteTemplateCascades(t *testing.T) {
	pool := testPool(t)
	app := newTestApp(t, pool)
	tpl := createTemplate(t, app)

	resp := doRequest(t, app, "DELETE", "/api/templates/"+tpl.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM template_items WHERE template_id = $1::uuid`, tpl.ID).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)

	resp = doRequest(t, app, "GET", "/api/templates/"+tpl.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTemplateKeepsDerivedLists(t *testing.T) {
	pool := testPool(t)
	app := newTestApp(t, pool)
	tpl := createTemplate(t, app)

	resp := doRequest(t, app, "POST", "/api/templates/"+tpl.ID+"/create-list", fiber.Map{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	list := decodeBody[lists.List](t, resp)

	resp = doRequest(t, app, "DELETE", "/api/templates/"+tpl.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/lists/"+list.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTemplateHiddenAcrossOwners(t *testing.T) {
	pool := testPool(t)
	appA := newTestApp(t, pool)
	appB := newTestApp(t, pool)

	tpl := createTemplate(t, appA)

	resp := doRequest(t, appB, "GET", "/api/templates/"+tpl.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
