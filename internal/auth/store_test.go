package auth

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping storage test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func cleanupUser(t *testing.T, pool *pgxpool.Pool, sub string) {
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE google_sub = $1`, sub)
	})
}

func testClaims(sub string) *Claims {
	return &Claims{
		Subject: sub,
		Email:   sub + "@example.com",
		Name:    "Test User",
		Picture: "https://example.com/avatar.png",
		Issuer:  "accounts.google.com",
	}
}

func TestResolveOrCreateFirstLogin(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	sub := uuid.NewString()
	cleanupUser(t, pool, sub)

	user, err := store.ResolveOrCreate(context.Background(), testClaims(sub))
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, sub, user.GoogleSub)
	assert.False(t, user.Approved, "new accounts start unapproved")
	require.NotNil(t, user.Email)
	assert.Equal(t, sub+"@example.com", *user.Email)
	require.NotNil(t, user.LastLoginAt)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestResolveOrCreateRefreshesProfile(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	sub := uuid.NewString()
	cleanupUser(t, pool, sub)
	ctx := context.Background()

	first, err := store.ResolveOrCreate(ctx, testClaims(sub))
	require.NoError(t, err)

	claims := testClaims(sub)
	claims.Email = "renamed@example.com"
	claims.Name = "Renamed User"
	second, err := store.ResolveOrCreate(ctx, claims)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "repeated logins never create a second record")
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt), "created_at is immutable")
	require.NotNil(t, second.Email)
	assert.Equal(t, "renamed@example.com", *second.Email)
	require.NotNil(t, second.Name)
	assert.Equal(t, "Renamed User", *second.Name)
	assert.False(t, second.Approved, "login never touches the approval flag")
}

func TestResolveOrCreateConcurrentFirstLogins(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	sub := uuid.NewString()
	cleanupUser(t, pool, sub)

	const n = 8
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := store.ResolveOrCreate(context.Background(), testClaims(sub))
			errs[i] = err
			if err == nil {
				ids[i] = user.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM users WHERE google_sub = $1`, sub).Scan(&count))
	assert.Equal(t, 1, count, "concurrent first logins converge to one record")
}

func TestToggleApprovedByEmail(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	sub := uuid.NewString()
	cleanupUser(t, pool, sub)
	ctx := context.Background()

	_, err := store.ResolveOrCreate(ctx, testClaims(sub))
	require.NoError(t, err)

	approved, err := store.ToggleApprovedByEmail(ctx, sub+"@example.com")
	require.NoError(t, err)
	assert.True(t, approved)

	approved, err = store.ToggleApprovedByEmail(ctx, sub+"@example.com")
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestToggleApprovedByEmailNotFound(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)

	_, err := store.ToggleApprovedByEmail(context.Background(), "missing-"+uuid.NewString()+"@example.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
