package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// User is a persisted identity record. The google_sub and approved columns
// never appear in API responses.
type User struct {
	ID          string     `json:"id"`
	GoogleSub   string     `json:"-"`
	Email       *string    `json:"email"`
	Name        *string    `json:"name"`
	AvatarURL   *string    `json:"avatar_url"`
	Approved    bool       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// Directory resolves verified claims to a local user record, creating one
// on first login.
type Directory interface {
	ResolveOrCreate(ctx context.Context, claims *Claims) (*User, error)
}

type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// ResolveOrCreate upserts the user keyed by google_sub in a single
// statement. The provider is the source of truth for profile fields, so
// email, name, avatar and last_login_at are overwritten on every login;
// google_sub, approved and created_at are only written on insert. The
// unique index on google_sub makes concurrent first logins converge to one
// row.
func (s *Store) ResolveOrCreate(ctx context.Context, claims *Claims) (*User, error) {
	var u User
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO users (google_sub, email, name, avatar_url, approved, created_at, last_login_at)
		 VALUES ($1, $2, $3, $4, false, now(), now())
		 ON CONFLICT (google_sub) DO UPDATE
		 SET email = EXCLUDED.email,
		     name = EXCLUDED.name,
		     avatar_url = EXCLUDED.avatar_url,
		     last_login_at = EXCLUDED.last_login_at
		 RETURNING id::text, google_sub, email, name, avatar_url, approved, created_at, last_login_at`,
		claims.Subject,
		nullable(claims.Email),
		nullable(claims.Name),
		nullable(claims.Picture),
	).Scan(&u.ID, &u.GoogleSub, &u.Email, &u.Name, &u.AvatarURL, &u.Approved, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ToggleApprovedByEmail flips the approval flag for the user with the given
// email and returns the new value. pgx.ErrNoRows surfaces when no user
// matches.
func (s *Store) ToggleApprovedByEmail(ctx context.Context, email string) (bool, error) {
	var approved bool
	err := s.Pool.QueryRow(ctx,
		`UPDATE users SET approved = NOT approved WHERE email = $1 RETURNING approved`,
		email,
	).Scan(&approved)
	if err != nil {
		return false, err
	}
	return approved, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
