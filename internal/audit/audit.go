// Package audit records operator actions taken outside the normal request
// path, such as flipping a user's approval flag from the tasks CLI.
package audit

import (
	"context"
	"encoding/json"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	Action   string
	Email    *string
	Operator string
	Metadata []byte
}

// Write records an audit entry. Failures are returned so callers can decide
// whether the action itself should still count as done.
func Write(ctx context.Context, db *pgxpool.Pool, e Entry) error {
	if db == nil {
		return nil
	}

	operator := e.Operator
	if operator == "" {
		operator = osUser()
	}

	var metadata interface{}
	if len(e.Metadata) > 0 {
		raw := json.RawMessage(e.Metadata)
		metadata = raw
	}

	_, err := db.Exec(ctx, `
INSERT INTO audit_log (action, email, operator, metadata)
VALUES ($1, $2, $3, $4)
`, e.Action, e.Email, operator, metadata)

	return err
}

func osUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
