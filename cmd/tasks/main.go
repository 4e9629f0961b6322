// Command tasks runs out-of-band operational actions against the database.
//
// Usage:
//
//	tasks toggle-user-approved <email>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/00dav00/chopin-list-be/internal/audit"
	"github.com/00dav00/chopin-list-be/internal/auth"
)

func main() {
	_ = godotenv.Load()

	pflag.Usage = usage
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "toggle-user-approved":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: tasks toggle-user-approved <email>")
			os.Exit(2)
		}
		toggleUserApproved(args[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Operational tasks for the Shoplist API.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  toggle-user-approved <email>   flip a user's approval flag")
	pflag.PrintDefaults()
}

func toggleUserApproved(email string) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()

	store := auth.NewStore(pool)
	approved, err := store.ToggleApprovedByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			fmt.Printf("User not found for email: %s\n", email)
			os.Exit(1)
		}
		log.Fatalf("error toggling approval: %v", err)
	}

	meta, _ := json.Marshal(map[string]bool{"approved": approved})
	if err := audit.Write(ctx, pool, audit.Entry{
		Action:   "user.toggle_approved",
		Email:    &email,
		Metadata: meta,
	}); err != nil {
		log.Printf("warning: audit write failed: %v", err)
	}

	fmt.Printf("Toggled approved=%t for email: %s\n", approved, email)
}
