// Command create-admin registers an administrator on the remote backend:
// an auth_users credential plus a profile with is_admin set. It is used to
// bootstrap the first admin of the console.
//
// Usage:
//
//	create-admin --email=owner@example.com --name="Site Owner"
//
// The password is read from ADMIN_PASSWORD. Requires remote mode
// (REMOTE_URL and REMOTE_KEY).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/authstore"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/profile"
	"github.com/heartmarshall/solarsite/internal/auth"
	"github.com/heartmarshall/solarsite/internal/backend"
	"github.com/heartmarshall/solarsite/internal/config"
	"github.com/heartmarshall/solarsite/internal/domain"
)

func main() {
	email := flag.String("email", "", "email of the administrator")
	name := flag.String("name", "", "display name of the administrator")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if *email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Usage: ADMIN_PASSWORD=... create-admin --email=owner@example.com [--name=...]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sel := backend.Select(cfg.Remote)
	if !sel.Remote() {
		log.Fatal("create-admin needs the remote backend: set REMOTE_URL and REMOTE_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, sel.URL(), cfg.Database)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	txm := postgres.NewTxManager(pool)
	var userID uuid.UUID
	err = txm.RunInTx(ctx, func(ctx context.Context) error {
		id, err := authstore.New(pool).CreateCredential(ctx, *email, hash)
		if err != nil {
			return err
		}
		userID = id
		_, err = profile.New(pool).Upsert(ctx, domain.Profile{ID: id, IsAdmin: true, FullName: *name})
		return err
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		fmt.Printf("A credential for %q already exists.\n", *email)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}

	fmt.Printf("Administrator %q created (id %s).\n", *email, userID)
}
