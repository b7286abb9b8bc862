// Package main provides operator utilities for accounts and moderation.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"gratitude/internal/bootstrap"
	"gratitude/internal/config"
	"gratitude/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <email>     - Grant admin")
	fmt.Println("  go run ./cmd/admin demote <email>      - Revoke admin")
	fmt.Println("  go run ./cmd/admin check <email>       - Show admin status")
	fmt.Println("  go run ./cmd/admin approve-all-thanks  - Approve every pending thanks")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	ctx := context.Background()
	defer func() { _ = rt.Close(ctx) }()

	users := repository.NewUserRepository(rt.DB)

	switch os.Args[1] {
	case "promote", "demote":
		if len(os.Args) < 3 {
			usage()
		}
		admin := os.Args[1] == "promote"
		if err := users.SetAdmin(ctx, os.Args[2], admin); err != nil {
			log.Fatalf("Failed to update %s: %v", os.Args[2], err)
		}
		fmt.Printf("✅ %s admin=%t\n", os.Args[2], admin)

	case "check":
		if len(os.Args) < 3 {
			usage()
		}
		user, err := users.GetByEmail(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Database error: %v", err)
		}
		if user == nil {
			fmt.Printf("No user with email %s\n", os.Args[2])
			os.Exit(1)
		}
		fmt.Printf("ID: %d | Name: %s | Email: %s | Admin: %t\n", user.ID, user.Name, user.Email, user.IsAdmin)

	case "approve-all-thanks":
		n, err := repository.NewThanksRepository(rt.DB).ApproveAll(ctx)
		if err != nil {
			log.Fatalf("Failed to approve thanks: %v", err)
		}
		fmt.Printf("✅ Approved %d thanks\n", n)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}
