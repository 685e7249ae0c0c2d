// Command promote grants the admin role to an existing account.
//
//	promote user@example.com
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"anoa.com/lostfound/internal/config"
	"anoa.com/lostfound/internal/entity"
	userRepo "anoa.com/lostfound/internal/modules/user/repository"
	"anoa.com/lostfound/pkg/database"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: promote <email>")
		os.Exit(2)
	}
	email := strings.ToLower(strings.TrimSpace(os.Args[1]))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	n, err := userRepo.NewUserRepository(db).UpdateRole(context.Background(), email, entity.RoleAdmin)
	if err != nil {
		log.Fatalf("failed to promote %s: %v", email, err)
	}
	if n == 0 {
		log.Fatalf("no user with email %s", email)
	}
	fmt.Printf("%s is now an admin\n", email)
}
