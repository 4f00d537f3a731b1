package main

import (
	"context"
	"flag"
	"log"

	"go-storefront/internal/config"
	"go-storefront/internal/repository"
	"go-storefront/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "admin@example.com", "account email")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal("❌ -password must be at least 6 characters")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Database)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	ctx := context.Background()
	accounts := repository.NewAccountRepo(db)

	// 3. Find account
	account, err := accounts.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("❌ Account %s not found in database: %v", *email, err)
	}

	// 4. Hash new password and end existing sessions
	if err := account.SetPassword(*password); err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	account.TokenVersion = uuid.NewString()

	// 5. Update
	if err := accounts.Update(ctx, account); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Printf("✅ Password for %s has been reset; existing sessions were signed out", account.Email)
}
