package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/khoahotran/neplaunch/adapters/persistence"
	authUC "github.com/khoahotran/neplaunch/internal/application/usecase/auth"
	"github.com/khoahotran/neplaunch/internal/config"
	"github.com/khoahotran/neplaunch/pkg/auth"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// Seeds one account per SEED_USERS entry, formatted as
// "email:password:ROLE,email:password:ROLE". Existing emails are skipped.
func main() {
	fmt.Println("seeding users into database...")

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)

	repos, closeRepos, err := persistence.Open(cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot open storage: %v", err)
	}
	defer closeRepos()

	register := authUC.NewRegisterUseCase(repos.Users, auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan), appLogger)

	for _, entry := range strings.Split(os.Getenv("SEED_USERS"), ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) != 3 {
			continue
		}
		out, err := register.Execute(context.Background(), authUC.RegisterInput{Email: parts[0], Password: parts[1], Role: parts[2]})
		if err != nil {
			log.Printf("skipped '%s': %v", parts[0], err)
			continue
		}
		fmt.Printf("added %s '%s' (%s)\n", out.User.Role, out.User.Email, out.User.ID)
	}
}
