// cmd/seeduser/main.go: creates or resets a staff account.
// Usage: go run ./cmd/seeduser -email admin@borracharia.local -password 12345678 -role admin
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"tireshop/internal/config"
	"tireshop/internal/infra"
	"tireshop/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func main() {
	email := flag.String("email", "admin@borracharia.local", "login e-mail")
	password := flag.String("password", "", "password (min 8 chars)")
	name := flag.String("name", "Administrador", "display name")
	role := flag.String("role", model.RoleAdmin, "admin | attendant")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal().Msg("-password must have at least 8 characters")
	}
	if *role != model.RoleAdmin && *role != model.RoleAttendant {
		log.Fatal().Str("role", *role).Msg("unknown role")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	user := model.User{
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		Name:         *name,
		PasswordHash: string(hash),
		Role:         *role,
		Active:       true,
	}
	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "password_hash", "role", "active", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert error")
	}
	fmt.Printf("user %s (%s) created/updated\n", user.Email, user.Role)
}
