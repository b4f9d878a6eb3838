// server/internal/database/seeder.go
package database

import (
	"context"

	"fsic-records-api-server/config"
	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/service"

	"github.com/rs/zerolog"
)

// UserCreator is implemented by service.UserService.
type UserCreator interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, in service.CreateUserInput) (*models.User, error)
}

// SeedAdmin creates the configured account when no user exists yet. Going
// through the user service means the first-user policy makes it ADMIN.
func SeedAdmin(ctx context.Context, users UserCreator, cfg config.SeedConfig, log zerolog.Logger) error {
	if cfg.AdminUsername == "" {
		log.Debug().Msg("no seed admin configured. Seeding skipped.")
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info().Msg("users already exist. Seeding skipped.")
		return nil
	}

	firstName := cfg.AdminFirstName
	if firstName == "" {
		firstName = "Administrator"
	}
	u, err := users.Create(ctx, service.CreateUserInput{
		Username:  cfg.AdminUsername,
		Password:  cfg.AdminPassword,
		FirstName: firstName,
		LastName:  cfg.AdminLastName,
	})
	if err != nil {
		return err
	}

	log.Info().Str("username", u.Username).Str("role", u.Role).Msg("admin seeded successfully")
	return nil
}
