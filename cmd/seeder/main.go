// Seeder populates the database with the initial admin accounts and a few
// random regular users for local development.
package main

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/DevMeza-lvl/api-transacciones/internal/domain"
	"github.com/DevMeza-lvl/api-transacciones/internal/userrepo"
	"github.com/DevMeza-lvl/api-transacciones/pkg/configpkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/passpkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/randompkg"
)

const regularUsers = 10

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	conn, err := sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	ctx := context.Background()
	repo := userrepo.NewRepoPGS(conn)

	admins := []struct {
		name  string
		email string
	}{
		{"Admin", "admin@example.com"},
		{"Second Admin", "admin2@example.com"},
	}

	for _, a := range admins {
		hashed, err := passpkg.Hash("password")
		if err != nil {
			log.Fatal().Err(err).Msg("cannot hash password")
		}

		user, err := repo.Create(ctx, domain.CreateUserParams{
			Name:           a.name,
			Email:          a.email,
			HashedPassword: hashed,
			Role:           domain.RoleAdmin,
			InitialBalance: "10000.00",
		})
		if err != nil {
			if err == domain.ErrEmailAlreadyExists {
				log.Info().Str("email", a.email).Msg("admin already seeded")
				continue
			}

			log.Fatal().Err(err).Msg("cannot seed admin")
		}

		log.Info().Str("email", user.Email).Msg("seeded admin")
	}

	for i := 0; i < regularUsers; i++ {
		hashed, err := passpkg.Hash("password")
		if err != nil {
			log.Fatal().Err(err).Msg("cannot hash password")
		}

		user, err := repo.Create(ctx, domain.CreateUserParams{
			Name:           randompkg.Name(),
			Email:          randompkg.Email(),
			HashedPassword: hashed,
			Role:           domain.RoleUser,
			InitialBalance: randompkg.MoneyAmountBetween(100, 10000),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("cannot seed user")
		}

		log.Info().Str("email", user.Email).Msg("seeded user")
	}
}
