package main

import (
	"database/sql"
	"net/http"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/DevMeza-lvl/api-transacciones/cmd/httpserver"
	"github.com/DevMeza-lvl/api-transacciones/internal/middleware"
	"github.com/DevMeza-lvl/api-transacciones/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	conn, err := sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	server, err := httpserver.New(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.ServerAddress).Msg("starting server")

	if err := http.ListenAndServe(config.ServerAddress, server); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
