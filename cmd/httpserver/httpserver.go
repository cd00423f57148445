// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/DevMeza-lvl/api-transacciones/internal/middleware"
	"github.com/DevMeza-lvl/api-transacciones/internal/statsdelivery"
	"github.com/DevMeza-lvl/api-transacciones/internal/transferdelivery"
	"github.com/DevMeza-lvl/api-transacciones/internal/transferrepo"
	"github.com/DevMeza-lvl/api-transacciones/internal/transferservice"
	"github.com/DevMeza-lvl/api-transacciones/internal/userdelivery"
	"github.com/DevMeza-lvl/api-transacciones/internal/userrepo"
	"github.com/DevMeza-lvl/api-transacciones/internal/userservice"
	"github.com/DevMeza-lvl/api-transacciones/pkg/configpkg"
	"github.com/DevMeza-lvl/api-transacciones/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	transferRepo := transferrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	transferService := transferservice.New(transferRepo, userService)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	transferHandler := transferdelivery.NewHandler(transferService)
	statsHandler := statsdelivery.NewHandler(userService)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("amount", transferdelivery.ValidAmount); err != nil {
			return nil, errors.New("cannot register amount validator")
		}

		if err := v.RegisterValidation("balance", userdelivery.ValidBalance); err != nil {
			return nil, errors.New("cannot register balance validator")
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/register", userHandler.Create)
	engine.POST("/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/me", userHandler.Me)

	authRoutes.GET("/users", userHandler.List)
	authRoutes.GET("/users/:id", userHandler.Get)
	authRoutes.PUT("/users/:id", userHandler.Update)
	authRoutes.DELETE("/users/:id", userHandler.Delete)

	authRoutes.POST("/transactions", transferHandler.Create)
	authRoutes.GET("/transactions", transferHandler.List)
	authRoutes.GET("/transactions/export/csv", transferHandler.ExportCSV)
	authRoutes.GET("/transactions/:id", transferHandler.Get)

	authRoutes.GET("/stats/users", statsHandler.SenderStats)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
