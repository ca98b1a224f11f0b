package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/identikit/identity-api/docs"
	"github.com/identikit/identity-api/internal/api/handler"
	"github.com/identikit/identity-api/internal/api/middleware"
	"github.com/identikit/identity-api/internal/core/ports"
)

// Dependencies carries everything the router wires together. Services are
// built in main so the router stays free of file and network I/O.
type Dependencies struct {
	Log    zerolog.Logger
	DB     *mongo.Database
	Redis  *redis.Client
	Users  ports.UserService
	Tokens ports.TokenService
	Repo   ports.UserRepository

	OpenRegistration bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Users, deps.Tokens)
	userHandler := handler.NewUserHandler(deps.Users, deps.OpenRegistration)
	meHandler := handler.NewMeHandler(deps.Users)

	authed := middleware.Auth(deps.Tokens)
	active := middleware.ActiveUser(deps.Repo)
	superuser := middleware.Superuser()

	v1 := e.Group("/v1")

	// --- Login / recovery (no auth) ---
	v1.POST("/login/access-token", authHandler.Login)
	v1.POST("/login/test-token", authHandler.TestToken, authed, active)
	v1.POST("/password-recovery/:email", authHandler.RecoverPassword)
	v1.POST("/reset-password", authHandler.ResetPassword)

	// --- Users (superuser only, except open registration) ---
	v1.POST("/users/open", userHandler.CreateOpen)

	users := v1.Group("/users", authed, active, superuser)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Self service ---
	me := v1.Group("/me", authed, active)
	me.GET("", meHandler.Get)
	me.PUT("", meHandler.Update)
	me.DELETE("", meHandler.Delete)
	me.POST("/change-email/:email", meHandler.ChangeEmail)

	// applying an email change needs no session, only the token
	v1.POST("/validate-email/:token", meHandler.ValidateEmail)

	// --- Health probes, metrics, docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
