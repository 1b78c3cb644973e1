package routes

import (
	"time"

	"civiclens-be/controllers"
	"civiclens-be/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Auth     *controllers.AuthController
	Issues   *controllers.IssueController
	Catalog  *controllers.CatalogController
	Users    *controllers.UserController
	Chat     *controllers.ChatController
	Sessions middlewares.Authenticator

	FrontendURL     string
	Redis           *redis.Client
	IssueRateLimit  int
	IssueRateWindow time.Duration
}

// Setup builds the engine with every route registered.
func Setup(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{d.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", controllers.Health)

	AuthRoutes(r, d)
	IssueRoutes(r, d)
	UserRoutes(r, d)
	CatalogRoutes(r, d)
	r.POST("/chatbot", d.Chat.Ask)

	return r
}
