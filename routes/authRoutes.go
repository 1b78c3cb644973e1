package routes

import (
	"civiclens-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, d Deps) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
		auth.GET("/google", d.Auth.GoogleStart)
		auth.GET("/google/callback", d.Auth.GoogleCallback)
		auth.GET("/me", middlewares.RequireAuth(d.Sessions), d.Auth.Me)
		auth.POST("/logout", d.Auth.Logout)
	}
}
