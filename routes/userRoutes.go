package routes

import (
	"github.com/gin-gonic/gin"
)

// UserRoutes sets up the user directory routes
func UserRoutes(r *gin.Engine, d Deps) {
	users := r.Group("/users")
	{
		users.GET("", d.Users.List)
		users.POST("", d.Users.Create)
	}
}
