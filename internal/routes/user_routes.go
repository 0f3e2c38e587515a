package routes

import (
	"geocollect/internal/controllers"
	"geocollect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func UserRoutes(r *gin.Engine) {
	users := r.Group("/api/users")
	users.Use(middleware.RequireAuthWithRole("admin"))
	{
		users.GET("", controllers.ListUsers)
		users.PUT("/:id", controllers.UpdateUser)
		users.PATCH("/:id/confirm", controllers.ConfirmUser)
		users.DELETE("/:id", controllers.DeleteUser)
	}
}
