package routes

import (
	"geocollect/internal/controllers"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controllers.RegisterUser)
		auth.GET("/confirm/:token", controllers.ConfirmEmail)
		auth.POST("/login", controllers.LoginUser)
		auth.POST("/request-reset", controllers.RequestPasswordReset)
		auth.GET("/reset/:token", controllers.VerifyResetToken)
		auth.POST("/reset/:token", controllers.ApplyPasswordReset)
	}
}
