package routes

import (
	"geocollect/internal/controllers"
	"geocollect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func CustomFieldRoutes(r *gin.Engine) {
	fields := r.Group("/api/custom-fields")
	{
		fields.GET("", controllers.ListCustomFields)
		fields.POST("", middleware.RequireAuthWithRole("admin"), controllers.CreateCustomField)
	}
}
