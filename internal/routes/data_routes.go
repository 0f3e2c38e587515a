package routes

import (
	"geocollect/internal/controllers"
	"geocollect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func DataRoutes(r *gin.Engine) {
	data := r.Group("/api/data")
	{
		// Public read path; the handler itself enforces the
		// approved-only rule for anonymous callers.
		data.GET("", controllers.ListInitiatives)
		data.GET("/geojson", controllers.ExportGeoJSON)
		data.GET("/:id", controllers.GetInitiative)

		data.GET("/mine", middleware.RequireAuth(), controllers.MyInitiatives)
		data.POST("", middleware.RequireAuth(), controllers.CreateInitiative)
		data.PUT("/:id", middleware.RequireAuth(), controllers.UpdateInitiative)
		data.DELETE("/:id", middleware.RequireAuth(), controllers.DeleteInitiative)
		data.POST("/:id/request-delete", middleware.RequireAuth(), controllers.RequestDelete)

		data.PUT("/:id/validate", middleware.RequireAuthWithRole("admin"), controllers.ValidateInitiative)
		data.PUT("/:id/reject", middleware.RequireAuthWithRole("admin"), controllers.RejectInitiative)
		data.PUT("/:id/cancel-delete", middleware.RequireAuthWithRole("admin"), controllers.CancelDeleteRequest)
	}
}
