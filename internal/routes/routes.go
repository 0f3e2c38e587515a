package routes

import (
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"geocollect/internal/config"
	"geocollect/internal/storage"
)

func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r)
	DataRoutes(r)
	CustomFieldRoutes(r)
	UserRoutes(r)

	// Uploaded photos are served publicly under the same path the photo
	// URLs are built from.
	r.Static("/uploads/photos", storage.Dir())

	r.GET("/api/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"commit": config.GetEnv("SOURCE_VERSION", ""),
			"env":    config.GetEnv("APP_ENV", "development"),
		})
	})

	return r
}
