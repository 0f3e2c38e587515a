package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"geocollect/internal/config"
	"geocollect/internal/models"
)

// ExportGeoJSON serves the approved, geolocated initiatives as a GeoJSON
// FeatureCollection for the map view. Rows without coordinates are skipped.
func ExportGeoJSON(c *gin.Context) {
	var initiatives []models.Initiative
	if err := config.DB.
		Where("status = ? AND lat IS NOT NULL AND lon IS NOT NULL", models.StatusApproved).
		Find(&initiatives).Error; err != nil {
		logrus.WithError(err).Error("ExportGeoJSON: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	features := make([]*geojson.Feature, 0, len(initiatives))
	for _, i := range initiatives {
		point := geom.NewPointFlat(geom.XY, []float64{*i.Lon, *i.Lat})
		features = append(features, &geojson.Feature{
			ID:       strconv.FormatUint(uint64(i.ID), 10),
			Geometry: point,
			Properties: map[string]interface{}{
				"initiative": i.Initiative,
				"village":    i.Village,
				"commune":    i.Commune,
				"actor_type": i.ActorType,
				"activities": decodeStringList(i.Activities),
			},
		})
	}

	c.JSON(http.StatusOK, &geojson.FeatureCollection{Features: features})
}
