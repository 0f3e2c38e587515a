package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"geocollect/internal/config"
	"geocollect/internal/models"
)

// Moderation transitions. Routes gate validate/reject/cancel-delete behind
// the admin role; request-delete is owner-guarded by the WHERE clause.
//
// Validate and reject are deliberate admin overrides: they apply from any
// current status, so a rejected record can be re-approved without ceremony.

// ValidateInitiative sets status to approved.
func ValidateInitiative(c *gin.Context) {
	setStatus(c, models.StatusApproved, "Initiative approved")
}

// RejectInitiative sets status to rejected.
func RejectInitiative(c *gin.Context) {
	setStatus(c, models.StatusRejected, "Initiative rejected")
}

func setStatus(c *gin.Context, status, message string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid initiative ID"})
		return
	}

	res := config.DB.Model(&models.Initiative{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("setStatus: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Initiative not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// CancelDeleteRequest flips a delete_requested record back to approved. The
// status precondition makes the call a no-op on anything else.
func CancelDeleteRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid initiative ID"})
		return
	}

	res := config.DB.Model(&models.Initiative{}).
		Where("id = ? AND status = ?", id, models.StatusDeleteRequested).
		Update("status", models.StatusApproved)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("CancelDeleteRequest: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delete request cancelled"})
}

// RequestDelete marks one of the caller's own initiatives for deletion.
func RequestDelete(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid initiative ID"})
		return
	}

	res := config.DB.Model(&models.Initiative{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", models.StatusDeleteRequested)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("RequestDelete: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized or initiative not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delete request recorded"})
}
