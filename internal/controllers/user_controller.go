package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"geocollect/internal/config"
	"geocollect/internal/models"
)

// User administration. All handlers here sit behind the admin role gate.

// ListUsers returns every account with its moderation-relevant fields.
func ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Find(&users).Error; err != nil {
		logrus.WithError(err).Error("ListUsers: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":           u.ID,
			"email":        u.Email,
			"role":         u.Role,
			"name":         u.Name,
			"surname":      u.Surname,
			"phone":        u.Phone,
			"organization": u.Organization,
			"confirmed":    u.Confirmed,
			"created_at":   u.CreatedAt,
			"last_login":   u.LastLogin,
		})
	}
	c.JSON(http.StatusOK, out)
}

type updateUserInput struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
}

// UpdateUser overwrites an account's editable fields.
func UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input updateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := config.DB.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"role":         input.Role,
		"name":         input.Name,
		"surname":      input.Surname,
		"phone":        input.Phone,
		"email":        input.Email,
		"organization": input.Organization,
	})
	if res.Error != nil {
		logrus.WithError(res.Error).Error("UpdateUser: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

// ConfirmUser lets an admin confirm an account without the emailed token.
func ConfirmUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	res := config.DB.Model(&models.User{}).Where("id = ?", id).Update("confirmed", true)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("ConfirmUser: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User confirmed"})
}

// DeleteUser removes an account.
func DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	res := config.DB.Unscoped().Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		logrus.WithError(res.Error).Error("DeleteUser: delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
