package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"geocollect/internal/config"
	"geocollect/internal/models"
)

// ListCustomFields returns the global field definitions plus, when a dytael
// scope is supplied, the definitions scoped to it. Public.
func ListCustomFields(c *gin.Context) {
	query := config.DB.Model(&models.CustomField{})
	if dytael := c.Query("dytael"); dytael != "" {
		query = query.Where("dytael IS NULL OR dytael = ?", dytael)
	} else {
		query = query.Where("dytael IS NULL")
	}

	var fields []models.CustomField
	if err := query.Find(&fields).Error; err != nil {
		logrus.WithError(err).Error("ListCustomFields: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, fields)
}

type createFieldInput struct {
	FieldKey   string  `json:"field_key"`
	FieldLabel string  `json:"field_label"`
	FieldType  string  `json:"field_type"`
	Required   bool    `json:"required"`
	Dytael     *string `json:"dytael"`
}

// CreateCustomField persists a new form field definition. Admin-only via the
// route gate. A key already used within the same scope is rejected.
func CreateCustomField(c *gin.Context) {
	var input createFieldInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.FieldKey == "" || input.FieldLabel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field_key and field_label are required"})
		return
	}
	if input.FieldType == "" {
		input.FieldType = "text"
	}
	switch input.FieldType {
	case "text", "number", "textarea":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "field_type must be text, number or textarea"})
		return
	}
	if input.Dytael != nil && *input.Dytael == "" {
		input.Dytael = nil
	}

	dup := config.DB.Where("field_key = ?", input.FieldKey)
	if input.Dytael == nil {
		dup = dup.Where("dytael IS NULL")
	} else {
		dup = dup.Where("dytael = ?", *input.Dytael)
	}
	var existing models.CustomField
	if err := dup.First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field_key already exists for this scope"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("CreateCustomField: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	field := models.CustomField{
		FieldKey:   input.FieldKey,
		FieldLabel: input.FieldLabel,
		FieldType:  input.FieldType,
		Required:   input.Required,
		Dytael:     input.Dytael,
	}
	if err := config.DB.Create(&field).Error; err != nil {
		logrus.WithError(err).Error("CreateCustomField: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Field created", "id": field.ID})
}
