package models

import "gorm.io/gorm"

// CustomField is an admin-defined extra form input consumed by the submission
// form. Dytael scopes a field to submissions tagged with that profile; nil
// means the field is global.
type CustomField struct {
	gorm.Model
	FieldKey   string  `json:"field_key"`
	FieldLabel string  `json:"field_label"`
	FieldType  string  `json:"field_type"` // "text", "number", "textarea"
	Required   bool    `json:"required" gorm:"default:false"`
	Dytael     *string `json:"dytael" gorm:"index"`
}
