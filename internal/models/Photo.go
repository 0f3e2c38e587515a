package models

import "gorm.io/gorm"

// Photo records one uploaded image belonging to an initiative. The filename
// is server-generated; the public URL is derived at read time.
type Photo struct {
	gorm.Model
	InitiativeID uint   `json:"initiative_id" gorm:"index"`
	Filename     string `json:"filename"`
}
