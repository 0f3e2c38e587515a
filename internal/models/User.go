package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string     `json:"email" gorm:"unique"`
	Password     string     `json:"-"`
	Role         string     `json:"role"` // "admin", "editor", "contributor", "viewer"
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	Phone        string     `json:"phone"`
	Organization string     `json:"organization"`
	Confirmed    bool       `json:"confirmed" gorm:"default:false"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	Initiatives []Initiative `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"initiatives,omitempty"`
}
