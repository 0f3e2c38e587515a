package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Moderation statuses for an initiative. Creation always starts at pending;
// only the moderation endpoints move a record between the other states.
const (
	StatusPending         = "pending"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusDeleteRequested = "delete_requested"
)

// Initiative is a submitted record describing an agroecological actor or
// activity. The loosely structured columns (activities, social media, videos,
// extra fields) are stored as JSON and validated at the API boundary before
// they are written.
type Initiative struct {
	gorm.Model
	Initiative       string         `json:"initiative"`
	Description      string         `json:"description"`
	Village          string         `json:"village"`
	Commune          string         `json:"commune"`
	ZoneIntervention string         `json:"zone_intervention"`
	ActorType        string         `json:"actor_type"`
	Year             *int           `json:"year"`
	Activities       datatypes.JSON `json:"activities"`   // ordered list of strings
	Lat              *float64       `json:"lat"`
	Lon              *float64       `json:"lon"`
	ContactEmail     string         `json:"contact_email"`
	ContactPhone     string         `json:"contact_phone"`
	PersonName       string         `json:"person_name"`
	Website          string         `json:"website"`
	SocialMedia      datatypes.JSON `json:"social_media"` // list of {platform, url}
	Videos           datatypes.JSON `json:"videos"`       // list of URLs, max 5
	ExtraFields      datatypes.JSON `json:"extra_fields"` // free-form key-value map
	Status           string         `json:"status" gorm:"default:pending;index"`
	UserID           uint           `json:"user_id" gorm:"index"`

	Photos []Photo `gorm:"foreignKey:InitiativeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// SocialLink is one entry of an initiative's social_media column.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}
