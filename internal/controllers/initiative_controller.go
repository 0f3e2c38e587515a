package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"geocollect/internal/config"
	"geocollect/internal/middleware"
	"geocollect/internal/models"
	"geocollect/internal/storage"
)

// InitiativeResponse mirrors models.Initiative with the JSON columns decoded
// and photo URLs attached.
type InitiativeResponse struct {
	ID               uint                `json:"id"`
	CreatedAt        time.Time           `json:"created_at"`
	Initiative       string              `json:"initiative"`
	Description      string              `json:"description"`
	Village          string              `json:"village"`
	Commune          string              `json:"commune"`
	ZoneIntervention string              `json:"zone_intervention"`
	ActorType        string              `json:"actor_type"`
	Year             *int                `json:"year"`
	Activities       []string            `json:"activities"`
	Lat              *float64            `json:"lat"`
	Lon              *float64            `json:"lon"`
	ContactEmail     string              `json:"contact_email"`
	ContactPhone     string              `json:"contact_phone"`
	PersonName       string              `json:"person_name"`
	Website          string              `json:"website"`
	SocialMedia      []models.SocialLink `json:"social_media"`
	Videos           []string            `json:"videos"`
	ExtraFields      map[string]any      `json:"extra_fields"`
	Status           string              `json:"status"`
	UserID           uint                `json:"user_id"`
	Photos           []string            `json:"photos"`
}

func toInitiativeResponse(i models.Initiative, photos []string) InitiativeResponse {
	if photos == nil {
		photos = []string{}
	}
	return InitiativeResponse{
		ID:               i.ID,
		CreatedAt:        i.CreatedAt,
		Initiative:       i.Initiative,
		Description:      i.Description,
		Village:          i.Village,
		Commune:          i.Commune,
		ZoneIntervention: i.ZoneIntervention,
		ActorType:        i.ActorType,
		Year:             i.Year,
		Activities:       decodeStringList(i.Activities),
		Lat:              i.Lat,
		Lon:              i.Lon,
		ContactEmail:     i.ContactEmail,
		ContactPhone:     i.ContactPhone,
		PersonName:       i.PersonName,
		Website:          i.Website,
		SocialMedia:      decodeSocialLinks(i.SocialMedia),
		Videos:           decodeStringList(i.Videos),
		ExtraFields:      decodeExtraFields(i.ExtraFields),
		Status:           i.Status,
		UserID:           i.UserID,
		Photos:           photos,
	}
}

// decodeStringList tolerates rows written before the strict write path; a
// column that does not parse renders as an empty list.
func decodeStringList(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func decodeSocialLinks(raw datatypes.JSON) []models.SocialLink {
	out := []models.SocialLink{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func decodeExtraFields(raw datatypes.JSON) map[string]any {
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

// requestBase rebuilds the origin the client reached us on, for photo URLs.
func requestBase(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// attachPhotos loads the photo rows for a batch of initiatives and returns
// public URLs grouped by initiative id.
func attachPhotos(c *gin.Context, ids []uint) (map[uint][]string, error) {
	grouped := make(map[uint][]string)
	if len(ids) == 0 {
		return grouped, nil
	}
	var photos []models.Photo
	if err := config.DB.Where("initiative_id IN ?", ids).Find(&photos).Error; err != nil {
		return nil, err
	}
	base := requestBase(c)
	for _, p := range photos {
		grouped[p.InitiativeID] = append(grouped[p.InitiativeID], storage.PhotoURL(p.Filename, base))
	}
	return grouped, nil
}

// CreateInitiative validates and persists a submission with its photos in one
// transaction; status is forced to pending and ownership to the caller. The
// admin alert mail is queued after the commit.
func CreateInitiative(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	// Sessions outlive account deletion; re-check the user row.
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Unknown user"})
		} else {
			logrus.WithError(err).Error("CreateInitiative: user lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	name := c.PostForm("initiative")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "initiative name is required"})
		return
	}

	activities, err := json.Marshal(c.PostFormArray("activities"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activities"})
		return
	}

	socialMedia, err := parseSocialMedia(c.PostForm("social_media"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid social_media payload"})
		return
	}

	videosList := c.PostFormArray("videos")
	if len(videosList) > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at most 5 videos allowed"})
		return
	}
	videos, _ := json.Marshal(videosList)

	extraFields, err := parseExtraFields(c.PostForm("extra_fields"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid extra_fields payload"})
		return
	}

	initiative := models.Initiative{
		Initiative:       name,
		Description:      c.PostForm("description"),
		Village:          c.PostForm("village"),
		Commune:          c.PostForm("commune"),
		ZoneIntervention: c.PostForm("zone_intervention"),
		ActorType:        c.PostForm("actor_type"),
		Year:             parseIntField(c.PostForm("year")),
		Activities:       activities,
		Lat:              parseFloatField(c.PostForm("lat")),
		Lon:              parseFloatField(c.PostForm("lon")),
		ContactEmail:     c.PostForm("contact_email"),
		ContactPhone:     c.PostForm("contact_phone"),
		PersonName:       c.PostForm("person_name"),
		Website:          c.PostForm("website"),
		SocialMedia:      socialMedia,
		Videos:           videos,
		ExtraFields:      extraFields,
		Status:           models.StatusPending,
		UserID:           userID,
	}

	form, err := c.MultipartForm()
	var filenames []string
	if err == nil && form != nil {
		filenames, err = storage.SavePhotos(form.File["photos"])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		storage.RemovePhotos(filenames)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	if err := tx.Create(&initiative).Error; err != nil {
		tx.Rollback()
		storage.RemovePhotos(filenames)
		logrus.WithError(err).Error("CreateInitiative: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: insert failed"})
		return
	}

	for _, filename := range filenames {
		photo := models.Photo{InitiativeID: initiative.ID, Filename: filename}
		if err := tx.Create(&photo).Error; err != nil {
			tx.Rollback()
			storage.RemovePhotos(filenames)
			logrus.WithError(err).Error("CreateInitiative: photo insert failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: insert failed"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		storage.RemovePhotos(filenames)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed"})
		return
	}

	// After the commit so a mail failure can never roll back the write.
	if err := Mail.SendSubmissionAlert(initiative.Initiative); err != nil {
		logrus.WithError(err).Error("CreateInitiative: submission alert failed")
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Initiative saved", "id": initiative.ID})
}

// ListInitiatives serves the map/list/table read path. status=approved is
// public; every other view of the data requires an admin session.
func ListInitiatives(c *gin.Context) {
	status := c.Query("status")
	_, role, authed := middleware.OptionalClaims(c)

	if status != models.StatusApproved {
		if !authed || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Restricted access"})
			return
		}
	}

	query := config.DB.Model(&models.Initiative{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if commune := c.Query("commune"); commune != "" {
		query = query.Where("commune = ?", commune)
	}
	if actorType := c.Query("actor_type"); actorType != "" {
		query = query.Where("actor_type = ?", actorType)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("initiative LIKE ? OR description LIKE ?", like, like)
	}

	var initiatives []models.Initiative
	if err := query.Find(&initiatives).Error; err != nil {
		logrus.WithError(err).Error("ListInitiatives: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	respondWithInitiatives(c, initiatives)
}

// MyInitiatives returns the caller's own submissions across all statuses,
// newest first.
func MyInitiatives(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	var initiatives []models.Initiative
	if err := config.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&initiatives).Error; err != nil {
		logrus.WithError(err).Error("MyInitiatives: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	respondWithInitiatives(c, initiatives)
}

// GetInitiative fetches one record with its photo URLs. Public.
func GetInitiative(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid initiative ID"})
		return
	}

	var initiative models.Initiative
	if err := config.DB.First(&initiative, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Initiative not found"})
		} else {
			logrus.WithError(err).Error("GetInitiative: query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	grouped, err := attachPhotos(c, []uint{initiative.ID})
	if err != nil {
		logrus.WithError(err).Error("GetInitiative: photo lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, toInitiativeResponse(initiative, grouped[initiative.ID]))
}

type updateInitiativeInput struct {
	Initiative       string          `json:"initiative"`
	Description      string          `json:"description"`
	Village          string          `json:"village"`
	Commune          string          `json:"commune"`
	ZoneIntervention string          `json:"zone_intervention"`
	ActorType        string          `json:"actor_type"`
	Year             *int            `json:"year"`
	Activities       json.RawMessage `json:"activities"`
	Lat              *float64        `json:"lat"`
	Lon              *float64        `json:"lon"`
	ContactEmail     string          `json:"contact_email"`
	ContactPhone     string          `json:"contact_phone"`
	PersonName       string          `json:"person_name"`
	Website          string          `json:"website"`
	SocialMedia      json.RawMessage `json:"social_media"`
	Videos           json.RawMessage `json:"videos"`
	ExtraFields      json.RawMessage `json:"extra_fields"`
}

// UpdateInitiative overwrites the mutable fields of a record. Only the owner
// or an admin may edit; the moderation status is never touched here.
func UpdateInitiative(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))
	role, _ := c.MustGet("role").(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid initiative ID"})
		return
	}

	var existing models.Initiative
	if err := config.DB.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Initiative not found"})
		} else {
			logrus.WithError(err).Error("UpdateInitiative: query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	if role != "admin" && existing.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner or an admin can edit this initiative"})
		return
	}

	var input updateInitiativeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activities, err := coerceStringList(input.Activities)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activities payload"})
		return
	}
	socialMedia, err := parseSocialMedia(string(input.SocialMedia))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid social_media payload"})
		return
	}
	videos, err := coerceStringList(input.Videos)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid videos payload"})
		return
	}
	extraFields, err := parseExtraFields(string(input.ExtraFields))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid extra_fields payload"})
		return
	}

	existing.Initiative = input.Initiative
	existing.Description = input.Description
	existing.Village = input.Village
	existing.Commune = input.Commune
	existing.ZoneIntervention = input.ZoneIntervention
	existing.ActorType = input.ActorType
	existing.Year = input.Year
	existing.Activities = activities
	existing.Lat = input.Lat
	existing.Lon = input.Lon
	existing.ContactEmail = input.ContactEmail
	existing.ContactPhone = input.ContactPhone
	existing.PersonName = input.PersonName
	existing.Website = input.Website
	existing.SocialMedia = socialMedia
	existing.Videos = videos
	existing.ExtraFields = extraFields

	if err := config.DB.Save(&existing).Error; err != nil {
		logrus.WithError(err).Error("UpdateInitiative: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Initiative updated"})
}

// DeleteInitiative removes a record and its photos. Admins delete anything;
// everyone else only their own rows.
func DeleteInitiative(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))
	role, _ := c.MustGet("role").(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid initiative ID"})
		return
	}

	var initiative models.Initiative
	if err := config.DB.First(&initiative, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Initiative not found"})
		} else {
			logrus.WithError(err).Error("DeleteInitiative: query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	if role != "admin" && initiative.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this initiative"})
		return
	}

	var photos []models.Photo
	if err := config.DB.Where("initiative_id = ?", initiative.ID).Find(&photos).Error; err != nil {
		logrus.WithError(err).Error("DeleteInitiative: photo lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Where("initiative_id = ?", initiative.ID).Delete(&models.Photo{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := tx.Delete(&initiative).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed"})
		return
	}

	// File removal happens after the rows are gone; a leftover file is
	// harmless, a dangling row is not.
	filenames := make([]string, 0, len(photos))
	for _, p := range photos {
		filenames = append(filenames, p.Filename)
	}
	storage.RemovePhotos(filenames)

	c.JSON(http.StatusOK, gin.H{"message": "Initiative deleted"})
}

func respondWithInitiatives(c *gin.Context, initiatives []models.Initiative) {
	ids := make([]uint, 0, len(initiatives))
	for _, i := range initiatives {
		ids = append(ids, i.ID)
	}
	grouped, err := attachPhotos(c, ids)
	if err != nil {
		logrus.WithError(err).Error("attachPhotos: photo lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	responses := make([]InitiativeResponse, 0, len(initiatives))
	for _, i := range initiatives {
		responses = append(responses, toInitiativeResponse(i, grouped[i.ID]))
	}
	c.JSON(http.StatusOK, responses)
}

// parseSocialMedia requires a JSON array of {platform, url}; malformed input
// is rejected rather than silently stored as empty.
func parseSocialMedia(raw string) (datatypes.JSON, error) {
	if raw == "" || raw == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}
	var links []models.SocialLink
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, err
	}
	out, err := json.Marshal(links)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(out), nil
}

// parseExtraFields requires a JSON object; malformed input is rejected.
func parseExtraFields(raw string) (datatypes.JSON, error) {
	if raw == "" || raw == "null" {
		return datatypes.JSON([]byte("{}")), nil
	}
	var kv map[string]any
	if err := json.Unmarshal([]byte(raw), &kv); err != nil {
		return nil, err
	}
	out, err := json.Marshal(kv)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(out), nil
}

// coerceStringList accepts either a JSON array of strings or a single string,
// which is wrapped into a one-element list.
func coerceStringList(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out, _ := json.Marshal(list)
		return datatypes.JSON(out), nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		out, _ := json.Marshal([]string{single})
		return datatypes.JSON(out), nil
	}
	return nil, errors.New("expected a string or an array of strings")
}

func parseIntField(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloatField(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
