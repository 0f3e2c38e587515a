package controllers_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"geocollect/internal/config"
	"geocollect/internal/controllers"
	"geocollect/internal/middleware"
	"geocollect/internal/models"
	"geocollect/internal/routes"
)

// mailRecorder stands in for the SMTP queue and records every notification.
type mailRecorder struct {
	mu            sync.Mutex
	confirmations map[string]string // email -> token
	resets        map[string]string // email -> token
	alerts        []string
}

func newMailRecorder() *mailRecorder {
	return &mailRecorder{
		confirmations: make(map[string]string),
		resets:        make(map[string]string),
	}
}

func (m *mailRecorder) SendConfirmation(toEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations[toEmail] = token
	return nil
}

func (m *mailRecorder) SendReset(toEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[toEmail] = token
	return nil
}

func (m *mailRecorder) SendSubmissionAlert(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, name)
	return nil
}

func (m *mailRecorder) confirmationFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirmations[email]
}

func (m *mailRecorder) resetFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[email]
}

func (m *mailRecorder) alertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

// setupTest wires the router against a throwaway sqlite database and a
// recording mail sender.
func setupTest(t *testing.T) (*gin.Engine, *mailRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	config.DB = db

	rec := newMailRecorder()
	controllers.Mail = rec

	t.Setenv("UPLOAD_DIR", filepath.Join(t.TempDir(), "photos"))

	return routes.SetupRouter(), rec
}

// createUser seeds a confirmed or unconfirmed account directly in the store.
// The password is always "password123".
func createUser(t *testing.T, email, role string, confirmed bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Email:        email,
		Password:     string(hash),
		Role:         role,
		Name:         "Test",
		Surname:      "User",
		Phone:        "0600000000",
		Organization: "Test Org",
		Confirmed:    confirmed,
	}
	require.NoError(t, config.DB.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return token
}
