package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"geocollect/internal/config"
	"geocollect/internal/mailer"
	"geocollect/internal/middleware"
	"geocollect/internal/models"
)

// Mail is the notification sender used by the handlers. main wires a queued
// SMTP sender; tests swap in a recorder.
var Mail mailer.Sender = mailer.LogSender{}

type registerInput struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Surname      string `json:"surname" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Organization string `json:"organization" binding:"required"`
}

// RegisterUser creates an unconfirmed editor account and mails a
// confirmation link. The mail is queued after the insert so a delivery
// failure never surfaces as a registration failure.
func RegisterUser(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required and the email must be valid"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	err := config.DB.Where("LOWER(email) = ?", email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("RegisterUser: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		Email:        email,
		Password:     hashed,
		Role:         "editor",
		Name:         input.Name,
		Surname:      input.Surname,
		Phone:        input.Phone,
		Organization: input.Organization,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
			return
		}
		logrus.WithError(err).Error("RegisterUser: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	token, err := middleware.GenerateConfirmToken(user.ID)
	if err != nil {
		logrus.WithError(err).Error("RegisterUser: could not sign confirmation token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	if err := Mail.SendConfirmation(user.Email, token); err != nil {
		logrus.WithError(err).Error("RegisterUser: confirmation mail failed")
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"role":         user.Role,
		"name":         user.Name,
		"surname":      user.Surname,
		"phone":        user.Phone,
		"organization": user.Organization,
		"message":      "Registration successful. Please check your email to confirm your account.",
	})
}

// ConfirmEmail marks the account referenced by the token as confirmed.
// Confirming an already-confirmed account is harmless.
func ConfirmEmail(c *gin.Context) {
	userID, err := middleware.ParseConfirmToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired link"})
		return
	}

	if err := config.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("confirmed", true).Error; err != nil {
		logrus.WithError(err).Error("ConfirmEmail: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Confirmation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed. You can now log in."})
}

// LoginUser verifies credentials, requires a confirmed account, records the
// login time and issues a one-hour session token.
func LoginUser(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := config.DB.Where("LOWER(email) = LOWER(?)", body.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		} else {
			logrus.WithError(err).Error("LoginUser: lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	if !user.Confirmed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please confirm your email before logging in."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&user).Update("last_login", &now).Error; err != nil {
		logrus.WithError(err).Warn("LoginUser: could not record last login")
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

// RequestPasswordReset always answers with the same message so account
// existence cannot be probed.
func RequestPasswordReset(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	const generic = "If the account exists, a reset link has been sent."

	var user models.User
	err := config.DB.Where("LOWER(email) = LOWER(?)", body.Email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("RequestPasswordReset: lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": generic})
		return
	}

	token, err := middleware.GenerateResetToken(user.ID)
	if err != nil {
		logrus.WithError(err).Error("RequestPasswordReset: could not sign reset token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := Mail.SendReset(user.Email, token); err != nil {
		logrus.WithError(err).Error("RequestPasswordReset: reset mail failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": generic})
}

// VerifyResetToken lets the reset form check a token before showing itself.
func VerifyResetToken(c *gin.Context) {
	if _, err := middleware.ParseResetToken(c.Param("token")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "Invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ApplyPasswordReset overwrites the password referenced by a valid reset token.
func ApplyPasswordReset(c *gin.Context) {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || len(body.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password too short (min 8 characters)"})
		return
	}

	userID, err := middleware.ParseResetToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	hashed, err := hashPassword(body.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	if err := config.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("password", hashed).Error; err != nil {
		logrus.WithError(err).Error("ApplyPasswordReset: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func publicUser(user models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"role":         user.Role,
		"name":         user.Name,
		"surname":      user.Surname,
		"phone":        user.Phone,
		"organization": user.Organization,
	}
}
