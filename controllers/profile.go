package controllers

import (
	"errors"
	"net/http"
	"strings"

	"invoicepro-backend/config"
	"invoicepro-backend/models"
	"invoicepro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateProfileInput struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Phone *string `json:"phone"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return nil, false
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	return &user, true
}

func GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userResponse(*user))
}

func UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithValidationError(c, map[string]string{"phone": "phone"})
			return
		}
		updates["phone"] = *input.Phone
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		var other models.User
		err := config.DB.Where("email = ? AND id <> ?", email, user.ID).First(&other).Error
		if err == nil {
			utils.RespondWithError(c, http.StatusConflict, "Email already registered")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		updates["email"] = email
	}

	if len(updates) > 0 {
		if err := config.DB.Model(user).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": userResponse(*user)})
}

func ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}
	if err := config.DB.Model(user).Update("password", hashed).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// GetSettings reports business details and which integrations are configured.
func GetSettings(c *gin.Context) {
	cfg := config.App
	c.JSON(http.StatusOK, gin.H{
		"business": gin.H{
			"name":    cfg.BusinessName,
			"address": cfg.BusinessAddress,
			"email":   cfg.BusinessEmail,
		},
		"defaultPaymentTermsDays": cfg.DefaultPaymentTermsDays,
		"emailEnabled":            app.Notifications.Mailer != nil,
		"smsEnabled":              app.Notifications.SMS != nil,
		"overdueSmsReminders":     cfg.OverdueSMSReminders,
		"receiptParsingEnabled":   app.Receipts.Enabled(),
		"backupsEnabled":          cfg.BackupEnabled,
		"backupSchedule":          cfg.BackupSchedule,
		"backupRetentionDays":     cfg.BackupRetentionDays,
		"maxUploadMb":             cfg.MaxUploadMB,
	})
}
