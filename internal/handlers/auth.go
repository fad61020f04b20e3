package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/casekart/casekart/internal/hash"
	"github.com/casekart/casekart/internal/logging"
	authmw "github.com/casekart/casekart/internal/middleware/auth"
	"github.com/casekart/casekart/internal/models"
	"github.com/casekart/casekart/internal/mykafka"
)

const tokenLifetime = time.Hour

type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  []byte
	AdminEmail string
	Producer   *mykafka.Producer
}

func (h *AuthHandler) signToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func userPayload(u *models.User) echo.Map {
	return echo.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	req.Email = normalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
	}

	var existing models.User
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already registered"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating user"})
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating user"})
	}

	role := models.RoleUser
	if req.Email == h.AdminEmail {
		role = models.RoleAdmin
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating user"})
	}

	token, err := h.signToken(&user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating user"})
	}

	h.publish(c, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    userPayload(&user),
		"token":   token,
	})
}

func (h *AuthHandler) LogIn(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	// Unknown email and wrong password answer identically so callers cannot
	// probe which addresses are registered.
	var user models.User
	if err := h.DB.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	token, err := h.signToken(&user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error logging in"})
	}

	h.publish(c, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"user":  userPayload(&user),
		"token": token,
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Please authenticate"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": userPayload(user)})
}

// LogOut is stateless: the token stays valid until its expiry and the client
// is expected to discard it.
func (h *AuthHandler) LogOut(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) GetUserIDByEmail(c echo.Context) error {
	email := normalizeEmail(c.Param("email"))

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"userId": user.ID})
}
