package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/casekart/casekart/internal/models"
)

const userContextKey = "user"

// Guard authenticates bearer tokens and loads the referenced user. A token
// whose user no longer exists is rejected the same way as a bad token.
type Guard struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func (g *Guard) authenticate(c echo.Context) (*models.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, errors.New("no token provided")
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if tokenString == "" {
		return nil, errors.New("no token provided")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, errors.New("invalid subject claim")
	}

	var user models.User
	if err := g.DB.First(&user, uint(sub)).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

func (g *Guard) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.authenticate(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Please authenticate"})
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireUser(func(c echo.Context) error {
		user, _ := CurrentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied"})
		}
		return next(c)
	})
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(userContextKey).(*models.User)
	return user, ok
}
