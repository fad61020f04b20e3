package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/casekart/casekart/internal/models"
)

func TestSignUpAndLogIn(t *testing.T) {
	env := newTestEnv(t)

	userID, token := env.signUp("Alice", "a@x.com", "Passw0rd!")
	require.NotZero(t, userID)
	require.NotEmpty(t, token)

	rec, c := env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "Passw0rd!",
	}, "")
	env.invoke(env.Auth.LogIn, c)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.Equal(t, userID, resp.User.ID)
	require.Equal(t, "a@x.com", resp.User.Email)
	require.Equal(t, models.RoleUser, resp.User.Role)
	require.NotEmpty(t, resp.Token)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	env.signUp("Alice", "a@x.com", "Passw0rd!")

	rec, c := env.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Imposter",
		"email":    "a@x.com",
		"password": "other",
	}, "")
	env.invoke(env.Auth.SignUp, c)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	require.Equal(t, "Email already registered", resp["error"])

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Where("email = ?", "a@x.com").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestLogInInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	env.signUp("Alice", "a@x.com", "Passw0rd!")

	// Unknown email and wrong password must be indistinguishable.
	for _, body := range []map[string]string{
		{"email": "nobody@x.com", "password": "Passw0rd!"},
		{"email": "a@x.com", "password": "wrong"},
	} {
		rec, c := env.do(http.MethodPost, "/api/auth/login", body, "")
		env.invoke(env.Auth.LogIn, c)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp map[string]string
		decode(t, rec, &resp)
		require.Equal(t, "Invalid credentials", resp["error"])
	}
}

func TestAdminRoleFromReservedEmail(t *testing.T) {
	env := newTestEnv(t)

	env.signUp("Root", testAdminEmail, "Passw0rd!")

	var user models.User
	require.NoError(t, env.DB.Where("email = ?", testAdminEmail).First(&user).Error)
	require.Equal(t, models.RoleAdmin, user.Role)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)

	_, token := env.signUp("Alice", "a@x.com", "Passw0rd!")

	rec, c := env.do(http.MethodGet, "/api/auth/me", nil, token)
	env.invoke(env.Guard.RequireUser(env.Auth.Me), c)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "Alice", resp.User.Name)
	require.Equal(t, "a@x.com", resp.User.Email)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)

	userID, _ := env.signUp("Alice", "a@x.com", "Passw0rd!")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": "a@x.com",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	})
	expiredToken, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":      "",
		"garbage":      "not.a.token",
		"expired":      expiredToken,
		"wrong secret": signWithSecret(t, userID, []byte("other-secret")),
	} {
		rec, c := env.do(http.MethodGet, "/api/auth/me", nil, token)
		env.invoke(env.Guard.RequireUser(env.Auth.Me), c)
		require.Equal(t, http.StatusUnauthorized, rec.Code, name)

		var resp map[string]string
		decode(t, rec, &resp)
		require.Equal(t, "Please authenticate", resp["error"], name)
	}
}

func TestVerifyRejectsDeletedUser(t *testing.T) {
	env := newTestEnv(t)

	userID, token := env.signUp("Alice", "a@x.com", "Passw0rd!")
	require.NoError(t, env.DB.Delete(&models.User{}, userID).Error)

	rec, c := env.do(http.MethodGet, "/api/auth/me", nil, token)
	env.invoke(env.Guard.RequireUser(env.Auth.Me), c)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDByEmail(t *testing.T) {
	env := newTestEnv(t)

	userID, _ := env.signUp("Alice", "a@x.com", "Passw0rd!")

	rec, c := env.do(http.MethodGet, "/api/users/getUserId/a@x.com", nil, "")
	c.SetParamNames("email")
	c.SetParamValues("a@x.com")
	env.invoke(env.Auth.GetUserIDByEmail, c)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]uint
	decode(t, rec, &resp)
	require.Equal(t, userID, resp["userId"])

	rec2, c2 := env.do(http.MethodGet, "/api/users/getUserId/none@x.com", nil, "")
	c2.SetParamNames("email")
	c2.SetParamValues("none@x.com")
	env.invoke(env.Auth.GetUserIDByEmail, c2)
	require.Equal(t, http.StatusNotFound, rec2.Code)
}

func signWithSecret(t *testing.T, userID uint, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}
