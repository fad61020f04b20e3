package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casekart/casekart/internal/handlers"
	authmw "github.com/casekart/casekart/internal/middleware/auth"
	"github.com/casekart/casekart/internal/models"
	"github.com/casekart/casekart/internal/otp"
	"github.com/casekart/casekart/pkg/db"
)

var testSecret = []byte("test-secret")

const testAdminEmail = "admin@example.com"

type fakeMailer struct {
	to   []string
	body []string
}

func (m *fakeMailer) Send(_ context.Context, to, _, body string) error {
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Guard    *authmw.Guard
	Auth     *handlers.AuthHandler
	Password *handlers.PasswordHandler
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
	Codes    *otp.Store
	Mailer   *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	codes := otp.NewStore(5 * time.Minute)
	t.Cleanup(codes.Close)

	mailer := &fakeMailer{}

	env := &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     gdb,
		Guard:  &authmw.Guard{DB: gdb, JWTSecret: testSecret},
		Codes:  codes,
		Mailer: mailer,
	}
	env.Auth = &handlers.AuthHandler{DB: gdb, JWTSecret: testSecret, AdminEmail: testAdminEmail}
	env.Password = &handlers.PasswordHandler{DB: gdb, Codes: codes, Mailer: mailer}
	env.Product = &handlers.ProductHandler{DB: gdb}
	env.Cart = &handlers.CartHandler{DB: gdb}
	env.Order = &handlers.OrderHandler{DB: gdb}

	return env
}

func (env *testEnv) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// invoke runs a handler (possibly middleware-wrapped) and routes any
// returned error through echo's error handler so the recorder sees the
// final status code.
func (env *testEnv) invoke(h echo.HandlerFunc, c echo.Context) {
	if err := h(c); err != nil {
		env.E.HTTPErrorHandler(err, c)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// signUp registers a user through the real handler and returns its id and
// bearer token.
func (env *testEnv) signUp(name, email, password string) (uint, string) {
	env.T.Helper()

	rec, c := env.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, "")
	env.invoke(env.Auth.SignUp, c)
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decode(env.T, rec, &resp)
	require.NotZero(env.T, resp.User.ID)
	require.NotEmpty(env.T, resp.Token)
	return resp.User.ID, resp.Token
}

func (env *testEnv) createProduct(p models.Product) models.Product {
	env.T.Helper()
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}
