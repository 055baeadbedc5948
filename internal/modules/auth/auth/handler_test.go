package auth_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/middleware"
	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/auth/auth"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/jwt"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/mail"
	"github.com/rianAnugrah/xyz-portal-backend/internal/testsupport"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AuthSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	signer *jwt.Signer
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.db = testsupport.NewDB(s.T())
	s.signer = jwt.NewSigner("test-secret", time.Hour)

	router, api := testsupport.NewRouter()
	auth.NewHandler(auth.NewService(s.db, s.signer, nil)).RegisterRoutes(api, middleware.Auth(s.signer))
	s.router = router
}

func (s *AuthSuite) register(email, pass string) {
	w, _ := testsupport.Do(s.T(), s.router, http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": pass, "name": "Rina Editor",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *AuthSuite) TestRegisterAndLogin() {
	s.register("Rina@Example.com", "secret123")

	var u models.UserModel
	s.Require().NoError(s.db.Where("email = ?", "rina@example.com").First(&u).Error)
	s.Equal("rina", u.Username)
	s.Equal("Rina Editor", u.Fullname)
	s.NotEqual("secret123", u.PasswordHash)

	w, env := testsupport.Do(s.T(), s.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "rina@example.com", "password": "secret123",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token string                 `json:"token"`
		User  map[string]interface{} `json:"user"`
	}
	testsupport.Decode(s.T(), env.Data, &out)
	s.NotEmpty(out.Token)
	s.NotContains(out.User, "password_hash")

	claims, err := s.signer.Parse(out.Token)
	s.Require().NoError(err)
	s.Equal(u.UserID, claims.UserID)
}

func (s *AuthSuite) TestRegisterRejectsDuplicateEmail() {
	s.register("dup@example.com", "secret123")

	w, _ := testsupport.Do(s.T(), s.router, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "dup@example.com", "password": "another1",
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *AuthSuite) TestLoginFailures() {
	s.register("known@example.com", "secret123")

	tests := []struct {
		name  string
		body  map[string]string
		code  int
		inMsg string
	}{
		{"unknown user", map[string]string{"email": "nobody@example.com", "password": "x"}, http.StatusBadRequest, "User not found"},
		{"wrong password", map[string]string{"email": "known@example.com", "password": "nope"}, http.StatusUnauthorized, "Invalid credentials"},
		{"missing password", map[string]string{"email": "known@example.com"}, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w, env := testsupport.Do(s.T(), s.router, http.MethodPost, "/api/auth/login", tt.body)
			s.Equal(tt.code, w.Code)
			s.Equal(tt.inMsg, env.Message)
		})
	}
}

func (s *AuthSuite) TestLoginUpgradesLegacyDigest() {
	sum := sha256.Sum256([]byte("legacy-pass"))
	legacy := hex.EncodeToString(sum[:])
	s.Require().NoError(s.db.Create(&models.UserModel{
		Username: "old", Email: "old@example.com", PasswordHash: legacy,
	}).Error)

	w, _ := testsupport.Do(s.T(), s.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "old@example.com", "password": "legacy-pass",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var u models.UserModel
	s.Require().NoError(s.db.Where("email = ?", "old@example.com").First(&u).Error)
	s.NotEqual(legacy, u.PasswordHash)
	s.Contains(u.PasswordHash, "$2")

	w, _ = testsupport.Do(s.T(), s.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "old@example.com", "password": "legacy-pass",
	})
	s.Equal(http.StatusOK, w.Code)
}

func (s *AuthSuite) TestForgotPasswordStoresHashedToken() {
	w, env := testsupport.Do(s.T(), s.router, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": "reset@example.com",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	testsupport.Decode(s.T(), env.Data, &out)
	s.Require().NotEmpty(out.Token)

	var reset models.PasswordResetModel
	s.Require().NoError(s.db.Where("email = ?", "reset@example.com").First(&reset).Error)
	sum := sha256.Sum256([]byte(out.Token))
	s.Equal(hex.EncodeToString(sum[:]), reset.TokenHash)
}

type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func (s *AuthSuite) TestForgotPasswordMailsResetLink() {
	tests := []struct {
		name    string
		sendErr error
	}{
		{"delivered", nil},
		{"mail failure still answers", errors.New("smtp down")},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			mailer := &recordingMailer{err: tt.sendErr}
			router, api := testsupport.NewRouter()
			svc := auth.NewService(s.db, s.signer, nil, auth.WithResetMail(mailer, "https://cms.xyz.test/reset?token="))
			auth.NewHandler(svc).RegisterRoutes(api, middleware.Auth(s.signer))

			w, env := testsupport.Do(s.T(), router, http.MethodPost, "/api/auth/forgot-password", map[string]string{
				"email": "Desk@Example.com",
			})
			s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
			var out struct {
				Token string `json:"token"`
			}
			testsupport.Decode(s.T(), env.Data, &out)

			s.Require().Len(mailer.sent, 1)
			s.Equal([]string{"desk@example.com"}, mailer.sent[0].To)
			s.True(strings.Contains(mailer.sent[0].HTML, "https://cms.xyz.test/reset?token="+out.Token))
		})
	}
}

func (s *AuthSuite) TestMe() {
	w, _ := testsupport.Do(s.T(), s.router, http.MethodGet, "/api/auth/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	s.register("me@example.com", "secret123")
	var u models.UserModel
	s.Require().NoError(s.db.Where("email = ?", "me@example.com").First(&u).Error)
	token, err := s.signer.Sign(u.UserID, u.Email, u.Role)
	s.Require().NoError(err)

	w, env := testsupport.Do(s.T(), s.router, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+token)
	s.Require().Equal(http.StatusOK, w.Code)
	var got models.UserModel
	testsupport.Decode(s.T(), env.Data, &got)
	s.Equal("me@example.com", got.Email)
}
