package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/jwt"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/mail"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/password"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mailer delivers the password reset email.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Service struct {
	db       *gorm.DB
	signer   *jwt.Signer
	logger   *zap.Logger
	mailer   Mailer
	resetURL string
}

type Option func(*Service)

// WithResetMail emails the reset link, resetURL followed by the token.
func WithResetMail(m Mailer, resetURL string) Option {
	return func(s *Service) {
		s.mailer = m
		s.resetURL = resetURL
	}
}

func NewService(db *gorm.DB, signer *jwt.Signer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{db: db, signer: signer, logger: logger.Named("auth")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, dto *RegisterDTO) (*models.UserModel, error) {
	email := normalizeEmail(dto.Email)
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}

	hash, err := password.Hash(dto.Password)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(dto.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	u := models.UserModel{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Fullname:     strings.TrimSpace(dto.Name),
	}
	return &u, s.db.WithContext(ctx).Create(&u).Error
}

// Login verifies the credentials and returns a signed token. Legacy password
// digests are replaced with bcrypt on the first successful login.
func (s *Service) Login(ctx context.Context, email, plain string) (string, *models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errUserNotFound
		}
		return "", nil, err
	}

	upgrade, err := password.Verify(u.PasswordHash, plain)
	if err != nil {
		return "", nil, errWrongPassword
	}
	if upgrade {
		s.upgradeHash(ctx, &u, plain)
	}

	token, err := s.signer.Sign(u.UserID, u.Email, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, &u, nil
}

func (s *Service) upgradeHash(ctx context.Context, u *models.UserModel, plain string) {
	hash, err := password.Hash(plain)
	if err == nil {
		err = s.db.WithContext(ctx).Model(u).Update("password_hash", hash).Error
	}
	if err != nil {
		s.logger.Warn("password hash upgrade failed", zap.Uint("user_id", u.UserID), zap.Error(err))
		return
	}
	u.PasswordHash = hash
}

// ForgotPassword stores a reset token for email and returns the plain token.
// Only the SHA-256 of the token is persisted. A mail failure is logged and
// does not fail the call.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()
	sum := sha256.Sum256([]byte(token))
	reset := models.PasswordResetModel{
		Email:     normalizeEmail(email),
		TokenHash: hex.EncodeToString(sum[:]),
	}
	if err := s.db.WithContext(ctx).Create(&reset).Error; err != nil {
		return "", err
	}
	if s.mailer != nil {
		s.sendResetMail(ctx, reset.Email, token)
	}
	return token, nil
}

func (s *Service) sendResetMail(ctx context.Context, email, token string) {
	msg, err := mail.PasswordReset(email, s.resetURL, token)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.Warn("password reset mail failed", zap.String("email", email), zap.Error(err))
	}
}

func (s *Service) Me(ctx context.Context, userID uint) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
