package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"digital-advisor/internal/domain"
	"digital-advisor/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput for register request body.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput for login request body.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccessToken is returned by Login.
type AccessToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Profile is the /auth/me shape.
type Profile struct {
	UserID    uuid.UUID       `json:"user_id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

type Service struct {
	DB          *gorm.DB
	Tokens      *Tokens
	Revocations *Revocations
}

// ValidateRegistration returns the first rule the input breaks.
func ValidateRegistration(in RegisterInput) error {
	if !validation.IsValidUsername(in.Username) {
		return domain.InvalidArgument("Username is required")
	}
	if !validation.IsValidEmail(strings.TrimSpace(in.Email)) {
		return domain.InvalidArgument("Valid email is required")
	}
	if in.Password == "" {
		return domain.InvalidArgument("Password is required")
	}
	if !validation.IsValidPassword(in.Password) {
		return domain.InvalidArgument("Password must be at least %d characters long", validation.MinPasswordLength)
	}
	return nil
}

// Register creates the user and a zero-balance account in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := ValidateRegistration(in); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Username: username, Email: email, PasswordHash: string(hash)}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.User{}).
			Where("username = ? OR email = ?", username, email).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUserExists
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Account{UserID: user.UserID, Balance: decimal.Zero}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.UserID.String()).Str("username", username).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AccessToken, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, domain.InvalidArgument("Username and password are required")
	}
	var u domain.User
	err := s.DB.WithContext(ctx).Where("username = ?", strings.TrimSpace(in.Username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrBadCredentials
	}

	signed, claims, err := s.Tokens.Issue(u.UserID, u.Username)
	if err != nil {
		return nil, err
	}
	return &AccessToken{AccessToken: signed, TokenType: "Bearer", ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.Revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, domain.Unavailable(err, "Authentication is temporarily unavailable.")
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Me returns the user's profile with the current balance.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var u domain.User
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	var acct domain.Account
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&acct).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &Profile{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		Balance:   acct.Balance,
		CreatedAt: u.CreatedAt,
	}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	return s.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.Tokens.now()))
}
