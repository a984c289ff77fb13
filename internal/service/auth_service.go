package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

const minPasswordLength = 6

var errBadCredentials = apperrors.Unauthorized("invalid email or password")

// AuthService owns sync accounts and the HS256 bearer tokens that identify
// them. A token's subject is the user id.
type AuthService struct {
	users     *repository.UserRepository
	settings  *repository.SettingsRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func NewAuthService(
	users *repository.UserRepository,
	settings *repository.SettingsRepository,
	jwtSecret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:     users,
		settings:  settings,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates the account together with its default timer settings.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, *apperrors.APIError) {
	email = normalizeEmail(email)
	switch {
	case email == "":
		return nil, apperrors.BadRequest("invalid_email", "email is required")
	case len(password) < minPasswordLength:
		return nil, apperrors.BadRequest("invalid_password", "password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to secure password")
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch err := s.users.Create(ctx, &user); {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperrors.Conflict("email_exists", "email already registered", nil)
	case err != nil:
		return nil, apperrors.Internal("failed to create user")
	}

	defaults := model.DefaultPomodoroSettings(user.ID, now)
	if err := s.settings.Create(ctx, &defaults); err != nil {
		return nil, apperrors.Internal("failed to initialize user settings")
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, *apperrors.APIError) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.BadRequest("invalid_credentials", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, errBadCredentials
	case err != nil:
		return nil, apperrors.Internal("failed to query user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errBadCredentials
	}
	return s.issue(*user)
}

// CurrentUser loads the account a token was issued for, without its
// password hash.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, *apperrors.APIError) {
	user, err := s.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.Unauthorized("account no longer exists")
	case err != nil:
		return nil, apperrors.Internal("failed to query user")
	}
	user.PasswordHash = ""
	return user, nil
}

// ParseToken validates a bearer token and returns its subject.
func (s *AuthService) ParseToken(raw string) (string, *apperrors.APIError) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", apperrors.Unauthorized("invalid token")
	}
	if claims.Subject == "" {
		return "", apperrors.Unauthorized("invalid token subject")
	}
	return claims.Subject, nil
}

func (s *AuthService) issue(user model.User) (*AuthResult, *apperrors.APIError) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token")
	}

	user.PasswordHash = ""
	return &AuthResult{Token: signed, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
