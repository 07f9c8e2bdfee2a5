package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/ritujaab/workout-planner/internal/domain"
	"github.com/ritujaab/workout-planner/internal/repository"
)

const jwtIssuer = "workout-planner"

// AuthService issues and checks the identity every workout call is scoped by.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// RequestPasswordReset mails a reset link. An unknown email is not an error
	// so callers cannot probe for accounts.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) (string, *domain.User, error)
	// ParseToken validates a bearer token and returns the user id it carries.
	ParseToken(tokenString string) (primitive.ObjectID, error)
}

// AuthConfig holds the settings of authService.
type AuthConfig struct {
	JWTSecret     string
	JWTExpiration time.Duration
	ResetTTL      time.Duration
	ResetBaseURL  string // Frontend origin, the token is appended as /reset-password/<token>
}

// authService implements the AuthService interface.
type authService struct {
	userRepo repository.UserRepository
	mailer   Mailer
	cfg      AuthConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, mailer Mailer, cfg AuthConfig, logger zerolog.Logger) AuthService {
	if cfg.JWTSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if cfg.JWTExpiration <= 0 {
		cfg.JWTExpiration = 72 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &authService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Signup handles new user registration and logs the user in.
func (s *authService) Signup(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if err := validateSignup(email, password); err != nil {
		return "", nil, err
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return "", nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, ErrHashingFailed
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		// Another signup with the same email won the race; the unique index caught it
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, ErrUserAlreadyExists
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("user signed up")

	return s.issue(user)
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, &ValidationError{EmptyFields: missingCredentials(email, password)}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	return s.issue(user)
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		verr := &ValidationError{}
		verr.invalid("email", "Please provide a valid email address")
		return verr
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info().Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token := uuid.NewString()
	expires := s.now().UTC().Add(s.cfg.ResetTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, hashToken(token), expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := strings.TrimRight(s.cfg.ResetBaseURL, "/") + "/reset-password/" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) (string, *domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return "", nil, ErrInvalidResetToken
	}
	if err := validatePassword(password); err != nil {
		return "", nil, err
	}

	user, err := s.userRepo.GetByResetTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidResetToken
		}
		return "", nil, fmt.Errorf("lookup reset token: %w", err)
	}
	if user.ResetExpiresAt == nil || !s.now().Before(*user.ResetExpiresAt) {
		return "", nil, ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, ErrHashingFailed
	}
	if err := s.userRepo.SetPassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return "", nil, fmt.Errorf("store password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.ResetTokenHash = ""
	user.ResetExpiresAt = nil
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("password reset")

	return s.issue(user)
}

func (s *authService) ParseToken(tokenString string) (primitive.ObjectID, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, ErrAuthenticationFailed
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrAuthenticationFailed
	}
	return id, nil
}

// issue signs a token for user and strips the password hash.
func (s *authService) issue(user *domain.User) (string, *domain.User, error) {
	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	user.PasswordHash = ""
	return token, user, nil
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func missingCredentials(email, password string) []string {
	var fields []string
	if email == "" {
		fields = append(fields, "email")
	}
	if password == "" {
		fields = append(fields, "password")
	}
	return fields
}

func validateSignup(email, password string) error {
	if email == "" || password == "" {
		return &ValidationError{EmptyFields: missingCredentials(email, password)}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		verr := &ValidationError{}
		verr.invalid("email", "Email is not valid")
		return verr
	}
	return validatePassword(password)
}

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// validatePassword requires at least 8 characters with a lower case letter, an
// upper case letter, a digit and a symbol, and at most maxPasswordBytes bytes.
func validatePassword(password string) error {
	if len(password) > maxPasswordBytes {
		verr := &ValidationError{}
		verr.invalid("password", fmt.Sprintf("Password must be at most %d bytes long", maxPasswordBytes))
		return verr
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if len([]rune(password)) < 8 || !lower || !upper || !digit || !symbol {
		verr := &ValidationError{}
		verr.invalid("password", "Password is not strong enough. Include upper & lower case letters, a number, a symbol, and at least 8 characters.")
		return verr
	}
	return nil
}
