package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"stlprime/internal/models"
	"stlprime/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Authentication errors. Unknown user and wrong password both surface as
// ErrInvalidCredentials so callers cannot enumerate registered emails.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
)

// AuthService handles credential storage and bearer token issuance.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService. tokenTTL bounds the validity of
// issued tokens; bcryptCost is clamped to the bcrypt default when out of range.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// RegisterUser hashes the password and persists a new active user. The
// database's unique index on email decides duplicates, so concurrent
// registrations for the same address resolve to exactly one winner.
func (s *AuthService) RegisterUser(email, password, fullName string, isMerchant bool) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:      email,
		Password:   string(hashedPassword),
		FullName:   fullName,
		IsActive:   true,
		IsMerchant: isMerchant,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed JWT if successful.
// Only a missing user maps to ErrInvalidCredentials; a storage failure
// propagates so callers can surface it as a server error.
func (s *AuthService) LoginUser(email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(user.Email, user.ID)
}

// IssueToken signs an HS256 token asserting the given subject. The token
// carries sub, user_id, exp, iat and a random jti, and is valid for the
// configured TTL from now.
func (s *AuthService) IssueToken(subject string, userID uint) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     subject,
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
		"jti":     uuid.New().String(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and verifies a JWT, returning its claims if valid.
// Expired tokens fail with ErrExpiredToken even when correctly signed;
// anything else (bad signature, malformed payload, wrong algorithm) fails
// with ErrInvalidToken.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
