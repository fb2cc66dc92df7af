package service

import (
	"errors"
	"fmt"
	"time"

	"decryptrace/internal/config"
	"decryptrace/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	adminTokenTTL = 12 * time.Hour
	teamTokenTTL  = 24 * time.Hour
)

// AuthService handles admin login and team tokens
type AuthService struct {
	adminUsername string
	passwordHash  []byte
	jwtSecret     []byte
}

// NewAuthService creates a new auth service. A plain password is hashed once at startup.
func NewAuthService(cfg config.AuthConfig) (*AuthService, error) {
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}

	return &AuthService{
		adminUsername: cfg.AdminUsername,
		passwordHash:  hash,
		jwtSecret:     []byte(cfg.JWTSecret),
	}, nil
}

// Login validates admin credentials and returns a token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.adminUsername {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := &model.AdminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
		},
	}

	token, err := s.sign(claims)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token}, nil
}

// ValidateAdminToken validates an admin JWT and returns claims
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	claims := &model.AdminClaims{}
	if err := s.parse(tokenString, claims); err != nil || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateTeamToken creates a token binding requests to one team
func (s *AuthService) GenerateTeamToken(teamName string) (string, error) {
	now := time.Now()
	return s.sign(&model.TeamClaims{
		TeamName: teamName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(teamTokenTTL)),
		},
	})
}

// ValidateTeamToken validates a team JWT and returns claims
func (s *AuthService) ValidateTeamToken(tokenString string) (*model.TeamClaims, error) {
	claims := &model.TeamClaims{}
	if err := s.parse(tokenString, claims); err != nil || claims.TeamName == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
