package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
	jwtutil "github.com/cermakludek/legislative-enums-sub000/pkg/jwt"
)

const accessTokenTTL = 12 * time.Hour

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues access tokens for the admin UI. Codelist consumers use
// API keys instead; this only guards the management surface.
type AuthService struct {
	userRepo   repository.UserRepository
	privateKey *rsa.PrivateKey
}

func NewAuthService(userRepo repository.UserRepository, privateKey *rsa.PrivateKey) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		privateKey: privateKey,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	if s.userRepo == nil {
		return "", nil, errors.New("user repository is nil")
	}
	if s.privateKey == nil {
		return "", nil, errors.New("jwt private key is nil")
	}

	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwtutil.NewClaims(user.ID.String(), user.Username, string(user.Role), accessTokenTTL)
	token, err := jwtutil.GenerateAccessToken(claims, s.privateKey)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
