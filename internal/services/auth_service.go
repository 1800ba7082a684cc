package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/siddeshwardm/chat-application/internal/auth"
	"github.com/siddeshwardm/chat-application/internal/models"
	"github.com/siddeshwardm/chat-application/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService struct {
	users  *repository.UserRepo
	secret string
	ttl    time.Duration
}

func NewAuthService(users *repository.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{users: users, secret: secret, ttl: ttl}
}

// Signup creates an account and returns it together with a session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = repository.NormalizeEmail(in.Email)
	if in.FullName == "" || in.Email == "" || in.Password == "" {
		return nil, "", inputError("All fields are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", inputError("Password must be at least 6 characters")
	}
	if s.secret == "" {
		return nil, "", auth.ErrMissingSecret
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Email: in.Email, FullName: in.FullName, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("email", in.Email).Msg("Failed to create user")
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := auth.GenerateUserToken(user.ID.String(), s.secret, s.ttl)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	log.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user signed up")
	return user, token, nil
}

// Login verifies credentials. Unknown emails and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if s.secret == "" {
		return nil, "", auth.ErrMissingSecret
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateUserToken(user.ID.String(), s.secret, s.ttl)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// UpdateProfile stores an already-hosted picture URL for the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, profilePic string) (*models.User, error) {
	profilePic = strings.TrimSpace(profilePic)
	if profilePic == "" {
		return nil, inputError("Profile pic is required")
	}
	user, err := s.users.UpdateProfilePic(ctx, userID, profilePic)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Msg("Failed to update profile")
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}
