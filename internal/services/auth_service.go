package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dogubilet/ticket-backend/internal/models"
	"github.com/dogubilet/ticket-backend/pkg/jwt"
	"github.com/dogubilet/ticket-backend/pkg/validator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup, login and profile management
type AuthService struct {
	users      UserStore
	jwtService *jwt.Service
	passwords  *validator.PasswordValidator
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtService *jwt.Service, bcryptCost int, logger *logrus.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		passwords:  validator.NewPasswordValidator(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Signup creates a user account with the "user" role
func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" || req.BirthDate == "" || req.Email == "" || req.Password == "" {
		return nil, models.ErrMissingFields
	}

	email, err := validator.NormalizeEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	birthDate, err := models.ParseDate(req.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		BirthDate:    birthDate,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User signed up")
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:        user,
	}, nil
}

// GetProfile returns the account of userID
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile replaces name, surname, birth date and email. All four are
// required and the email must not belong to another account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" || strings.TrimSpace(req.BirthDate) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, models.ErrMissingFields
	}

	email, err := validator.NormalizeEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	birthDate, err := models.ParseDate(strings.TrimSpace(req.BirthDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	taken, err := s.users.EmailTakenByOther(ctx, email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.ErrEmailTaken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.BirthDate = birthDate
	user.Email = email

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword checks the rules in order: all fields present, new and
// repeat equal, strength, then the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" || req.RepeatPassword == "" {
		return models.ErrMissingFields
	}
	if req.NewPassword != req.RepeatPassword {
		return models.ErrPasswordMismatch
	}
	if err := s.passwords.Validate(req.NewPassword); err != nil {
		return fmt.Errorf("%w: %v", models.ErrWeakPassword, err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return models.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.WithField("user_id", userID).Info("Password changed")
	return nil
}

// PromoteAdmin grants the admin role to the account with email, if any
func (s *AuthService) PromoteAdmin(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	return s.users.PromoteToAdmin(ctx, email)
}
