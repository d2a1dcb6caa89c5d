package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zelora-backend/config"
	"zelora-backend/internal/domain"
	"zelora-backend/pkg/logger"
	"zelora-backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	userRepo    domain.UserRepository
	emailSender domain.EmailSender
	cfg         *config.Config
}

func NewAuthUsecase(userRepo domain.UserRepository, emailSender domain.EmailSender, cfg *config.Config) *AuthUsecase {
	return &AuthUsecase{
		userRepo:    userRepo,
		emailSender: emailSender,
		cfg:         cfg,
	}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, "", fmt.Errorf("%w: first name is required", domain.ErrValidation)
	}

	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("%w: email already registered", domain.ErrValidation)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         "customer",
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, u.cfg.AccessTokenExpiry)
	if err != nil {
		return nil, "", err
	}

	u.sendWelcomeEmail(ctx, user)

	logger.Info().Str("user_id", user.ID).Msg("Auth: user registered")
	return user, token, nil
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, u.cfg.AccessTokenExpiry)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

func (u *AuthUsecase) sendWelcomeEmail(ctx context.Context, user *domain.User) {
	detached := context.WithoutCancel(ctx)
	go func() {
		c, cancel := context.WithTimeout(detached, 15*time.Second)
		defer cancel()

		body := fmt.Sprintf("Hi %s,\n\nWelcome! Your account is ready.\n", user.FirstName)
		if err := u.emailSender.Send(c, user.Email, "Welcome", body); err != nil {
			logger.Warn().Err(err).Str("user_id", user.ID).Msg("Auth: welcome email failed")
		}
	}()
}
