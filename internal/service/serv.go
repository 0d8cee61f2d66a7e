package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	security "github.com/wayofglory/shop/internal/jwt-new"
	"github.com/wayofglory/shop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials hides whether the account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	log       *slog.Logger
	staffRepo storage.StaffStorage
	tokenTTL  time.Duration
}

func NewAuthService(log *slog.Logger, staffRepo storage.StaffStorage, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:       log,
		staffRepo: staffRepo,
		tokenTTL:  tokenTTL,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Login authenticates a staff account and issues a JWT. There is no
// self-registration: staff accounts are provisioned through
// migrations, and storefront customers never have accounts.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.AuthService.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking staff account")

	staff, err := a.staffRepo.GetStaffByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrStaffNotFound) {
			logger.Warn("staff account not found")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get staff account", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get staff account: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(staff.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := security.NewToken(ctx, staff, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("staff logged in successfully", slog.Int64("staffID", staff.ID))
	return token, nil
}
