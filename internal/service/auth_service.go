package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"

	"github.com/fjod/saree_store/internal/cache"
	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/logger"
	"github.com/fjod/saree_store/internal/mailer"
	"github.com/fjod/saree_store/internal/repository"
	"go.uber.org/zap"
)

const otpDigits = 6

type SignupInput struct {
	Name  string
	Email string
	Phone string
}

// AuthService implements passwordless login: signup, then a mailed one-time code.
// Issuing a session after a successful login is left to the caller.
type AuthService struct {
	users  repository.UserRepository
	otps   cache.OTPStore
	mailer mailer.Mailer
	log    *zap.Logger
	// swapped in tests
	generate func() (string, error)
}

func NewAuthService(users repository.UserRepository, otps cache.OTPStore, m mailer.Mailer, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		otps:     otps,
		mailer:   m,
		log:      log,
		generate: generateOTP,
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || !validEmail(email) {
		return nil, ErrInvalidSignup
	}

	user := &domain.User{
		Name:  strings.TrimSpace(in.Name),
		Email: email,
		Phone: strings.TrimSpace(in.Phone),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("user signed up", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// SendOTP mails a fresh code to a registered user, replacing any pending one.
func (s *AuthService) SendOTP(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidSignup
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.otps.Save(ctx, email, hashOTP(email, code)); err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, email, code)
}

// VerifyOTP consumes the pending code. Each call counts as an attempt.
func (s *AuthService) VerifyOTP(ctx context.Context, email string, code string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	stored, err := s.otps.Attempt(ctx, email)
	if errors.Is(err, cache.ErrOTPNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}

	if !hmac.Equal([]byte(stored), []byte(hashOTP(email, strings.TrimSpace(code)))) {
		logger.FromContext(ctx, s.log).Info("otp mismatch")
		return nil, ErrInvalidOTP
	}
	if err := s.otps.Delete(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.users.TouchLogin(ctx, user.ID); err != nil {
		logger.FromContext(ctx, s.log).Warn("failed to record login", zap.Error(err))
	}
	return user, nil
}

func generateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func hashOTP(email, code string) string {
	sum := sha256.Sum256([]byte(email + ":" + code))
	return hex.EncodeToString(sum[:])
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
