package passwordreset

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/pinobite/storefront/internal/accounts"
	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/notify"
	"github.com/pinobite/storefront/internal/store"
)

// RequestAcceptedMessage is returned for every reset request, whether or
// not an account exists.
const RequestAcceptedMessage = "If an account exists, an OTP has been sent to your email."

// InvalidOTPMessage is shown for any failed verify or confirm.
const InvalidOTPMessage = "Invalid or expired OTP."

var ErrInvalidOTP = errors.New("invalid or expired otp")

const defaultMaxAttempts = 5

// wrongCodeError is a mismatch against a live code. Callers see it as
// ErrInvalidOTP.
type wrongCodeError struct {
	otpID int64
}

func (wrongCodeError) Error() string { return ErrInvalidOTP.Error() }

func (wrongCodeError) Is(target error) bool { return target == ErrInvalidOTP }

type Service struct {
	store       *store.Store
	publisher   notify.Publisher
	ttl         time.Duration
	length      int
	maxAttempts int
	logger      *slog.Logger

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func NewService(st *store.Store, publisher notify.Publisher, cfg config.OTPConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = notify.Discard{}
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Service{
		store:       st,
		publisher:   publisher,
		ttl:         cfg.TTL,
		length:      cfg.Length,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "passwordreset"),
		Clock:       time.Now,
	}
}

// Request issues a new code to a staff account. Unknown and non-staff
// addresses are logged and otherwise treated as success.
func (s *Service) Request(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.InfoContext(ctx, "reset requested for unknown email", "email", email)
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsStaff || !user.IsActive {
		s.logger.InfoContext(ctx, "reset requested for non-staff account", "email", email, "user_id", user.ID)
		return nil
	}

	code, err := generateCode(s.length)
	if err != nil {
		return err
	}
	otp := &models.PasswordResetOTP{
		UserID:    user.ID,
		Code:      code,
		Status:    models.OTPStatusRequested,
		CreatedAt: s.Clock().UTC(),
	}
	if err := s.store.CreateOTP(ctx, otp); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	s.logger.InfoContext(ctx, "reset code issued", "user_id", user.ID)
	s.publisher.Publish(notify.PasswordResetRequested{
		Email: user.Email,
		Name:  user.DisplayName(),
		Code:  code,
		TTL:   s.ttl,
	})
	return nil
}

// Verify checks the code against the latest one issued and marks it
// verified. Too many wrong guesses discard the code.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	otp, err := s.valid(ctx, s.store, email, code)
	if err != nil {
		return s.countFailure(ctx, err)
	}
	if otp.Status == models.OTPStatusVerified {
		return nil
	}
	return s.store.MarkOTP(ctx, otp.ID, models.OTPStatusVerified)
}

// Confirm re-checks the code, sets the new password and deletes the code,
// all in one transaction.
func (s *Service) Confirm(ctx context.Context, email, code, newPassword string) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		otp, err := s.valid(ctx, tx, email, code)
		if err != nil {
			return err
		}
		if err := accounts.SetPassword(ctx, tx, otp.UserID, newPassword); err != nil {
			return err
		}
		if err := tx.DeleteOTP(ctx, otp.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidOTP
			}
			return err
		}
		return nil
	})
	if err != nil {
		return s.countFailure(ctx, err)
	}

	s.logger.InfoContext(ctx, "password reset completed", "email", strings.TrimSpace(email))
	return nil
}

func (s *Service) valid(ctx context.Context, st *store.Store, email, code string) (*models.PasswordResetOTP, error) {
	user, err := st.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}

	otp, err := st.LatestOTP(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}

	if otp.Attempts >= s.maxAttempts {
		return nil, ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(strings.TrimSpace(code))) != 1 {
		return nil, wrongCodeError{otpID: otp.ID}
	}
	if otp.ExpiredAt(s.Clock(), s.ttl) {
		return nil, ErrInvalidOTP
	}
	return otp, nil
}

// countFailure charges a wrong guess to the code it was made against. It
// writes through s.store, so the count survives a rolled back Confirm.
func (s *Service) countFailure(ctx context.Context, err error) error {
	var wrong wrongCodeError
	if !errors.As(err, &wrong) {
		return err
	}
	discarded, recErr := s.store.RecordOTPFailure(ctx, wrong.otpID, s.maxAttempts)
	if recErr != nil {
		s.logger.ErrorContext(ctx, "failed to record otp attempt", "otp_id", wrong.otpID, "error", recErr)
		return err
	}
	if discarded {
		s.logger.WarnContext(ctx, "reset code discarded after repeated wrong guesses", "otp_id", wrong.otpID)
	}
	return err
}

// generateCode returns a random numeric code with leading zeros kept.
func generateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
