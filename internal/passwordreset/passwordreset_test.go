package passwordreset

import (
	"context"
	"testing"
	"time"

	"github.com/pinobite/storefront/internal/accounts"
	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/notify"
	"github.com/pinobite/storefront/internal/store"
	"github.com/pinobite/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	accounts *accounts.Service
	store    *store.Store
	events   *notify.Recorder
	clock    *testutil.Clock
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	st := store.New(db.DB)
	ctx := context.Background()

	acc := accounts.NewService(st, nil)
	_, err := acc.CreateStaff(ctx, accounts.RegisterInput{Username: "admin", Email: "admin@example.com", Password: "old-password", FirstName: "Ravi"})
	require.NoError(t, err)
	_, err = acc.Register(ctx, accounts.RegisterInput{Username: "ana", Email: "ana@example.com", Password: "old-password"})
	require.NoError(t, err)

	f := &fixture{
		accounts: acc,
		store:    st,
		events:   &notify.Recorder{},
		clock:    testutil.NewClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
	}
	f.svc = NewService(st, f.events, config.OTPConfig{TTL: 5 * time.Minute, Length: 6}, nil)
	f.svc.Clock = f.clock.Now
	return f
}

// issue requests a reset for the staff account and returns the mailed code.
func (f *fixture) issue(t *testing.T) string {
	t.Helper()
	before := f.events.Len()
	require.NoError(t, f.svc.Request(context.Background(), "admin@example.com"))

	events := f.events.Events()
	require.Len(t, events, before+1)
	ev := events[before].(notify.PasswordResetRequested)
	return ev.Code
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}

func TestRequestStaff(t *testing.T) {
	f := newFixture(t)

	code := f.issue(t)
	ev := f.events.Events()[0].(notify.PasswordResetRequested)
	assert.Equal(t, "admin@example.com", ev.Email)
	assert.Equal(t, "Ravi", ev.Name)
	assert.Equal(t, 5*time.Minute, ev.TTL)

	var otp models.PasswordResetOTP
	require.NoError(t, f.store.DB(context.Background()).First(&otp).Error)
	assert.Equal(t, code, otp.Code)
	assert.Equal(t, models.OTPStatusRequested, otp.Status)
}

func TestRequestDoesNotLeakAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.svc.Request(ctx, "nobody@example.com"))
	assert.NoError(t, f.svc.Request(ctx, "ana@example.com"))
	assert.Zero(t, f.events.Len())

	var n int64
	require.NoError(t, f.store.DB(ctx).Model(&models.PasswordResetOTP{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestVerifyWithinWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.issue(t)

	f.clock.Advance(4 * time.Minute)
	require.NoError(t, f.svc.Verify(ctx, "admin@example.com", code))

	var otp models.PasswordResetOTP
	require.NoError(t, f.store.DB(ctx).First(&otp).Error)
	assert.Equal(t, models.OTPStatusVerified, otp.Status)

	assert.ErrorIs(t, f.svc.Verify(ctx, "admin@example.com", "000000x"), ErrInvalidOTP)
	assert.ErrorIs(t, f.svc.Verify(ctx, "nobody@example.com", code), ErrInvalidOTP)
}

func TestVerifyAfterExpiry(t *testing.T) {
	f := newFixture(t)
	code := f.issue(t)

	f.clock.Advance(6 * time.Minute)
	err := f.svc.Verify(context.Background(), "admin@example.com", code)
	require.ErrorIs(t, err, ErrInvalidOTP)
	assert.Equal(t, "Invalid or expired OTP.", InvalidOTPMessage)
}

func TestOnlyLatestCodeAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.issue(t)
	f.clock.Advance(time.Second)
	second := f.issue(t)
	if first == second {
		t.Skip("random codes collided")
	}

	assert.ErrorIs(t, f.svc.Verify(ctx, "admin@example.com", first), ErrInvalidOTP)
	assert.NoError(t, f.svc.Verify(ctx, "admin@example.com", second))
}

func TestConfirmConsumesCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.issue(t)

	require.NoError(t, f.svc.Verify(ctx, "admin@example.com", code))
	require.NoError(t, f.svc.Confirm(ctx, "admin@example.com", code, "new-password-1"))

	_, err := f.accounts.Authenticate(ctx, "admin@example.com", "new-password-1")
	assert.NoError(t, err)
	_, err = f.accounts.Authenticate(ctx, "admin@example.com", "old-password")
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)

	var n int64
	require.NoError(t, f.store.DB(ctx).Model(&models.PasswordResetOTP{}).Count(&n).Error)
	assert.Zero(t, n)

	// Reuse fails.
	assert.ErrorIs(t, f.svc.Confirm(ctx, "admin@example.com", code, "another-pass-2"), ErrInvalidOTP)
	_, err = f.accounts.Authenticate(ctx, "admin@example.com", "new-password-1")
	assert.NoError(t, err)
}

func TestConfirmExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.issue(t)

	f.clock.Advance(5*time.Minute + time.Second)
	assert.ErrorIs(t, f.svc.Confirm(ctx, "admin@example.com", code, "new-password-1"), ErrInvalidOTP)

	_, err := f.accounts.Authenticate(ctx, "admin@example.com", "old-password")
	assert.NoError(t, err)
}

func wrongCode(code string) string {
	if code == "999999" {
		return "888888"
	}
	return "999999"
}

func TestWrongGuessesDiscardCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.issue(t)

	for i := 0; i < defaultMaxAttempts; i++ {
		require.ErrorIs(t, f.svc.Verify(ctx, "admin@example.com", wrongCode(code)), ErrInvalidOTP)
	}

	var n int64
	require.NoError(t, f.store.DB(ctx).Model(&models.PasswordResetOTP{}).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, f.svc.Verify(ctx, "admin@example.com", code), ErrInvalidOTP)
	assert.ErrorIs(t, f.svc.Confirm(ctx, "admin@example.com", code, "new-password-1"), ErrInvalidOTP)
	_, err := f.accounts.Authenticate(ctx, "admin@example.com", "old-password")
	assert.NoError(t, err)
}

func TestFailedConfirmsAreCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.issue(t)

	for i := 0; i < defaultMaxAttempts-1; i++ {
		require.ErrorIs(t, f.svc.Confirm(ctx, "admin@example.com", wrongCode(code), "new-password-1"), ErrInvalidOTP)
	}

	var otp models.PasswordResetOTP
	require.NoError(t, f.store.DB(ctx).First(&otp).Error)
	assert.Equal(t, defaultMaxAttempts-1, otp.Attempts)

	// Still under the limit.
	require.NoError(t, f.svc.Confirm(ctx, "admin@example.com", code, "new-password-1"))
	_, err := f.accounts.Authenticate(ctx, "admin@example.com", "new-password-1")
	assert.NoError(t, err)
}

func TestAttemptLimitFollowsConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc = NewService(f.store, f.events, config.OTPConfig{TTL: 5 * time.Minute, Length: 6, MaxAttempts: 1}, nil)
	f.svc.Clock = f.clock.Now
	code := f.issue(t)

	require.ErrorIs(t, f.svc.Confirm(ctx, "admin@example.com", wrongCode(code), "new-password-1"), ErrInvalidOTP)
	assert.ErrorIs(t, f.svc.Confirm(ctx, "admin@example.com", code, "new-password-1"), ErrInvalidOTP)
}
