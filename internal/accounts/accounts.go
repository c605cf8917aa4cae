package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pinobite/storefront/internal/auth"
	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateUser      = errors.New("a user with that username or email already exists")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
)

// dummyHash keeps a failed lookup as slow as a failed password check.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := auth.HashPassword("not-a-real-password")
	return hash
})

type RegisterInput struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// ProfilePatch is a partial profile update. Nil fields are left alone.
type ProfilePatch struct {
	Phone   *string          `json:"phone" binding:"omitempty,max=15"`
	Address *string          `json:"address"`
	Points  *int             `json:"points" binding:"omitempty,gte=0"`
	Tier    *models.Tier     `json:"tier"`
	Savings *decimal.Decimal `json:"savings"`
}

func (p ProfilePatch) touchesLoyalty() bool {
	return p.Points != nil || p.Tier != nil || p.Savings != nil
}

type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// Register creates a customer account and its profile in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.create(ctx, in, false)
}

// CreateStaff creates an account with the staff flag set.
func (s *Service) CreateStaff(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.create(ctx, in, true)
}

func (s *Service) create(ctx context.Context, in RegisterInput, staff bool) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsStaff:      staff,
		IsActive:     true,
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		usernameTaken, emailTaken, err := tx.UserTaken(ctx, user.Username, user.Email)
		if err != nil {
			return err
		}
		if usernameTaken || emailTaken {
			fields := models.FieldErrors{}
			if usernameTaken {
				fields["username"] = "unique"
			}
			if emailTaken {
				fields["email"] = "unique"
			}
			return fmt.Errorf("%w: %w", ErrDuplicateUser, fields)
		}

		if err := tx.DB(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return Provision(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account created", "user_id", user.ID, "username", user.Username, "staff", staff)
	return user, nil
}

// Provision creates the loyalty profile for a freshly created user. It must
// run in the same transaction as the user insert.
func Provision(ctx context.Context, tx *store.Store, user *models.User) error {
	profile := &models.UserProfile{
		UserID:  user.ID,
		Tier:    models.TierMember,
		Savings: decimal.Zero,
	}
	if err := tx.DB(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to provision profile for user %d: %w", user.ID, err)
	}
	user.Profile = profile
	return nil
}

// EnsureProfiles provisions a profile for every user that lacks one and
// returns how many were created.
func (s *Service) EnsureProfiles(ctx context.Context) (int, error) {
	users, err := s.store.UsersWithoutProfile(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to find users without profile: %w", err)
	}

	for i := range users {
		user := &users[i]
		if err := s.store.Transaction(ctx, func(tx *store.Store) error {
			return Provision(ctx, tx, user)
		}); err != nil {
			return i, err
		}
		s.logger.InfoContext(ctx, "provisioned missing profile", "user_id", user.ID, "username", user.Username)
	}
	return len(users), nil
}

// Authenticate accepts an email address or a username. Email wins when both
// could match.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.store.FindUserByEmail(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.store.FindUserByUsername(ctx, identifier)
	}
	if errors.Is(err, store.ErrNotFound) {
		auth.CheckPassword(dummyHash(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.store.ListUsers(ctx, limit, offset)
}

// UpdateProfile applies patch to the user's profile. Only staff may change
// points, tier and savings.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch, staff bool) (*models.UserProfile, error) {
	if !staff && patch.touchesLoyalty() {
		fields := models.FieldErrors{}
		if patch.Points != nil {
			fields["points"] = "readonly"
		}
		if patch.Tier != nil {
			fields["tier"] = "readonly"
		}
		if patch.Savings != nil {
			fields["savings"] = "readonly"
		}
		return nil, fields
	}

	var profile *models.UserProfile
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.Profile == nil {
			if err := Provision(ctx, tx, user); err != nil {
				return err
			}
		}
		profile = user.Profile

		if patch.Phone != nil {
			profile.Phone = patch.Phone
		}
		if patch.Address != nil {
			profile.Address = patch.Address
		}
		if patch.Points != nil {
			profile.Points = *patch.Points
		}
		if patch.Tier != nil {
			profile.Tier = *patch.Tier
		}
		if patch.Savings != nil {
			profile.Savings = *patch.Savings
		}
		return tx.DB(ctx).Save(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SetPassword replaces the user's password. tx may be a transaction.
func SetPassword(ctx context.Context, tx *store.Store, userID int64, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return tx.SetPasswordHash(ctx, userID, hash)
}
