package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
	"github.com/Gopher0727/Himo/utils/ratelimit"
)

// IAuthService defines the interface for identity operations
type IAuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, username, bio string) (*model.User, error)
	User(ctx context.Context, userID int64) (*model.User, error)
}

// AuthService implements the IAuthService interface.
// Passwords of regular accounts are not checked; admin accounts must present
// the admin secret.
type AuthService struct {
	store       store.IStore
	logger      *zap.Logger
	adminHash   []byte
	enforceBans bool
	uniqueID    UniqueIDFunc
	limiter     ratelimit.Limiter
	loginRule   ratelimit.Rule
}

// NewAuthService creates a new IAuthService instance
func NewAuthService(st store.IStore, opts Options) IAuthService {
	opts.withDefaults()
	return &AuthService{
		store:       st,
		logger:      opts.Logger,
		adminHash:   []byte(opts.AdminSecretHash),
		enforceBans: opts.EnforceBans,
		uniqueID:    opts.UniqueID,
		limiter:     opts.Limiter,
		loginRule:   opts.LoginRule,
	}
}

// Register creates a regular, online account with a fresh friend code.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyInput
	}

	var created model.User
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if c.UserByUsername(username) != nil {
			return ErrDuplicateUsername
		}
		uniqueID, err := allocateUniqueID(c, s.uniqueID)
		if err != nil {
			return err
		}
		user := model.User{
			ID:       c.NextUserID(),
			Username: username,
			UniqueID: uniqueID,
			Status:   model.StatusOnline,
			Role:     model.RoleUser,
			Friends:  []int64{},
		}
		c.Users = append(c.Users, user)
		created = user.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", created.ID),
		zap.String("username", created.Username),
	)
	return &created, nil
}

// Login authenticates by username. It never mutates the store.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyInput
	}
	if err := allow(ctx, s.limiter, s.loginRule, "login:"+username); err != nil {
		return nil, err
	}

	var user model.User
	err := s.store.View(func(c *store.Collections) error {
		u := c.UserByUsername(username)
		if u == nil {
			return ErrNotFound
		}
		user = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() {
		if err := verifyPassword(s.adminHash, password); err != nil {
			s.logger.Warn("Admin login rejected", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
	}
	if s.enforceBans && user.IsBanned() {
		return nil, ErrBanned
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return &user, nil
}

// UpdateProfile renames the user and sets the bio. Messages already sent
// keep the old sender name.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, username, bio string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyInput
	}

	var updated model.User
	err := s.store.Update(ctx, func(c *store.Collections) error {
		u := c.UserByID(userID)
		if u == nil {
			return ErrNotFound
		}
		if other := c.UserByUsername(username); other != nil && other.ID != userID {
			return ErrDuplicateUsername
		}
		u.Username = username
		u.Bio = strings.TrimSpace(bio)
		updated = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *AuthService) User(_ context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := s.store.View(func(c *store.Collections) error {
		u := c.UserByID(userID)
		if u == nil {
			return ErrNotFound
		}
		user = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// HashSecret hashes an admin secret for the admin.secret_hash setting.
func HashSecret(secret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// hashPassword hashes a plain text secret using bcrypt with the default cost
func hashPassword(password string) (string, error) {
	return HashSecret(password, bcrypt.DefaultCost)
}

// verifyPassword compares a hashed password with a plain text password
func verifyPassword(hashedPassword []byte, password string) error {
	return bcrypt.CompareHashAndPassword(hashedPassword, []byte(password))
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
