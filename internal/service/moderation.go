package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
)

// IModerationService holds the admin-only account operations. A caller that
// is not an existing admin gets ErrUnauthorized and nothing changes.
type IModerationService interface {
	BanUser(ctx context.Context, actorID, userID int64) (*model.User, error)
	UnbanUser(ctx context.Context, actorID, userID int64) (*model.User, error)
	PromoteToAdmin(ctx context.Context, actorID, userID int64) (*model.User, error)
	VerifyUser(ctx context.Context, actorID, userID int64) (*model.User, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
	ListUsers(ctx context.Context, actorID int64) ([]model.User, error)
}

type ModerationService struct {
	store  store.IStore
	logger *zap.Logger
}

func NewModerationService(st store.IStore, logger *zap.Logger) IModerationService {
	return &ModerationService{store: st, logger: logger}
}

func (s *ModerationService) BanUser(ctx context.Context, actorID, userID int64) (*model.User, error) {
	return s.modify(ctx, "ban", actorID, userID, func(u *model.User) {
		u.Status = model.StatusBanned
	})
}

// UnbanUser puts the account offline, whatever its status was.
func (s *ModerationService) UnbanUser(ctx context.Context, actorID, userID int64) (*model.User, error) {
	return s.modify(ctx, "unban", actorID, userID, func(u *model.User) {
		u.Status = model.StatusOffline
	})
}

// PromoteToAdmin is one-way; there is no demotion.
func (s *ModerationService) PromoteToAdmin(ctx context.Context, actorID, userID int64) (*model.User, error) {
	return s.modify(ctx, "promote", actorID, userID, func(u *model.User) {
		u.Role = model.RoleAdmin
	})
}

// VerifyUser toggles the verified mark.
func (s *ModerationService) VerifyUser(ctx context.Context, actorID, userID int64) (*model.User, error) {
	return s.modify(ctx, "verify", actorID, userID, func(u *model.User) {
		u.Verified = !u.Verified
	})
}

func (s *ModerationService) modify(ctx context.Context, action string, actorID, userID int64, fn func(u *model.User)) (*model.User, error) {
	var updated model.User
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if err := requireAdmin(c, actorID); err != nil {
			return err
		}
		u := c.UserByID(userID)
		if u == nil {
			return ErrNotFound
		}
		fn(u)
		updated = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Moderation action",
		zap.String("action", action),
		zap.Int64("actor_id", actorID),
		zap.Int64("user_id", userID),
	)
	return &updated, nil
}

// DeleteUser removes the account and every reference to its id from friend
// lists and chat participants. Messages keep the sender name they were sent
// with. The seed admin can never be deleted.
func (s *ModerationService) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if userID == model.SeedAdminID {
		return ErrProtectedUser
	}

	err := s.store.Update(ctx, func(c *store.Collections) error {
		if err := requireAdmin(c, actorID); err != nil {
			return err
		}
		if !c.RemoveUser(userID) {
			return ErrNotFound
		}
		for i := range c.Users {
			c.Users[i].RemoveFriend(userID)
		}
		for i := range c.Chats {
			c.Chats[i].RemoveParticipant(userID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("User deleted",
		zap.Int64("actor_id", actorID),
		zap.Int64("user_id", userID),
	)
	return nil
}

func (s *ModerationService) ListUsers(_ context.Context, actorID int64) ([]model.User, error) {
	var users []model.User
	err := s.store.View(func(c *store.Collections) error {
		if err := requireAdmin(c, actorID); err != nil {
			return err
		}
		users = cloneUsers(c.Users)
		return nil
	})
	return users, err
}
