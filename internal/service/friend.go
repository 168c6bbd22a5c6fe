package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
)

type IFriendService interface {
	AddFriend(ctx context.Context, requesterID int64, targetUniqueID string) (*model.User, error)
	Friends(ctx context.Context, userID int64) ([]model.User, error)
}

type FriendService struct {
	store  store.IStore
	logger *zap.Logger
}

func NewFriendService(st store.IStore, logger *zap.Logger) IFriendService {
	return &FriendService{store: st, logger: logger}
}

// AddFriend links requester and the owner of targetUniqueID in both
// directions within one update. It returns the new friend.
func (s *FriendService) AddFriend(ctx context.Context, requesterID int64, targetUniqueID string) (*model.User, error) {
	targetUniqueID = strings.ToUpper(strings.TrimSpace(targetUniqueID))
	if targetUniqueID == "" {
		return nil, ErrEmptyInput
	}

	var friend model.User
	err := s.store.Update(ctx, func(c *store.Collections) error {
		requester := c.UserByID(requesterID)
		if requester == nil {
			return ErrNotFound
		}
		target := c.UserByUniqueID(targetUniqueID)
		if target == nil {
			return ErrNotFound
		}
		if target.ID == requester.ID {
			return ErrSelfAction
		}
		if requester.HasFriend(target.ID) {
			return ErrAlreadyFriends
		}
		requester.AddFriend(target.ID)
		target.AddFriend(requester.ID)
		friend = target.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Friend added",
		zap.Int64("user_id", requesterID),
		zap.Int64("friend_id", friend.ID),
	)
	return &friend, nil
}

// Friends lists the user's friends in the order they were added, skipping ids
// whose account no longer exists.
func (s *FriendService) Friends(_ context.Context, userID int64) ([]model.User, error) {
	var friends []model.User
	err := s.store.View(func(c *store.Collections) error {
		u := c.UserByID(userID)
		if u == nil {
			return ErrNotFound
		}
		friends = make([]model.User, 0, len(u.Friends))
		for _, id := range u.Friends {
			if f := c.UserByID(id); f != nil {
				friends = append(friends, f.Clone())
			}
		}
		return nil
	})
	return friends, err
}
