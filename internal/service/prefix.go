package service

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
)

// DefaultPrefixColor is used when a prefix is created without a color.
const DefaultPrefixColor = "#6B7280"

// IPrefixService manages role badges. Badges are stored on users by name.
type IPrefixService interface {
	CreatePrefix(ctx context.Context, actorID int64, name, color, emoji string) (*model.Prefix, error)
	AssignPrefix(ctx context.Context, actorID, userID int64, prefixName string) (*model.User, error)
	ListPrefixes(ctx context.Context) ([]model.Prefix, error)
}

type PrefixService struct {
	store  store.IStore
	logger *zap.Logger
}

func NewPrefixService(st store.IStore, logger *zap.Logger) IPrefixService {
	return &PrefixService{store: st, logger: logger}
}

func (s *PrefixService) CreatePrefix(ctx context.Context, actorID int64, name, color, emoji string) (*model.Prefix, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyInput
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultPrefixColor
	}

	var created model.Prefix
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if err := requireAdmin(c, actorID); err != nil {
			return err
		}
		if c.PrefixByName(name) != nil {
			return ErrDuplicatePrefix
		}
		created = model.Prefix{
			ID:    c.NextPrefixID(),
			Name:  name,
			Color: color,
			Emoji: strings.TrimSpace(emoji),
		}
		c.Prefixes = append(c.Prefixes, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Prefix created", zap.String("name", name), zap.Int64("actor_id", actorID))
	return &created, nil
}

// AssignPrefix puts the named badge on the user. An empty name clears it.
func (s *PrefixService) AssignPrefix(ctx context.Context, actorID, userID int64, prefixName string) (*model.User, error) {
	prefixName = strings.TrimSpace(prefixName)

	var updated model.User
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if err := requireAdmin(c, actorID); err != nil {
			return err
		}
		u := c.UserByID(userID)
		if u == nil {
			return ErrNotFound
		}
		if prefixName != "" && c.PrefixByName(prefixName) == nil {
			return ErrNotFound
		}
		u.Prefix = prefixName
		updated = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *PrefixService) ListPrefixes(_ context.Context) ([]model.Prefix, error) {
	var prefixes []model.Prefix
	err := s.store.View(func(c *store.Collections) error {
		prefixes = slices.Clone(c.Prefixes)
		return nil
	})
	return prefixes, err
}
