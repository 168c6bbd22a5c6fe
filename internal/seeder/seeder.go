package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/service"
)

// Plan says how much demo data to generate.
type Plan struct {
	Users           int
	FriendsPerUser  int
	Channels        int
	MessagesPerChat int
	Reports         int
}

// Summary counts what was created.
type Summary struct {
	Users    int
	Friends  int
	Chats    int
	Messages int
	Reports  int
}

// Seeder fills a store with fake users, friendships, chats and reports by
// going through the same services a session would, so every invariant holds.
type Seeder struct {
	svc    *service.Services
	faker  *gofakeit.Faker
	logger *zap.Logger
}

func New(svc *service.Services, seed int64, logger *zap.Logger) *Seeder {
	return &Seeder{svc: svc, faker: gofakeit.New(seed), logger: logger}
}

func (s *Seeder) Run(ctx context.Context, plan Plan) (Summary, error) {
	var sum Summary

	// --- USERS ---
	users := make([]*model.User, 0, plan.Users)
	for range plan.Users {
		u, err := s.registerUser(ctx)
		if err != nil {
			return sum, err
		}
		users = append(users, u)
		sum.Users++
	}
	if len(users) == 0 {
		return sum, nil
	}

	// --- FRIENDS & PRIVATE CHATS ---
	for _, u := range users {
		for range plan.FriendsPerUser {
			other := users[s.faker.Number(0, len(users)-1)]
			_, err := s.svc.Friends.AddFriend(ctx, u.ID, other.UniqueID)
			switch {
			case errors.Is(err, service.ErrSelfAction), errors.Is(err, service.ErrAlreadyFriends):
				continue
			case err != nil:
				return sum, fmt.Errorf("failed to add friend: %w", err)
			}
			sum.Friends++

			chat, err := s.svc.Chats.StartPrivateChat(ctx, u.ID, other.ID)
			if err != nil {
				return sum, fmt.Errorf("failed to start private chat: %w", err)
			}
			sum.Chats++
			n, err := s.chatter(ctx, chat.ID, []int64{u.ID, other.ID}, plan.MessagesPerChat)
			sum.Messages += n
			if err != nil {
				return sum, err
			}
		}
	}

	// --- CHANNELS ---
	for range plan.Channels {
		owner := users[s.faker.Number(0, len(users)-1)]
		ch, err := s.svc.Chats.CreateChannel(ctx, owner.ID, s.faker.AppName(), s.faker.Sentence(6), s.faker.Bool())
		if err != nil {
			return sum, fmt.Errorf("failed to create channel: %w", err)
		}
		sum.Chats++

		members := []int64{owner.ID}
		if ch.Public {
			for _, u := range users {
				if u.ID == owner.ID || !s.faker.Bool() {
					continue
				}
				if _, err := s.svc.Chats.JoinChannel(ctx, u.ID, ch.ID); err != nil {
					return sum, fmt.Errorf("failed to join channel: %w", err)
				}
				members = append(members, u.ID)
			}
		}
		n, err := s.chatter(ctx, ch.ID, members, plan.MessagesPerChat)
		sum.Messages += n
		if err != nil {
			return sum, err
		}
	}

	// --- REPORTS ---
	if len(users) > 1 {
		for range plan.Reports {
			a := users[s.faker.Number(0, len(users)-1)]
			b := users[s.faker.Number(0, len(users)-1)]
			if a.ID == b.ID {
				continue
			}
			if _, err := s.svc.Reports.FileReport(ctx, a.ID, b.ID, s.faker.Sentence(4)); err != nil {
				return sum, fmt.Errorf("failed to file report: %w", err)
			}
			sum.Reports++
		}
	}

	s.logger.Info("Demo data seeded",
		zap.Int("users", sum.Users),
		zap.Int("friends", sum.Friends),
		zap.Int("chats", sum.Chats),
		zap.Int("messages", sum.Messages),
		zap.Int("reports", sum.Reports),
	)
	return sum, nil
}

// registerUser retries on username clashes with a numeric suffix.
func (s *Seeder) registerUser(ctx context.Context) (*model.User, error) {
	base := s.faker.Username()
	name := base
	for i := 1; ; i++ {
		u, err := s.svc.Auth.Register(ctx, name, "123456")
		if err == nil {
			if _, err := s.svc.Auth.UpdateProfile(ctx, u.ID, u.Username, s.faker.HackerPhrase()); err != nil {
				return nil, fmt.Errorf("failed to set bio: %w", err)
			}
			return u, nil
		}
		if !errors.Is(err, service.ErrDuplicateUsername) || i > 100 {
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
		name = fmt.Sprintf("%s%d", base, i)
	}
}

func (s *Seeder) chatter(ctx context.Context, chatID int64, members []int64, n int) (int, error) {
	sent := 0
	for range n {
		sender := members[s.faker.Number(0, len(members)-1)]
		msgs, err := s.svc.Messages.SendMessage(ctx, sender, chatID, s.faker.Sentence(s.faker.Number(2, 10)))
		if err != nil {
			return sent, fmt.Errorf("failed to send message: %w", err)
		}
		sent += len(msgs)
	}
	return sent, nil
}
