package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
)

// Placeholder previews for chats without messages.
const (
	PrivateChatPlaceholder = "Начните общение"
	ChannelPlaceholder     = "Канал создан"
	GroupPlaceholder       = "Группа создана"
)

// IChatService defines chat creation, membership and the read paths.
type IChatService interface {
	StartPrivateChat(ctx context.Context, selfID, friendID int64) (*model.Chat, error)
	CreateChannel(ctx context.Context, creatorID int64, name, description string, public bool) (*model.Chat, error)
	CreateGroup(ctx context.Context, creatorID int64, name string, memberIDs []int64) (*model.Chat, error)
	JoinChannel(ctx context.Context, userID, chatID int64) (*model.Chat, error)
	MarkRead(ctx context.Context, userID, chatID int64) error
	VisibleChats(ctx context.Context, userID int64, query string) ([]model.Chat, error)
	Messages(ctx context.Context, userID, chatID int64) ([]model.Message, error)
}

type ChatService struct {
	store  store.IStore
	clock  Clock
	logger *zap.Logger
}

func NewChatService(st store.IStore, clock Clock, logger *zap.Logger) IChatService {
	return &ChatService{store: st, clock: clock, logger: logger}
}

// StartPrivateChat returns the private chat between two friends, creating it
// on first use. Argument order does not matter.
func (s *ChatService) StartPrivateChat(ctx context.Context, selfID, friendID int64) (*model.Chat, error) {
	if selfID == friendID {
		return nil, ErrSelfAction
	}

	var chat model.Chat
	created := false
	err := s.store.Update(ctx, func(c *store.Collections) error {
		self := c.UserByID(selfID)
		friend := c.UserByID(friendID)
		if self == nil || friend == nil {
			return ErrNotFound
		}
		if !self.HasFriend(friendID) {
			return ErrNotFriends
		}
		if existing := c.PrivateChat(selfID, friendID); existing != nil {
			chat = existing.Clone()
			return nil
		}
		ch := model.Chat{
			ID:           c.NextChatID(),
			Name:         friend.Username,
			Type:         model.ChatPrivate,
			LastMessage:  PrivateChatPlaceholder,
			Timestamp:    stamp(s.clock),
			Participants: []int64{selfID, friendID},
			Creator:      selfID,
		}
		c.Chats = append(c.Chats, ch)
		chat = ch.Clone()
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("Private chat created",
			zap.Int64("chat_id", chat.ID),
			zap.Int64s("participants", chat.Participants),
		)
	}
	return &chat, nil
}

func (s *ChatService) CreateChannel(ctx context.Context, creatorID int64, name, description string, public bool) (*model.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyInput
	}
	description = strings.TrimSpace(description)

	var chat model.Chat
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if c.UserByID(creatorID) == nil {
			return ErrNotFound
		}
		preview := description
		if preview == "" {
			preview = ChannelPlaceholder
		}
		ch := model.Chat{
			ID:           c.NextChatID(),
			Name:         name,
			Type:         model.ChatChannel,
			LastMessage:  preview,
			Timestamp:    stamp(s.clock),
			Participants: []int64{creatorID},
			Creator:      creatorID,
			Public:       public,
			Description:  description,
		}
		c.Chats = append(c.Chats, ch)
		chat = ch.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Channel created",
		zap.Int64("chat_id", chat.ID),
		zap.Int64("creator", creatorID),
		zap.Bool("public", public),
	)
	return &chat, nil
}

// CreateGroup creates a group of the creator and some of their friends.
// Duplicate member ids collapse.
func (s *ChatService) CreateGroup(ctx context.Context, creatorID int64, name string, memberIDs []int64) (*model.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyInput
	}

	var chat model.Chat
	err := s.store.Update(ctx, func(c *store.Collections) error {
		creator := c.UserByID(creatorID)
		if creator == nil {
			return ErrNotFound
		}
		ch := model.Chat{
			ID:           c.NextChatID(),
			Name:         name,
			Type:         model.ChatGroup,
			LastMessage:  GroupPlaceholder,
			Timestamp:    stamp(s.clock),
			Participants: []int64{creatorID},
			Creator:      creatorID,
		}
		for _, id := range memberIDs {
			if id == creatorID {
				continue
			}
			if c.UserByID(id) == nil {
				return ErrNotFound
			}
			if !creator.HasFriend(id) {
				return ErrNotFriends
			}
			ch.AddParticipant(id)
		}
		c.Chats = append(c.Chats, ch)
		chat = ch.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Group created",
		zap.Int64("chat_id", chat.ID),
		zap.Int("members", len(chat.Participants)),
	)
	return &chat, nil
}

// JoinChannel adds the user to a public channel.
func (s *ChatService) JoinChannel(ctx context.Context, userID, chatID int64) (*model.Chat, error) {
	var chat model.Chat
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if c.UserByID(userID) == nil {
			return ErrNotFound
		}
		ch := c.ChatByID(chatID)
		if ch == nil {
			return ErrNotFound
		}
		if ch.Type != model.ChatChannel {
			return ErrNotChannel
		}
		if ch.HasParticipant(userID) {
			return ErrAlreadyMember
		}
		if !ch.Public {
			return ErrForbidden
		}
		ch.AddParticipant(userID)
		chat = ch.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// MarkRead clears the unread counter of a chat the user can see.
func (s *ChatService) MarkRead(ctx context.Context, userID, chatID int64) error {
	return s.store.Update(ctx, func(c *store.Collections) error {
		if c.UserByID(userID) == nil {
			return ErrNotFound
		}
		ch := c.ChatByID(chatID)
		if ch == nil {
			return ErrNotFound
		}
		if !canSee(ch, userID) {
			return ErrNotMember
		}
		ch.Unread = 0
		return nil
	})
}

// VisibleChats lists the chats the user takes part in plus every public
// channel, keeping those whose name contains query (case-insensitive).
// Private chats are named after the other participant.
func (s *ChatService) VisibleChats(_ context.Context, userID int64, query string) ([]model.Chat, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	var chats []model.Chat
	err := s.store.View(func(c *store.Collections) error {
		if c.UserByID(userID) == nil {
			return ErrNotFound
		}
		for _, ch := range c.Chats {
			if !canSee(&ch, userID) {
				continue
			}
			view := ch.Clone()
			view.Name = displayName(c, &ch, userID)
			if query != "" && !strings.Contains(strings.ToLower(view.Name), query) {
				continue
			}
			chats = append(chats, view)
		}
		return nil
	})
	return chats, err
}

// Messages lists a chat's messages in send order.
func (s *ChatService) Messages(_ context.Context, userID, chatID int64) ([]model.Message, error) {
	var msgs []model.Message
	err := s.store.View(func(c *store.Collections) error {
		ch := c.ChatByID(chatID)
		if ch == nil {
			return ErrNotFound
		}
		if !canSee(ch, userID) {
			return ErrNotMember
		}
		msgs = c.MessagesInChat(chatID)
		return nil
	})
	return msgs, err
}

func canSee(ch *model.Chat, userID int64) bool {
	return ch.HasParticipant(userID) || (ch.Type == model.ChatChannel && ch.Public)
}

func displayName(c *store.Collections, ch *model.Chat, viewerID int64) string {
	if ch.Type != model.ChatPrivate {
		return ch.Name
	}
	for _, id := range ch.Participants {
		if id == viewerID {
			continue
		}
		if u := c.UserByID(id); u != nil {
			return u.Username
		}
	}
	return ch.Name
}
