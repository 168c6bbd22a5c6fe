package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
	"github.com/Gopher0727/Himo/utils/ratelimit"
)

// IMessageService defines the interface for message operations
type IMessageService interface {
	SendMessage(ctx context.Context, senderID, chatID int64, content string) ([]model.Message, error)
}

// MessageService implements the IMessageService interface
type MessageService struct {
	store       store.IStore
	clock       Clock
	logger      *zap.Logger
	bot         BotOptions
	enforceBans bool
	limiter     ratelimit.Limiter
	rule        ratelimit.Rule
}

// NewMessageService creates a new IMessageService instance
func NewMessageService(st store.IStore, opts Options) IMessageService {
	opts.withDefaults()
	return &MessageService{
		store:       st,
		clock:       opts.Clock,
		logger:      opts.Logger,
		bot:         opts.Bot,
		enforceBans: opts.EnforceBans,
		limiter:     opts.Limiter,
		rule:        opts.MessageRule,
	}
}

// SendMessage appends a text message to any chat the sender can see, which
// includes public channels they have not joined. It updates the preview and,
// when someone besides the sender takes part in the chat, the unread counter.
// If the content triggers the bot, its reply is appended in the same update.
// The appended messages are returned in order.
func (s *MessageService) SendMessage(ctx context.Context, senderID, chatID int64, content string) ([]model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}
	if err := allow(ctx, s.limiter, s.rule, "send:"+userKey(senderID)); err != nil {
		return nil, err
	}

	var sent []model.Message
	err := s.store.Update(ctx, func(c *store.Collections) error {
		sender := c.UserByID(senderID)
		if sender == nil {
			return ErrNotFound
		}
		if s.enforceBans && sender.IsBanned() {
			return ErrBanned
		}
		ch := c.ChatByID(chatID)
		if ch == nil {
			return ErrNotFound
		}
		if !canSee(ch, senderID) {
			return ErrNotMember
		}

		now := stamp(s.clock)
		msg := model.Message{
			ID:        c.NextMessageID(),
			Sender:    sender.Username,
			Content:   content,
			Timestamp: now,
			Type:      model.MessageText,
			ChatID:    chatID,
		}
		c.Messages = append(c.Messages, msg)
		sent = append(sent, msg)

		if s.bot.Triggered(content) {
			reply := model.Message{
				ID:        msg.ID + 1,
				Sender:    s.bot.Name,
				Content:   s.bot.Reply,
				Timestamp: now,
				Type:      model.MessageBot,
				ChatID:    chatID,
			}
			c.Messages = append(c.Messages, reply)
			sent = append(sent, reply)
		}

		last := sent[len(sent)-1]
		ch.LastMessage = last.Content
		ch.Timestamp = now
		if hasOtherParticipant(ch, senderID) {
			ch.Unread += len(sent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Message sent",
		zap.Int64("chat_id", chatID),
		zap.Int64("message_id", sent[0].ID),
		zap.Int("appended", len(sent)),
	)
	return sent, nil
}

// hasOtherParticipant reports whether anyone but userID takes part in the chat.
func hasOtherParticipant(ch *model.Chat, userID int64) bool {
	for _, id := range ch.Participants {
		if id != userID {
			return true
		}
	}
	return false
}
