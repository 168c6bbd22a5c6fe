package session

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/service"
)

// OpenPrivateChat starts (or reuses) the private chat with a friend and selects it.
func (s *Session) OpenPrivateChat(ctx context.Context, friendID int64) (*model.Chat, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := s.svc.Chats.StartPrivateChat(ctx, id, friendID)
	if err != nil {
		return nil, err
	}
	return chat, s.SelectChat(ctx, chat.ID)
}

func (s *Session) CreateChannel(ctx context.Context, name, description string, public bool) (*model.Chat, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := s.svc.Chats.CreateChannel(ctx, id, name, description, public)
	if err != nil {
		return nil, err
	}
	return chat, s.SelectChat(ctx, chat.ID)
}

func (s *Session) CreateGroup(ctx context.Context, name string, memberIDs []int64) (*model.Chat, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := s.svc.Chats.CreateGroup(ctx, id, name, memberIDs)
	if err != nil {
		return nil, err
	}
	return chat, s.SelectChat(ctx, chat.ID)
}

func (s *Session) JoinChannel(ctx context.Context, chatID int64) (*model.Chat, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := s.svc.Chats.JoinChannel(ctx, id, chatID)
	if err != nil {
		return nil, err
	}
	return chat, s.SelectChat(ctx, chat.ID)
}

// SelectChat makes a visible chat current, drops the draft and marks the chat read.
func (s *Session) SelectChat(ctx context.Context, chatID int64) error {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return err
	}
	chats, err := s.svc.Chats.VisibleChats(ctx, id, "")
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(chats, func(c model.Chat) bool { return c.ID == chatID }) {
		return service.ErrNotFound
	}
	if err := s.svc.Chats.MarkRead(ctx, id, chatID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != chatID {
		s.draft = ""
	}
	s.selected = chatID
	return nil
}

func (s *Session) SelectedChat() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Send posts the draft to the selected chat and clears it on success.
// A failed send keeps the draft.
func (s *Session) Send(ctx context.Context) ([]model.Message, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	chatID, draft := s.selected, s.draft
	s.mu.Unlock()
	if chatID == 0 {
		return nil, ErrNoChatSelected
	}

	sent, err := s.svc.Messages.SendMessage(ctx, id, chatID, draft)
	if err != nil {
		s.log.WarnContext(ctx, "Send rejected", zap.Int64("chat_id", chatID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	if s.selected == chatID && s.draft == draft {
		s.draft = ""
	}
	s.mu.Unlock()
	return sent, nil
}

// Messages lists the selected chat's messages.
func (s *Session) Messages(ctx context.Context) ([]model.Message, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	chatID := s.SelectedChat()
	if chatID == 0 {
		return nil, ErrNoChatSelected
	}
	return s.svc.Chats.Messages(ctx, id, chatID)
}
