package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/service"
	logger "github.com/Gopher0727/Himo/middleware/log"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoChatSelected   = errors.New("no chat selected")
)

// Session is the signed-in identity plus the UI selection state: selected
// chat, message draft and chat search query. It holds ids only; every record
// is read back through the services. Nothing here is persisted.
type Session struct {
	svc  *service.Services
	base *logger.Logger

	mu       sync.Mutex
	log      *logger.Logger
	userID   int64
	traceID  string
	selected int64
	draft    string
	search   string
}

// New creates a signed-out session.
func New(svc *service.Services, log *logger.Logger) *Session {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Session{svc: svc, base: log, log: log}
}

func (s *Session) Register(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.svc.Auth.Register(ctx, username, password)
	if err != nil {
		s.log.WarnContext(ctx, "Register rejected", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	s.signIn(u)
	return u, nil
}

func (s *Session) Login(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.svc.Auth.Login(ctx, username, password)
	if err != nil {
		s.log.WarnContext(ctx, "Login rejected", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	s.signIn(u)
	return u, nil
}

func (s *Session) signIn(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.userID = u.ID
	s.traceID = logger.NewTraceID()
	// The trace id reaches log entries through the context passed to each call.
	s.log = s.base.WithUser(u.ID, u.Username)
	s.log.WithTraceID(s.traceID).Info("Session started")
}

// Logout forgets the identity and every selection. It never touches the store.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID != 0 {
		s.log.WithTraceID(s.traceID).Info("Session ended")
	}
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.userID = 0
	s.traceID = ""
	s.selected = 0
	s.draft = ""
	s.search = ""
	s.log = s.base
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID != 0
}

// auth returns the signed-in user id and a context carrying the session trace id.
func (s *Session) auth(ctx context.Context) (context.Context, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == 0 {
		return ctx, 0, ErrNotAuthenticated
	}
	return logger.WithTraceID(ctx, s.traceID), s.userID, nil
}

// CurrentUser re-reads the signed-in account. If it has been deleted the
// session signs out.
func (s *Session) CurrentUser(ctx context.Context) (*model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.svc.Auth.User(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		s.Logout()
		return nil, ErrNotAuthenticated
	}
	return u, err
}

func (s *Session) UpdateProfile(ctx context.Context, username, bio string) (*model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Auth.UpdateProfile(ctx, id, username, bio)
}

func (s *Session) AddFriend(ctx context.Context, uniqueID string) (*model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	friend, err := s.svc.Friends.AddFriend(ctx, id, uniqueID)
	if err != nil {
		s.log.WarnContext(ctx, "Add friend rejected", zap.String("unique_id", uniqueID), zap.Error(err))
		return nil, err
	}
	return friend, nil
}

func (s *Session) Friends(ctx context.Context) ([]model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Friends.Friends(ctx, id)
}

// SetSearch sets the query that Chats filters by.
func (s *Session) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = query
}

func (s *Session) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// Chats lists the visible chats matching the current search query.
func (s *Session) Chats(ctx context.Context) ([]model.Chat, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Chats.VisibleChats(ctx, id, s.Search())
}
