package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/pkg/kv"
	"github.com/Gopher0727/Himo/internal/service"
	"github.com/Gopher0727/Himo/internal/store"
	logger "github.com/Gopher0727/Himo/middleware/log"
)

const adminSecret = "12345678"

type env struct {
	ctx     context.Context
	backend *kv.Memory
	svc     *service.Services
	logs    *observer.ObservedLogs
	log     *logger.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	hash, err := service.HashSecret(adminSecret, bcrypt.MinCost)
	require.NoError(t, err)

	backend := kv.NewMemory()
	st := store.New(backend)
	require.NoError(t, st.Load(context.Background()))

	core, logs := observer.New(zapcore.DebugLevel)
	return &env{
		ctx:     context.Background(),
		backend: backend,
		logs:    logs,
		log:     &logger.Logger{Logger: zap.New(core)},
		svc: service.New(st, service.Options{
			AdminSecretHash: hash,
			EnforceBans:     true,
			Bot:             service.BotOptions{Enabled: true, Name: "AutoBot", Reply: "ok", Triggers: []string{"/bot"}},
			Clock:           service.ClockFunc(func() time.Time { return time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC) }),
		}),
	}
}

func (e *env) session() *Session {
	return New(e.svc, e.log)
}

func TestScenario_AliceAndBob(t *testing.T) {
	e := newEnv(t)
	aliceSession := e.session()
	bobSession := e.session()

	alice, err := aliceSession.Register(e.ctx, "alice", "pw1")
	require.NoError(t, err)
	bob, err := bobSession.Register(e.ctx, "bob", "pw2")
	require.NoError(t, err)

	_, err = aliceSession.AddFriend(e.ctx, bob.UniqueID)
	require.NoError(t, err)

	aliceNow, err := aliceSession.CurrentUser(e.ctx)
	require.NoError(t, err)
	bobNow, err := bobSession.CurrentUser(e.ctx)
	require.NoError(t, err)
	assert.Contains(t, aliceNow.Friends, bob.ID)
	assert.Contains(t, bobNow.Friends, alice.ID)

	chat, err := aliceSession.OpenPrivateChat(e.ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChatPrivate, chat.Type)
	assert.ElementsMatch(t, []int64{alice.ID, bob.ID}, chat.Participants)
	assert.Equal(t, chat.ID, aliceSession.SelectedChat())

	aliceSession.SetDraft("hi")
	sent, err := aliceSession.Send(e.ctx)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Empty(t, aliceSession.Draft())

	msgs, err := aliceSession.Messages(e.ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice", msgs[0].Sender)
	assert.Equal(t, "hi", msgs[0].Content)

	chats, err := bobSession.Chats(e.ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "hi", chats[0].LastMessage)
	assert.Equal(t, "09:05", chats[0].Timestamp)
	assert.Equal(t, 1, chats[0].Unread)

	// Bob opening the chat clears the unread badge.
	require.NoError(t, bobSession.SelectChat(e.ctx, chat.ID))
	chats, err = bobSession.Chats(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, chats[0].Unread)
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	s := e.session()
	_, err := s.Register(e.ctx, "alice", "pw")
	require.NoError(t, err)
	ch, err := s.CreateChannel(e.ctx, "news", "", true)
	require.NoError(t, err)
	s.SetDraft("half-written")
	s.SetSearch("ne")
	writes := e.backend.Writes()

	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assert.Zero(t, s.SelectedChat())
	assert.Empty(t, s.Draft())
	assert.Empty(t, s.Search())
	assert.Equal(t, writes, e.backend.Writes())

	_, err = s.Chats(e.ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = s.Send(e.ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	// Logging back in starts from a clean selection.
	_, err = s.Login(e.ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Zero(t, s.SelectedChat())
	chats, err := s.Chats(e.ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, ch.ID, chats[0].ID)
}

func TestSend(t *testing.T) {
	e := newEnv(t)
	s := e.session()
	_, err := s.Register(e.ctx, "alice", "pw")
	require.NoError(t, err)

	s.SetDraft("nowhere to go")
	_, err = s.Send(e.ctx)
	assert.ErrorIs(t, err, ErrNoChatSelected)
	_, err = s.Messages(e.ctx)
	assert.ErrorIs(t, err, ErrNoChatSelected)

	_, err = s.CreateChannel(e.ctx, "notes", "", false)
	require.NoError(t, err)
	assert.Empty(t, s.Draft(), "selecting a new chat drops the draft")

	s.SetDraft("   ")
	_, err = s.Send(e.ctx)
	assert.ErrorIs(t, err, service.ErrEmptyInput)
	assert.Equal(t, "   ", s.Draft())

	s.SetDraft("/bot help")
	sent, err := s.Send(e.ctx)
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, model.MessageBot, sent[1].Type)
}

func TestSelectChat(t *testing.T) {
	e := newEnv(t)
	owner := e.session()
	_, err := owner.Register(e.ctx, "owner", "pw")
	require.NoError(t, err)
	hidden, err := owner.CreateChannel(e.ctx, "hidden", "", false)
	require.NoError(t, err)
	open, err := owner.CreateChannel(e.ctx, "open", "", true)
	require.NoError(t, err)

	guest := e.session()
	_, err = guest.Register(e.ctx, "guest", "pw")
	require.NoError(t, err)

	assert.ErrorIs(t, guest.SelectChat(e.ctx, hidden.ID), service.ErrNotFound)
	assert.ErrorIs(t, guest.SelectChat(e.ctx, 404), service.ErrNotFound)

	// A public channel can be selected and posted to before joining.
	require.NoError(t, guest.SelectChat(e.ctx, open.ID))
	guest.SetDraft("hello")
	sent, err := guest.Send(e.ctx)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "guest", sent[0].Sender)
	assert.Empty(t, guest.Draft())

	_, err = guest.JoinChannel(e.ctx, open.ID)
	require.NoError(t, err)
}

func TestSearch(t *testing.T) {
	e := newEnv(t)
	s := e.session()
	_, err := s.Register(e.ctx, "alice", "pw")
	require.NoError(t, err)
	for _, name := range []string{"Gophers", "Rustaceans", "go-nuts"} {
		_, err := s.CreateChannel(e.ctx, name, "", true)
		require.NoError(t, err)
	}

	s.SetSearch("GO")
	chats, err := s.Chats(e.ctx)
	require.NoError(t, err)
	assert.Len(t, chats, 2)
}

func TestCurrentUserAfterDeletion(t *testing.T) {
	e := newEnv(t)
	admin := e.session()
	_, err := admin.Login(e.ctx, "Himo", adminSecret)
	require.NoError(t, err)

	victim := e.session()
	u, err := victim.Register(e.ctx, "victim", "pw")
	require.NoError(t, err)

	require.NoError(t, admin.DeleteUser(e.ctx, u.ID))

	_, err = victim.CurrentUser(e.ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, victim.IsAuthenticated())
}

func TestAdminPanel(t *testing.T) {
	e := newEnv(t)
	admin := e.session()
	_, err := admin.Login(e.ctx, "Himo", adminSecret)
	require.NoError(t, err)

	user := e.session()
	alice, err := user.Register(e.ctx, "alice", "pw")
	require.NoError(t, err)

	report, err := user.FileReport(e.ctx, model.SeedAdminID, "too strict")
	require.NoError(t, err)

	_, err = user.BanUser(e.ctx, model.SeedAdminID)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = user.Reports(e.ctx, "")
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	reports, err := admin.Reports(e.ctx, model.ReportPending)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	_, err = admin.ResolveReport(e.ctx, report.ID)
	require.NoError(t, err)

	_, err = admin.CreatePrefix(e.ctx, "Gold", "#FFD700", "🥇")
	require.NoError(t, err)
	u, err := admin.AssignPrefix(e.ctx, alice.ID, "Gold")
	require.NoError(t, err)
	assert.Equal(t, "Gold", u.Prefix)

	u, err = admin.VerifyUser(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, u.Verified)

	_, err = admin.BanUser(e.ctx, alice.ID)
	require.NoError(t, err)
	_, err = user.Login(e.ctx, "alice", "pw")
	assert.ErrorIs(t, err, service.ErrBanned)

	_, err = admin.UnbanUser(e.ctx, alice.ID)
	require.NoError(t, err)
	_, err = admin.PromoteToAdmin(e.ctx, alice.ID)
	require.NoError(t, err)

	users, err := admin.Users(e.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	prefixes, err := user.Prefixes(e.ctx)
	require.NoError(t, err)
	assert.Len(t, prefixes, 4)
}

func TestSessionLogsCarryTraceID(t *testing.T) {
	e := newEnv(t)
	s := e.session()
	_, err := s.Register(e.ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = s.AddFriend(e.ctx, "NOSUCH1")
	require.ErrorIs(t, err, service.ErrNotFound)

	entries := e.logs.FilterMessage("Add friend rejected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotEmpty(t, fields["trace_id"])
	assert.Equal(t, "alice", fields["username"])

	started := e.logs.FilterMessage("Session started").All()
	require.Len(t, started, 1)
	assert.Equal(t, fields["trace_id"], started[0].ContextMap()["trace_id"])
}
