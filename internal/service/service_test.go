package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/pkg/kv"
	"github.com/Gopher0727/Himo/internal/store"
)

const testAdminSecret = "12345678"

var testAdminHash = func() string {
	h, err := HashSecret(testAdminSecret, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()

var testNow = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

type fixture struct {
	ctx     context.Context
	backend *kv.Memory
	store   *store.Store
	svc     *Services
}

// sequentialUniqueIDs hands out USER001, USER002, ...
func sequentialUniqueIDs() UniqueIDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("USER%03d", n)
	}
}

func testOptions() Options {
	return Options{
		AdminSecretHash: testAdminHash,
		EnforceBans:     true,
		Bot: BotOptions{
			Enabled:  true,
			Name:     "AutoBot",
			Reply:    "Обрабатываю вашу команду автоматизации...",
			Triggers: []string{"/bot", "бот"},
		},
		Clock:    ClockFunc(func() time.Time { return testNow }),
		UniqueID: sequentialUniqueIDs(),
	}
}

func newFixture(t testingT, tweaks ...func(*Options)) *fixture {
	t.Helper()
	opts := testOptions()
	for _, tweak := range tweaks {
		tweak(&opts)
	}

	backend := kv.NewMemory()
	st := store.New(backend)
	require.NoError(t, st.Load(context.Background()))

	return &fixture{
		ctx:     context.Background(),
		backend: backend,
		store:   st,
		svc:     New(st, opts),
	}
}

func (f *fixture) register(t testingT, username string) *model.User {
	t.Helper()
	u, err := f.svc.Auth.Register(f.ctx, username, "password")
	require.NoError(t, err)
	return u
}

func (f *fixture) befriend(t testingT, a, b *model.User) {
	t.Helper()
	_, err := f.svc.Friends.AddFriend(f.ctx, a.ID, b.UniqueID)
	require.NoError(t, err)
}

func (f *fixture) user(t testingT, id int64) model.User {
	t.Helper()
	u, err := f.svc.Auth.User(f.ctx, id)
	require.NoError(t, err)
	return *u
}

// snapshot encodes every collection so tests can assert nothing changed.
func (f *fixture) snapshot(t testingT) string {
	t.Helper()
	var out []byte
	require.NoError(t, f.store.View(func(c *store.Collections) error {
		var err error
		out, err = json.Marshal(c)
		return err
	}))
	return string(out)
}
