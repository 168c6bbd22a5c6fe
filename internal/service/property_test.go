package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
)

// TestProperty_FriendshipSymmetric drives random friend requests and checks
// that every friend link has its mirror and no list holds duplicates.
func TestProperty_FriendshipSymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		n := rapid.IntRange(2, 6).Draw(rt, "users")
		users := make([]*model.User, n)
		for i := range n {
			users[i] = f.register(rt, fmt.Sprintf("user%d", i))
		}

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for range steps {
			a := users[rapid.IntRange(0, n-1).Draw(rt, "a")]
			b := users[rapid.IntRange(0, n-1).Draw(rt, "b")]
			_, err := f.svc.Friends.AddFriend(f.ctx, a.ID, b.UniqueID)
			if err != nil && !errors.Is(err, ErrSelfAction) && !errors.Is(err, ErrAlreadyFriends) {
				rt.Fatalf("unexpected error: %v", err)
			}
		}

		require.NoError(rt, f.store.View(func(c *store.Collections) error {
			for _, u := range c.Users {
				seen := map[int64]bool{}
				for _, id := range u.Friends {
					if seen[id] {
						rt.Fatalf("user %d lists %d twice", u.ID, id)
					}
					seen[id] = true
					if id == u.ID {
						rt.Fatalf("user %d befriended itself", u.ID)
					}
					other := c.UserByID(id)
					if other == nil || !other.HasFriend(u.ID) {
						rt.Fatalf("friendship %d -> %d is not mirrored", u.ID, id)
					}
				}
			}
			return nil
		}))
	})
}

// TestProperty_RegisterIDsAreDense checks that N registrations after the seed
// produce exactly the ids 2..N+1.
func TestProperty_RegisterIDsAreDense(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		for i := range n {
			u := f.register(rt, fmt.Sprintf("user%d", i))
			if u.ID != int64(i+2) {
				rt.Fatalf("registration %d got id %d", i, u.ID)
			}
		}
	})
}

// TestProperty_PrivateChatDedup checks that any sequence of start calls on a
// pair yields a single chat.
func TestProperty_PrivateChatDedup(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		alice := f.register(rt, "alice")
		bob := f.register(rt, "bob")
		f.befriend(rt, alice, bob)

		var first int64
		for i, swap := range rapid.SliceOfN(rapid.Bool(), 1, 10).Draw(rt, "order") {
			a, b := alice.ID, bob.ID
			if swap {
				a, b = b, a
			}
			chat, err := f.svc.Chats.StartPrivateChat(f.ctx, a, b)
			require.NoError(rt, err)
			if i == 0 {
				first = chat.ID
			} else if chat.ID != first {
				rt.Fatalf("got chat %d, want %d", chat.ID, first)
			}
		}
	})
}

// TestProperty_NonAdminCannotModerate checks that any moderation call from a
// regular user leaves the store byte-for-byte unchanged.
func TestProperty_NonAdminCannotModerate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		alice := f.register(rt, "alice")
		bob := f.register(rt, "bob")
		before := f.snapshot(rt)
		writes := f.backend.Writes()

		target := rapid.SampledFrom([]int64{model.SeedAdminID, alice.ID, bob.ID, 404}).Draw(rt, "target")
		var err error
		switch rapid.IntRange(0, 6).Draw(rt, "op") {
		case 0:
			_, err = f.svc.Moderation.BanUser(f.ctx, alice.ID, target)
		case 1:
			_, err = f.svc.Moderation.UnbanUser(f.ctx, alice.ID, target)
		case 2:
			_, err = f.svc.Moderation.PromoteToAdmin(f.ctx, alice.ID, target)
		case 3:
			_, err = f.svc.Moderation.VerifyUser(f.ctx, alice.ID, target)
		case 4:
			err = f.svc.Moderation.DeleteUser(f.ctx, alice.ID, target)
		case 5:
			_, err = f.svc.Prefixes.AssignPrefix(f.ctx, alice.ID, target, "VIP")
		case 6:
			_, err = f.svc.Prefixes.CreatePrefix(f.ctx, alice.ID, "Gold", "#FFD700", "")
		}
		if err == nil {
			rt.Fatalf("non-admin moderation succeeded")
		}
		if f.snapshot(rt) != before || f.backend.Writes() != writes {
			rt.Fatalf("store changed after rejected moderation: %v", err)
		}
	})
}

func TestProperty_UniqueIDShape(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("random ids use the alphabet and length", prop.ForAll(
		func(_ int) bool {
			return ValidUniqueID(RandomUniqueID())
		},
		gen.IntRange(0, 1000),
	))

	properties.Property("lowercase input is never a valid id", prop.ForAll(
		func(s string) bool {
			if strings.ToUpper(s) != s {
				return !ValidUniqueID(s)
			}
			return true
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ResolveIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("resolving k times equals resolving once", prop.ForAll(
		func(k int) bool {
			f := newFixture(t)
			alice := f.register(t, "alice")
			bob := f.register(t, "bob")
			r, err := f.svc.Reports.FileReport(context.Background(), alice.ID, bob.ID, "spam")
			if err != nil {
				return false
			}

			if _, err := f.svc.Reports.ResolveReport(f.ctx, model.SeedAdminID, r.ID); err != nil {
				return false
			}
			once := f.snapshot(t)
			writes := f.backend.Writes()
			for range k {
				got, err := f.svc.Reports.ResolveReport(f.ctx, model.SeedAdminID, r.ID)
				if err != nil || got.Status != model.ReportResolved {
					return false
				}
			}
			return f.snapshot(t) == once && f.backend.Writes() == writes
		},
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestConcurrentRegistration(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.UniqueID = RandomUniqueID })

	const n = 40
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := range n {
		wg.Go(func() {
			u, err := f.svc.Auth.Register(f.ctx, fmt.Sprintf("user%d", i), "pw")
			assert.NoError(t, err)
			if err == nil {
				ids <- u.ID
			}
		})
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	for id := int64(2); id <= n+1; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}

	codes := map[string]bool{}
	require.NoError(t, f.store.View(func(c *store.Collections) error {
		for _, u := range c.Users {
			assert.False(t, codes[u.UniqueID], "duplicate unique id %s", u.UniqueID)
			codes[u.UniqueID] = true
		}
		return nil
	}))
}
