package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/Himo/internal/model"
)

func TestCollections_Lookups(t *testing.T) {
	c := Collections{
		Users: []model.User{
			{ID: 1, Username: "Himo", UniqueID: "HIMO001"},
			{ID: 4, Username: "bob", UniqueID: "BOB0001"},
		},
		Chats: []model.Chat{
			{ID: 2, Type: model.ChatPrivate, Participants: []int64{4, 1}},
			{ID: 3, Type: model.ChatChannel, Participants: []int64{1, 4}},
		},
		Messages: []model.Message{
			{ID: 1, ChatID: 2, Content: "a"},
			{ID: 2, ChatID: 3, Content: "b"},
			{ID: 5, ChatID: 2, Content: "c"},
		},
		Prefixes: []model.Prefix{{ID: 1, Name: "VIP"}},
	}

	assert.Equal(t, "bob", c.UserByID(4).Username)
	assert.Nil(t, c.UserByID(99))
	assert.Equal(t, int64(4), c.UserByUniqueID("BOB0001").ID)
	assert.Equal(t, int64(1), c.UserByUsername("Himo").ID)

	require.NotNil(t, c.PrivateChat(1, 4))
	assert.Equal(t, int64(2), c.PrivateChat(4, 1).ID)
	assert.Nil(t, c.PrivateChat(1, 1))

	msgs := c.MessagesInChat(2)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Content)
	assert.Equal(t, "c", msgs[1].Content)

	assert.NotNil(t, c.PrefixByName("VIP"))
	assert.Nil(t, c.PrefixByName("vip"))

	assert.Equal(t, int64(5), c.NextUserID())
	assert.Equal(t, int64(4), c.NextChatID())
	assert.Equal(t, int64(6), c.NextMessageID())
	assert.Equal(t, int64(1), c.NextReportID())
	assert.Equal(t, int64(2), c.NextPrefixID())

	assert.True(t, c.RemoveUser(4))
	assert.False(t, c.RemoveUser(4))
	assert.Len(t, c.Users, 1)
}

func TestCollections_NextIDIgnoresNegative(t *testing.T) {
	c := Collections{Users: []model.User{{ID: -3}}}
	assert.Equal(t, int64(1), c.NextUserID())
}
