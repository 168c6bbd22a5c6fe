package store

import (
	"slices"

	"github.com/Gopher0727/Himo/internal/model"
)

// Collection keys, before the namespace is applied.
const (
	KeyUsers    = "users"
	KeyChats    = "chats"
	KeyMessages = "messages"
	KeyReports  = "reports"
	KeyPrefixes = "prefixes"
)

// Keys lists every collection in load/flush order.
var Keys = []string{KeyUsers, KeyChats, KeyMessages, KeyReports, KeyPrefixes}

// Collections is one snapshot of every entity collection.
// Lookup helpers return pointers into the slices; they stay valid until the
// slice they point into is appended to or filtered.
type Collections struct {
	Users    []model.User
	Chats    []model.Chat
	Messages []model.Message
	Reports  []model.Report
	Prefixes []model.Prefix
}

// Clone deep-copies the snapshot so a mutator can work on it in isolation.
func (c *Collections) Clone() Collections {
	out := Collections{
		Users:    make([]model.User, len(c.Users)),
		Chats:    make([]model.Chat, len(c.Chats)),
		Messages: slices.Clone(c.Messages),
		Reports:  slices.Clone(c.Reports),
		Prefixes: slices.Clone(c.Prefixes),
	}
	for i, u := range c.Users {
		out.Users[i] = u.Clone()
	}
	for i, ch := range c.Chats {
		out.Chats[i] = ch.Clone()
	}
	if out.Messages == nil {
		out.Messages = []model.Message{}
	}
	if out.Reports == nil {
		out.Reports = []model.Report{}
	}
	if out.Prefixes == nil {
		out.Prefixes = []model.Prefix{}
	}
	return out
}

// Len reports the size of the named collection.
func (c *Collections) Len(key string) int {
	switch key {
	case KeyUsers:
		return len(c.Users)
	case KeyChats:
		return len(c.Chats)
	case KeyMessages:
		return len(c.Messages)
	case KeyReports:
		return len(c.Reports)
	case KeyPrefixes:
		return len(c.Prefixes)
	}
	return 0
}

// field returns a pointer to the named collection for generic encode/decode.
func (c *Collections) field(key string) any {
	switch key {
	case KeyUsers:
		return &c.Users
	case KeyChats:
		return &c.Chats
	case KeyMessages:
		return &c.Messages
	case KeyReports:
		return &c.Reports
	case KeyPrefixes:
		return &c.Prefixes
	}
	return nil
}

func (c *Collections) UserByID(id int64) *model.User {
	for i := range c.Users {
		if c.Users[i].ID == id {
			return &c.Users[i]
		}
	}
	return nil
}

func (c *Collections) UserByUsername(username string) *model.User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}

func (c *Collections) UserByUniqueID(uniqueID string) *model.User {
	for i := range c.Users {
		if c.Users[i].UniqueID == uniqueID {
			return &c.Users[i]
		}
	}
	return nil
}

// RemoveUser drops the record with the given id and reports whether it existed.
func (c *Collections) RemoveUser(id int64) bool {
	n := len(c.Users)
	c.Users = slices.DeleteFunc(c.Users, func(u model.User) bool { return u.ID == id })
	return len(c.Users) != n
}

func (c *Collections) ChatByID(id int64) *model.Chat {
	for i := range c.Chats {
		if c.Chats[i].ID == id {
			return &c.Chats[i]
		}
	}
	return nil
}

// PrivateChat finds the private chat between a and b regardless of order.
func (c *Collections) PrivateChat(a, b int64) *model.Chat {
	for i := range c.Chats {
		if c.Chats[i].IsPair(a, b) {
			return &c.Chats[i]
		}
	}
	return nil
}

// MessagesInChat returns a copy of the chat's messages in append order.
func (c *Collections) MessagesInChat(chatID int64) []model.Message {
	var out []model.Message
	for _, m := range c.Messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (c *Collections) ReportByID(id int64) *model.Report {
	for i := range c.Reports {
		if c.Reports[i].ID == id {
			return &c.Reports[i]
		}
	}
	return nil
}

func (c *Collections) PrefixByName(name string) *model.Prefix {
	for i := range c.Prefixes {
		if c.Prefixes[i].Name == name {
			return &c.Prefixes[i]
		}
	}
	return nil
}

// Ids are max(existing, 0) + 1. This is only safe because every caller runs
// inside Store.Update, which serializes writers.

func (c *Collections) NextUserID() int64 {
	var max int64
	for _, u := range c.Users {
		max = maxID(max, u.ID)
	}
	return max + 1
}

func (c *Collections) NextChatID() int64 {
	var max int64
	for _, ch := range c.Chats {
		max = maxID(max, ch.ID)
	}
	return max + 1
}

func (c *Collections) NextMessageID() int64 {
	var max int64
	for _, m := range c.Messages {
		max = maxID(max, m.ID)
	}
	return max + 1
}

func (c *Collections) NextReportID() int64 {
	var max int64
	for _, r := range c.Reports {
		max = maxID(max, r.ID)
	}
	return max + 1
}

func (c *Collections) NextPrefixID() int64 {
	var max int64
	for _, p := range c.Prefixes {
		max = maxID(max, p.ID)
	}
	return max + 1
}

func maxID(a, b int64) int64 {
	if b > a {
		return b
	}
	return a
}
