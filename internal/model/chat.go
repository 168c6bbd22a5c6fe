package model

import "slices"

type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
	ChatChannel ChatType = "channel"
)

// Chat is a conversation container. Participants, Creator and Public are
// optional in the persisted form; Public and Description only apply to channels.
type Chat struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Type         ChatType `json:"type"`
	LastMessage  string   `json:"lastMessage"`
	Timestamp    string   `json:"timestamp"`
	Unread       int      `json:"unread"`
	Participants []int64  `json:"participants,omitempty"`
	Creator      int64    `json:"creator,omitempty"`
	Public       bool     `json:"public,omitempty"`
	Description  string   `json:"description,omitempty"`
}

func (c *Chat) HasParticipant(id int64) bool {
	return slices.Contains(c.Participants, id)
}

// AddParticipant reports whether id was newly added.
func (c *Chat) AddParticipant(id int64) bool {
	if c.HasParticipant(id) {
		return false
	}
	c.Participants = append(c.Participants, id)
	return true
}

func (c *Chat) RemoveParticipant(id int64) bool {
	n := len(c.Participants)
	c.Participants = slices.DeleteFunc(c.Participants, func(p int64) bool { return p == id })
	return len(c.Participants) != n
}

// IsPair reports whether this is the private chat between a and b, in either order.
func (c *Chat) IsPair(a, b int64) bool {
	if c.Type != ChatPrivate || len(c.Participants) != 2 {
		return false
	}
	p, q := c.Participants[0], c.Participants[1]
	return (p == a && q == b) || (p == b && q == a)
}

func (c Chat) Clone() Chat {
	c.Participants = slices.Clone(c.Participants)
	return c
}
