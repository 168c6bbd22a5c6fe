package model

import "slices"

type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
	StatusBanned  UserStatus = "banned"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// SeedAdminID is the id of the built-in admin account, which can never be deleted.
const SeedAdminID int64 = 1

// User 用户模型
// Friends is kept as a set: symmetric, no duplicates.
type User struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	UniqueID string     `json:"uniqueId"`
	Status   UserStatus `json:"status"`
	Role     Role       `json:"role"`
	Friends  []int64    `json:"friends"`
	Bio      string     `json:"bio,omitempty"`
	Verified bool       `json:"verified"`
	Prefix   string     `json:"prefix,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsBanned() bool {
	return u.Status == StatusBanned
}

func (u *User) HasFriend(id int64) bool {
	return slices.Contains(u.Friends, id)
}

// AddFriend reports whether id was newly added.
func (u *User) AddFriend(id int64) bool {
	if u.HasFriend(id) {
		return false
	}
	u.Friends = append(u.Friends, id)
	return true
}

func (u *User) RemoveFriend(id int64) {
	u.Friends = slices.DeleteFunc(u.Friends, func(f int64) bool { return f == id })
}

func (u User) Clone() User {
	u.Friends = slices.Clone(u.Friends)
	if u.Friends == nil {
		u.Friends = []int64{}
	}
	return u
}
