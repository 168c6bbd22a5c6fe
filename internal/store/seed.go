package store

import "github.com/Gopher0727/Himo/internal/model"

// Seed holds the records written when a collection has never been persisted.
type Seed struct {
	Users    []model.User
	Prefixes []model.Prefix
}

// DefaultSeed is the single admin account plus the three stock badges.
func DefaultSeed(adminUsername, adminUniqueID string) Seed {
	return Seed{
		Users: []model.User{{
			ID:       model.SeedAdminID,
			Username: adminUsername,
			UniqueID: adminUniqueID,
			Status:   model.StatusOnline,
			Role:     model.RoleAdmin,
			Friends:  []int64{},
		}},
		Prefixes: []model.Prefix{
			{ID: 1, Name: "VIP", Color: "#F59E0B", Emoji: "👑"},
			{ID: 2, Name: "Модератор", Color: "#3B82F6", Emoji: "🛡️"},
			{ID: 3, Name: "Проверенный", Color: "#10B981", Emoji: "✅"},
		},
	}
}

func (s Seed) collections() Collections {
	c := Collections{Users: s.Users, Prefixes: s.Prefixes}
	return c.Clone()
}
