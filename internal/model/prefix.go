package model

// Prefix is a role badge. Users reference it by Name.
type Prefix struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Emoji string `json:"emoji,omitempty"`
}
