package model

type MessageType string

const (
	MessageText MessageType = "text"
	MessageBot  MessageType = "bot"
)

// Message 消息模型
// Sender is the author's username at send time, not a foreign key.
type Message struct {
	ID        int64       `json:"id"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
	Type      MessageType `json:"type"`
	ChatID    int64       `json:"chatId"`
}
