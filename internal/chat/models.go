package chat

import "time"

const DefaultTitle = "New Chat"

// titlePrefixLen is how much of the first message becomes the session title.
const titlePrefixLen = 50

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Session struct {
	ID    string `gorm:"primaryKey;size:26" json:"id"`
	Title string `gorm:"type:varchar(64);not null" json:"title"`

	// Generation is the stale-write token: bumped whenever the transcript is
	// edited, so an in-flight reply that started against an older transcript
	// is dropped instead of applied.
	Generation uint64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (Session) TableName() string { return "chat_sessions" }

type Message struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	SessionID string    `gorm:"size:26;index;not null" json:"sessionId"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

func (Message) TableName() string { return "chat_messages" }

// deriveTitle truncates the first message to the UI title length and marks
// the cut with an ellipsis. Always appended, even for short messages.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > titlePrefixLen {
		runes = runes[:titlePrefixLen]
	}
	return string(runes) + "..."
}
