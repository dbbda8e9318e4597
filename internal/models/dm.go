package models

import "time"

// Conversation is a direct-message thread between exactly two users.
// User1ID < User2ID always holds, so the unique index catches concurrent
// creation regardless of which side initiated.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	User1ID   uint      `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user1_id"`
	User2ID   uint      `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user2_id"`
	User1     *User     `gorm:"foreignKey:User1ID" json:"user1,omitempty"`
	User2     *User     `gorm:"foreignKey:User2ID" json:"user2,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// LastMessage is attached when listing conversations.
	LastMessage *DirectMessage `gorm:"-" json:"last_message,omitempty"`
}

// NormalizePair orders two user IDs so (a, b) and (b, a) map to the same
// conversation row.
func NormalizePair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// DirectMessage is a single message inside a conversation.
type DirectMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	Sender         *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID    uint      `gorm:"not null" json:"recipient_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
