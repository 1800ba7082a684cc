package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// -------------------------------
// Accounts
// -------------------------------
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	Email        string    `gorm:"type:text;uniqueIndex" json:"email"`
	FullName     string    `gorm:"type:text" json:"fullName"`
	PasswordHash string    `gorm:"type:text" json:"-"`
	ProfilePic   string    `gorm:"type:text" json:"profilePic"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserWithUnread is a sidebar row.
type UserWithUnread struct {
	User
	UnreadCount int64 `json:"unreadCount"`
}

// -------------------------------
// Messaging
// -------------------------------
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;index" json:"senderId"`
	ReceiverID uuid.UUID `gorm:"type:uuid;index" json:"receiverId"`
	Text       string    `gorm:"type:text" json:"text,omitempty"`
	Image      string    `gorm:"type:text" json:"image,omitempty"`
	Seen       bool      `gorm:"default:false;index" json:"seen"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Message{}}
}
