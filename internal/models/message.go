package models

import (
	"time"
)

// Message is a single chat message between a patient and a doctor.
type Message struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ThreadID   string    `gorm:"size:80;index" json:"threadId"`
	SenderID   string    `gorm:"size:64;index" json:"senderId"`
	ReceiverID string    `gorm:"size:64;index" json:"receiverId"`
	Content    string    `gorm:"type:text" json:"content"`
	ImageURL   string    `gorm:"size:512" json:"imageUrl,omitempty"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	Read       bool      `gorm:"default:false" json:"read"`
	Edited     bool      `gorm:"default:false" json:"edited,omitempty"`
}

// ChatThread is the conversation between one user and one doctor.
type ChatThread struct {
	ID           string    `gorm:"primaryKey;type:varchar(80)" json:"id"`
	UserID       string    `gorm:"size:64;index" json:"-"`
	DoctorID     string    `gorm:"size:36;index" json:"-"`
	Participants []string  `gorm:"serializer:json" json:"participants"`
	LastMessage  *Message  `gorm:"serializer:json" json:"lastMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ThreadID builds the deterministic thread id for a user and a doctor.
func ThreadID(userID, doctorID string) string {
	return userID + "-" + doctorID
}

// Involves reports whether userID takes part in the thread.
func (t *ChatThread) Involves(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
