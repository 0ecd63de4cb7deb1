// Package messaging holds buyer/seller conversations.
package messaging

import (
	"strings"
	"time"

	"github.com/TheRipper284/frontend/internal/domain/shared"
)

// Conversation summarizes the thread with one other user
type Conversation struct {
	UserID          shared.ID  `json:"user_id" validate:"required"`
	Name            string     `json:"name"`
	LastMessage     string     `json:"last_message,omitempty"`
	LastMessageDate *time.Time `json:"last_message_date,omitempty"`
	UnreadCount     int        `json:"unread_count" validate:"gte=0"`
}

// Message is one entry in a thread
type Message struct {
	ID         shared.ID  `json:"id" validate:"required"`
	SenderID   shared.ID  `json:"sender_id,omitempty"`
	ReceiverID shared.ID  `json:"receiver_id,omitempty"`
	Content    string     `json:"content"`
	IsMine     bool       `json:"is_mine"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// Outgoing is the body of POST /messages
type Outgoing struct {
	ReceiverID shared.ID `json:"receiver_id" validate:"required"`
	Content    string    `json:"content" validate:"required"`
}

// NewOutgoing trims content. ok is false when nothing is left to send.
func NewOutgoing(receiver shared.ID, content string) (Outgoing, bool) {
	content = strings.TrimSpace(content)
	if content == "" || receiver.IsZero() {
		return Outgoing{}, false
	}
	return Outgoing{ReceiverID: receiver, Content: content}, true
}

// UnreadTotal sums unread counts across conversations
func UnreadTotal(convs []Conversation) int {
	n := 0
	for _, c := range convs {
		n += c.UnreadCount
	}
	return n
}
