package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOutgoing(t *testing.T) {
	out, ok := NewOutgoing("5", "  hola, ¿sigue disponible?  ")
	assert.True(t, ok)
	assert.Equal(t, "hola, ¿sigue disponible?", out.Content)

	_, ok = NewOutgoing("5", "   \n\t")
	assert.False(t, ok)

	_, ok = NewOutgoing("", "hola")
	assert.False(t, ok)
}

func TestUnreadTotal(t *testing.T) {
	assert.Equal(t, 5, UnreadTotal([]Conversation{{UnreadCount: 2}, {UnreadCount: 3}, {}}))
	assert.Zero(t, UnreadTotal(nil))
}
