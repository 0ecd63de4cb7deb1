package marketapi

import (
	"context"
	"net/http"

	"github.com/TheRipper284/frontend/internal/domain/messaging"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

// MessageAPI covers /messages.
type MessageAPI struct{ base }

// Conversations lists the caller's threads
func (m *MessageAPI) Conversations(ctx context.Context) ([]messaging.Conversation, error) {
	resp, err := m.get(ctx, "/messages", nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]messaging.Conversation](resp)
}

// Thread returns the messages exchanged with user, oldest first
func (m *MessageAPI) Thread(ctx context.Context, user shared.ID) ([]messaging.Message, error) {
	resp, err := m.get(ctx, route("/messages", user), nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]messaging.Message](resp)
}

// Send posts a message and returns it as stored
func (m *MessageAPI) Send(ctx context.Context, out messaging.Outgoing) (messaging.Message, error) {
	resp, err := m.authed(ctx, http.MethodPost, "/messages", nil, out)
	if err != nil {
		return messaging.Message{}, err
	}
	return apiclient.Decode[messaging.Message](resp)
}
