// Package messaging serves the buyer/seller inbox.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/messaging"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/navigation"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// MessageAPI is the remote side of messaging.
type MessageAPI interface {
	Conversations(ctx context.Context) ([]messaging.Conversation, error)
	Thread(ctx context.Context, user shared.ID) ([]messaging.Message, error)
	Send(ctx context.Context, out messaging.Outgoing) (messaging.Message, error)
}

// Session exposes the signed-in user.
type Session interface {
	User() *identity.User
}

// Service is the inbox.
type Service struct {
	api      MessageAPI
	session  Session
	notifier notify.Notifier
	nav      navigation.Navigator
	logger   *zap.Logger
}

// NewService creates an inbox service. notifier, nav and logger may be nil.
func NewService(api MessageAPI, session Session, notifier notify.Notifier, nav navigation.Navigator, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if nav == nil {
		nav = navigation.Func(func(string) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, session: session, notifier: notifier, nav: nav, logger: logger.Named("messages")}
}

// Conversations lists the caller's threads
func (s *Service) Conversations(ctx context.Context) ([]messaging.Conversation, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}
	convs, err := s.api.Conversations(ctx)
	if err != nil {
		s.logger.Warn("Failed to load conversations", zap.Error(err))
		s.notifier.Error(notify.MsgConversationsFailed)
		return nil, err
	}
	return convs, nil
}

// Thread returns the messages exchanged with user
func (s *Service) Thread(ctx context.Context, user shared.ID) ([]messaging.Message, error) {
	if err := s.signedIn(); err != nil {
		return nil, err
	}
	msgs, err := s.api.Thread(ctx, user)
	if err != nil {
		s.logger.Warn("Failed to load thread", zap.String("user_id", user.String()), zap.Error(err))
		s.notifier.Error(notify.MsgMessagesLoadFailed)
		return nil, err
	}
	return msgs, nil
}

// Send posts content to receiver. Blank content is ignored: nothing is sent
// and ok is false.
func (s *Service) Send(ctx context.Context, receiver shared.ID, content string) (msg messaging.Message, ok bool, err error) {
	if err := s.signedIn(); err != nil {
		return messaging.Message{}, false, err
	}
	out, ok := messaging.NewOutgoing(receiver, content)
	if !ok {
		return messaging.Message{}, false, nil
	}

	msg, err = s.api.Send(ctx, out)
	if err != nil {
		s.logger.Warn("Failed to send message", zap.String("receiver_id", receiver.String()), zap.Error(err))
		s.notifier.Error(notify.MsgMessageFailed)
		return messaging.Message{}, false, err
	}
	msg.IsMine = true
	return msg, true, nil
}

func (s *Service) signedIn() error {
	if s.session.User() != nil {
		return nil
	}
	s.notifier.Error(notify.MsgLoginRequired)
	s.nav.Navigate(navigation.PathLogin)
	return apiclient.ErrNotAuthenticated
}
