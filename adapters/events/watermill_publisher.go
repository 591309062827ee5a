package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/meridian-labs/heimdall/ports"
)

// SessionEvent is the payload published on login and logout.
type SessionEvent struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher   message.Publisher
	loginTopic  string
	logoutTopic string
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher:   publisher,
		loginTopic:  "heimdall.login",
		logoutTopic: "heimdall.logout",
	}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, userID, sessionID string) error {
	return p.publish(p.loginTopic, userID, sessionID)
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID, sessionID string) error {
	return p.publish(p.logoutTopic, userID, sessionID)
}

func (p *WatermillPublisher) publish(topic, userID, sessionID string) error {
	payload, err := json.Marshal(SessionEvent{UserID: userID, SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(sessionID, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
