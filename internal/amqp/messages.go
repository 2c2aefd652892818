package amqp

import (
	"encoding/json"
	"time"
)

// NotificationKind selects which email the worker sends.
type NotificationKind string

const (
	KindWelcome       NotificationKind = "welcome"
	KindPasswordReset NotificationKind = "password_reset"
)

// Notification is the queued request for one outbound email. Delivery
// is best-effort: producers publish and forget, the worker retries via
// requeue on transient failures.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Email     string           `json:"email"`
	Name      string           `json:"name,omitempty"`
	Token     string           `json:"token,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewWelcomeNotification builds the message sent after registration.
func NewWelcomeNotification(email, name string) *Notification {
	return &Notification{
		Kind:      KindWelcome,
		Email:     email,
		Name:      name,
		Timestamp: time.Now(),
	}
}

// NewPasswordResetNotification builds the message carrying a reset token.
func NewPasswordResetNotification(email, token string) *Notification {
	return &Notification{
		Kind:      KindPasswordReset,
		Email:     email,
		Token:     token,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// NotificationFromJSON creates a message from JSON bytes
func NotificationFromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
