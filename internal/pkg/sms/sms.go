// Package sms delivers text messages to phone numbers through a pluggable
// provider: AWS SNS, a JSON HTTP gateway, a message broker relay, or a log
// line when running in simulation mode.
package sms

import (
	"context"
	"errors"
)

var (
	// ErrInvalidDestination is returned for an empty destination number.
	ErrInvalidDestination = errors.New("sms: destination is required")
	// ErrEmptyText is returned for an empty message body.
	ErrEmptyText = errors.New("sms: text is required")
)

// Message is a single SMS.
type Message struct {
	To   string `json:"to"`
	Text string `json:"text"`
	// SenderID is the alphanumeric sender shown on the handset, where the
	// destination network supports it.
	SenderID string `json:"sender_id,omitempty"`
}

func (m Message) validate() error {
	if m.To == "" {
		return ErrInvalidDestination
	}
	if m.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// Sender delivers a message synchronously. A nil error means the provider
// accepted the message, not that it reached the handset.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
