package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/messaging"
)

// HeaderCorrelationID carries the correlation id across the broker.
const HeaderCorrelationID = "cID"

// Broker hands messages to a dispatcher process through a message broker.
// Send returns once the broker has accepted the message.
type Broker struct {
	pub   messaging.Publisher
	topic string
}

func NewBroker(pub messaging.Publisher, topic string) *Broker {
	return &Broker{pub: pub, topic: topic}
}

func (b *Broker) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if _, err := b.pub.Publish(ctx, b.topic, messaging.OutgoingMessage{
		Body: body,
		Key:  []byte(msg.To),
		Headers: []messaging.Header{
			{Key: HeaderCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))},
		},
	}); err != nil {
		return fmt.Errorf("sms: broker publish: %w", err)
	}

	return nil
}

// Decode parses a message published by Broker.
func Decode(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("sms: decode: %w", err)
	}
	return msg, msg.validate()
}
