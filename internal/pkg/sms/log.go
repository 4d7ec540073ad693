package sms

import (
	"context"
	"fmt"
	"log/slog"
)

// Log writes the message to the log instead of sending it.
type Log struct{}

func NewLog() *Log { return &Log{} }

func (*Log) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	slog.WarnContext(ctx, fmt.Sprintf("***** SIMULATION MODE ***** Would send SMS to %s with text: %s", msg.To, msg.Text))
	return nil
}
