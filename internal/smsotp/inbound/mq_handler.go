package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/messaging"
	"github.com/shandysiswandi/smsotp/internal/pkg/sms"
	"github.com/shandysiswandi/smsotp/internal/pkg/uid"
)

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	if cID := messaging.HeaderValue(headers, sms.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// DispatchSMS hands a relayed message to the configured SMS provider. A
// malformed body is dropped; a provider failure is returned to the broker.
func (h *MQHandler) DispatchSMS(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("smsotp.inbound.mq").Start(ctx, "DispatchSMS")
	defer span.End()

	payload, err := sms.Decode(msg.Body())
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of sms dispatch", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: sms dispatch", "sender_id", payload.SenderID)

	if err := h.uc.DispatchSMS(ctx, payload); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch sms", "error", err)
		return err
	}

	return nil
}
