package inbound

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/messaging"
	"github.com/shandysiswandi/smsotp/internal/pkg/sms"
)

type fakeMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m fakeMessage) Body() []byte                { return m.body }
func (m fakeMessage) Key() []byte                 { return nil }
func (m fakeMessage) Headers() []messaging.Header { return m.headers }
func (m fakeMessage) Topic() string               { return "sms.dispatch" }
func (m fakeMessage) Timestamp() time.Time        { return time.Time{} }
func (m fakeMessage) Ack(context.Context) error   { return nil }
func (m fakeMessage) Nack(context.Context) error  { return nil }

type fakeConsumerUC struct {
	msg   sms.Message
	cID   string
	calls int
	err   error
}

func (f *fakeConsumerUC) DispatchSMS(ctx context.Context, msg sms.Message) error {
	f.calls++
	f.msg = msg
	f.cID = instrument.GetCorrelationID(ctx)
	return f.err
}

func TestMQHandler_DispatchSMS(t *testing.T) {
	errProvider := errors.New("provider down")

	tests := []struct {
		name      string
		msg       fakeMessage
		ucErr     error
		wantErr   error
		wantCalls int
		wantCID   string
	}{
		{
			name: "relays message with incoming correlation id",
			msg: fakeMessage{
				body:    []byte(`{"to":"+15550001","text":"Your code is 482913","sender_id":"ACME"}`),
				headers: []messaging.Header{{Key: sms.HeaderCorrelationID, Value: []byte("cid-9")}},
			},
			wantCalls: 1,
			wantCID:   "cid-9",
		},
		{
			name:      "generates correlation id when absent",
			msg:       fakeMessage{body: []byte(`{"to":"+15550001","text":"x"}`)},
			wantCalls: 1,
			wantCID:   "cid-1",
		},
		{
			name:      "malformed body is dropped",
			msg:       fakeMessage{body: []byte(`nope`)},
			wantCalls: 0,
		},
		{
			name:      "provider failure is returned",
			msg:       fakeMessage{body: []byte(`{"to":"+15550001","text":"x"}`)},
			ucErr:     errProvider,
			wantErr:   errProvider,
			wantCalls: 1,
			wantCID:   "cid-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			uc := &fakeConsumerUC{err: tt.ucErr}
			h := &MQHandler{uc: uc, uuid: fixedID("cid-1"), ins: instrument.NewNoop()}

			// Act
			err := h.DispatchSMS(context.Background(), tt.msg)

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCalls, uc.calls)
			assert.Equal(t, tt.wantCID, uc.cID)
		})
	}
}

func TestMQHandler_DispatchSMSPayload(t *testing.T) {
	uc := &fakeConsumerUC{}
	h := &MQHandler{uc: uc, uuid: fixedID("cid-1"), ins: instrument.NewNoop()}

	err := h.DispatchSMS(context.Background(), fakeMessage{
		body: []byte(`{"to":"+15550001","text":"Your code is 482913","sender_id":"ACME"}`),
	})

	assert.NoError(t, err)
	assert.Equal(t, sms.Message{To: "+15550001", Text: "Your code is 482913", SenderID: "ACME"}, uc.msg)
}
