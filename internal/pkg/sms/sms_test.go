package sms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/messaging"
)

const (
	timeoutShort = time.Second
	tick         = 10 * time.Millisecond
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestSNS_Send(t *testing.T) {
	// Arrange
	client := &fakeSNS{}
	s := NewSNS(client)

	// Act
	err := s.Send(context.Background(), Message{To: "+15550001", Text: "Your code is 123456", SenderID: "ACME"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "+15550001", aws.ToString(client.input.PhoneNumber))
	assert.Equal(t, "Your code is 123456", aws.ToString(client.input.Message))
	assert.Equal(t, "ACME", aws.ToString(client.input.MessageAttributes[snsAttrSenderID].StringValue))
	assert.Equal(t, "Transactional", aws.ToString(client.input.MessageAttributes[snsAttrSMSType].StringValue))
}

func TestSNS_SendWithoutSenderID(t *testing.T) {
	client := &fakeSNS{}

	require.NoError(t, NewSNS(client).Send(context.Background(), Message{To: "+15550001", Text: "x"}))

	assert.NotContains(t, client.input.MessageAttributes, snsAttrSenderID)
}

func TestSNS_SendError(t *testing.T) {
	errThrottled := errors.New("throttled")

	err := NewSNS(&fakeSNS{err: errThrottled}).Send(context.Background(), Message{To: "+1", Text: "x"})

	assert.ErrorIs(t, err, errThrottled)
}

func TestGateway_Send(t *testing.T) {
	// Arrange
	var got gatewayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key-1", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	g, err := NewGateway(GatewayConfig{URL: srv.URL, APIKey: "key-1"})
	require.NoError(t, err)

	// Act
	err = g.Send(context.Background(), Message{To: "+15550001", Text: "hello", SenderID: "ACME"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, gatewayRequest{To: "+15550001", Text: "hello", Sender: "ACME"}, got)
}

func TestGateway_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid number"}`))
	}))
	t.Cleanup(srv.Close)

	g, err := NewGateway(GatewayConfig{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	err = g.Send(context.Background(), Message{To: "+1", Text: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
	assert.Contains(t, err.Error(), "invalid number")
}

func TestGateway_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	t.Cleanup(srv.Close)

	g, err := NewGateway(GatewayConfig{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, g.Send(ctx, Message{To: "+1", Text: "x"}), context.Canceled)
}

func TestBroker_SendAndDecode(t *testing.T) {
	// Arrange
	broker := messaging.NewMemory()
	t.Cleanup(func() { _ = broker.Close() })

	ctx, cancel := context.WithCancel(instrument.SetCorrelationID(context.Background(), "cid-9"))
	defer cancel()

	received := make(chan messaging.Message, 128)
	go func() {
		_ = broker.Consume(ctx, "sms.dispatch", func(_ context.Context, m messaging.Message) error {
			received <- m
			return nil
		})
	}()

	s := NewBroker(broker, "sms.dispatch")

	// Act
	require.Eventually(t, func() bool {
		// a message published before the consumer subscribes is dropped
		_ = s.Send(ctx, Message{To: "+15550001", Text: "code 1"})
		return len(received) > 0
	}, timeoutShort, tick)

	// Assert
	m := <-received
	msg, err := Decode(m.Body())
	require.NoError(t, err)
	assert.Equal(t, Message{To: "+15550001", Text: "code 1"}, msg)
	assert.Equal(t, "cid-9", messaging.HeaderValue(m.Headers(), HeaderCorrelationID))
	assert.Equal(t, []byte("+15550001"), m.Key())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`{"to":""}`))
	assert.ErrorIs(t, err, ErrInvalidDestination)

	_, err = Decode([]byte(`nope`))
	assert.Error(t, err)
}

func TestLog_Send(t *testing.T) {
	assert.NoError(t, NewLog().Send(context.Background(), Message{To: "+1", Text: "x"}))
	assert.ErrorIs(t, NewLog().Send(context.Background(), Message{Text: "x"}), ErrInvalidDestination)
	assert.ErrorIs(t, NewLog().Send(context.Background(), Message{To: "+1"}), ErrEmptyText)
}

func TestNewFromDriver(t *testing.T) {
	tests := []struct {
		driver  string
		opts    FactoryOptions
		want    any
		wantErr error
	}{
		{driver: "", want: &Log{}},
		{driver: "LOG", want: &Log{}},
		{driver: "sns", opts: FactoryOptions{SNS: &fakeSNS{}}, want: &SNS{}},
		{driver: "sns", wantErr: ErrMissingClient},
		{driver: "gateway", opts: FactoryOptions{Gateway: GatewayConfig{URL: "http://x", APIKey: "k"}}, want: &Gateway{}},
		{driver: "gateway", wantErr: ErrGatewayNotConfigured},
		{driver: "broker", opts: FactoryOptions{Publisher: messaging.NewMemory(), Topic: "t"}, want: &Broker{}},
		{driver: "broker", opts: FactoryOptions{Publisher: messaging.NewMemory()}, wantErr: ErrMissingClient},
		{driver: "twilio", wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			s, err := NewFromDriver(tt.driver, tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}
