package sms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	snsAttrSenderID = "AWS.SNS.SMS.SenderID"
	snsAttrSMSType  = "AWS.SNS.SMS.SMSType"
)

type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS sends messages as transactional SMS through Amazon SNS.
type SNS struct {
	client snsPublisher
}

// NewSNS wraps an SNS client, usually sns.NewFromConfig(awsCfg).
func NewSNS(client snsPublisher) *SNS {
	return &SNS{client: client}
}

func (s *SNS) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	attrs := map[string]types.MessageAttributeValue{
		snsAttrSMSType: {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if msg.SenderID != "" {
		attrs[snsAttrSenderID] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(msg.SenderID)}
	}

	if _, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(msg.To),
		Message:           aws.String(msg.Text),
		MessageAttributes: attrs,
	}); err != nil {
		return fmt.Errorf("sms: sns publish: %w", err)
	}

	return nil
}
