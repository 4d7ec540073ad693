package sms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shandysiswandi/smsotp/internal/pkg/messaging"
)

const (
	DriverLog     = "log"
	DriverSNS     = "sns"
	DriverGateway = "gateway"
	DriverBroker  = "broker"
)

var (
	ErrUnknownDriver = errors.New("sms: unknown driver")
	ErrMissingClient = errors.New("sms: driver dependency is missing")
)

// FactoryOptions carries what each driver needs. Only the selected driver's
// fields are read.
type FactoryOptions struct {
	SNS       snsPublisher
	Gateway   GatewayConfig
	Publisher messaging.Publisher
	Topic     string
}

// NewFromDriver builds the Sender named by driver.
func NewFromDriver(driver string, opts FactoryOptions) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverLog, "":
		return NewLog(), nil
	case DriverSNS:
		if opts.SNS == nil {
			return nil, fmt.Errorf("%w: sns client", ErrMissingClient)
		}
		return NewSNS(opts.SNS), nil
	case DriverGateway:
		return NewGateway(opts.Gateway)
	case DriverBroker:
		if opts.Publisher == nil || opts.Topic == "" {
			return nil, fmt.Errorf("%w: broker publisher and topic", ErrMissingClient)
		}
		return NewBroker(opts.Publisher, opts.Topic), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
