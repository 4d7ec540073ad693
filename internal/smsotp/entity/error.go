package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned at setup for unusable settings.
	ErrInvalidConfiguration = errors.New("smsotp: invalid configuration")

	// ErrNotConfigured means the user has no usable mobile number.
	ErrNotConfigured = errors.New("smsotp: user has no mobile number")

	// ErrInvalidCredentials covers an unknown user and a wrong password alike.
	ErrInvalidCredentials = errors.New("smsotp: invalid credentials")

	// ErrAccountDisabled is returned for a disabled user with a correct password.
	ErrAccountDisabled = errors.New("smsotp: account disabled")
)

// TransportError reports that the code could not be handed to the SMS
// provider. The challenge issued for it has been withdrawn.
type TransportError struct {
	ChallengeID int64
	Err         error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smsotp: sms send failed for challenge %d: %v", e.ChallengeID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
