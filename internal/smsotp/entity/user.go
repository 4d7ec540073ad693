package entity

import (
	"time"

	"github.com/shandysiswandi/smsotp/internal/pkg/valueobject"
)

// AttributeMobileNumber is the user attribute holding the SMS destination.
const AttributeMobileNumber = "mobile_number"

type User struct {
	ID           int64
	Realm        string
	Username     string
	PasswordHash string
	Attributes   valueobject.Attributes
	Enabled      bool
}

func (u User) Identity() IdentityKey {
	return NewIdentityKey(u.Realm, u.Username)
}

func (u User) MobileNumber() string {
	return u.Attributes.First(AttributeMobileNumber)
}

// ConfiguredForSMS reports whether the user can receive a code.
func (u User) ConfiguredForSMS() bool {
	return u.MobileNumber() != ""
}

// AuthSession carries an interactive attempt from the credential step to the
// code step. Handle is the opaque value held by the browser.
type AuthSession struct {
	Handle    string    `json:"handle"`
	UserID    int64     `json:"user_id,string"`
	Realm     string    `json:"realm"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s AuthSession) Identity() IdentityKey {
	return NewIdentityKey(s.Realm, s.Username)
}
