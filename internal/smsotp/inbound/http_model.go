package inbound

// Form field names.
const (
	fieldGrantType = "grant_type"
	fieldUsername  = "username"
	fieldPassword  = "password"
	// fieldOTP carries the code on the token endpoint; its presence means
	// "verify", its absence means "issue".
	fieldOTP = "otp"
	// fieldCode is the code field of the browser form.
	fieldCode = "code"
)

const grantTypePassword = "password"

type UserInfoResponse struct {
	Sub               string   `json:"sub"`
	PreferredUsername string   `json:"preferred_username"`
	Realm             string   `json:"realm"`
	AMR               []string `json:"amr"`
}
