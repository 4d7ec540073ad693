package event

const ChallengeIssuedDestination string = "smsotp.challenge.issued"
const ChallengeVerifiedDestination string = "smsotp.challenge.verified"

// ChallengeIssuedMessage is published after a challenge is stored and sent.
// Identity is the keyed digest of realm and username, never the raw name.
type ChallengeIssuedMessage struct {
	ChallengeID int64  `json:"challenge_id,string"`
	Identity    string `json:"identity"`
	Realm       string `json:"realm"`
	Channel     string `json:"channel"`
	Simulated   bool   `json:"simulated"`
	IssuedAt    int64  `json:"issued_at"`
	ExpiresAt   int64  `json:"expires_at"`
}

// ChallengeVerifiedMessage is published for every code submission.
type ChallengeVerifiedMessage struct {
	ChallengeID int64  `json:"challenge_id,string,omitempty"`
	Identity    string `json:"identity"`
	Realm       string `json:"realm"`
	Channel     string `json:"channel"`
	Outcome     string `json:"outcome"`
	VerifiedAt  int64  `json:"verified_at"`
}
