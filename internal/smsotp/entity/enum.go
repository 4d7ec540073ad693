package entity

import "strings"

// Outcome is the result of validating a submitted code.
type Outcome int

const (
	OutcomeAccepted Outcome = iota + 1
	OutcomeNoChallenge
	OutcomeMismatch
	OutcomeExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeNoChallenge:
		return "rejected_no_challenge"
	case OutcomeMismatch:
		return "rejected_mismatch"
	case OutcomeExpired:
		return "rejected_expired"
	default:
		return "unknown"
	}
}

// Channel is how the caller drives the flow.
type Channel int

const (
	// ChannelInteractive is a browser flow whose session spans both legs.
	ChannelInteractive Channel = iota + 1
	// ChannelNonInteractive is a stateless client; each call stands alone.
	ChannelNonInteractive
)

func (c Channel) String() string {
	switch c {
	case ChannelInteractive:
		return "interactive"
	case ChannelNonInteractive:
		return "non_interactive"
	default:
		return "unknown"
	}
}

// Requirement decides what a wrong code does to the flow.
type Requirement int

const (
	// RequirementRequired keeps the challenge so the user can retry until it expires.
	RequirementRequired Requirement = iota + 1
	// RequirementAlternative abandons the challenge on a wrong code and lets
	// the flow continue with another factor.
	RequirementAlternative
	// RequirementConditional behaves like RequirementAlternative.
	RequirementConditional
)

func (r Requirement) String() string {
	switch r {
	case RequirementRequired:
		return "required"
	case RequirementAlternative:
		return "alternative"
	case RequirementConditional:
		return "conditional"
	default:
		return "unknown"
	}
}

// Optional reports whether a failed or missing factor may be skipped.
func (r Requirement) Optional() bool {
	return r == RequirementAlternative || r == RequirementConditional
}

// ParseRequirement maps a config value; empty means required, anything
// unknown returns 0.
func ParseRequirement(s string) Requirement {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "required":
		return RequirementRequired
	case "alternative":
		return RequirementAlternative
	case "conditional":
		return RequirementConditional
	default:
		return 0
	}
}
