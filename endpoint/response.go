package endpoint

import "time"

// Response is the envelope every successful response is wrapped in. At most
// one of Data and Auth is meaningful for a given request.
type Response[T any] struct {
	RequestID     string    `json:"request_id"`
	LeaseID       string    `json:"lease_id"`
	LeaseDuration int       `json:"lease_duration"`
	Renewable     bool      `json:"renewable"`
	Data          T         `json:"data"`
	Auth          *AuthInfo `json:"auth"`
	Warnings      []string  `json:"warnings"`
	MountType     string    `json:"mount_type"`
}

// LeaseTTL returns LeaseDuration as a time.Duration.
func (r *Response[T]) LeaseTTL() time.Duration {
	return time.Duration(r.LeaseDuration) * time.Second
}

// AuthInfo is the auth block returned by token-issuing and token-renewal
// endpoints.
type AuthInfo struct {
	ClientToken      string            `json:"client_token"`
	Accessor         string            `json:"accessor"`
	Policies         []string          `json:"policies"`
	TokenPolicies    []string          `json:"token_policies"`
	IdentityPolicies []string          `json:"identity_policies"`
	Metadata         map[string]string `json:"metadata"`
	LeaseDuration    int               `json:"lease_duration"`
	Renewable        bool              `json:"renewable"`
	EntityID         string            `json:"entity_id"`
	TokenType        string            `json:"token_type"`
	Orphan           bool              `json:"orphan"`
	NumUses          int               `json:"num_uses"`
}

// LeaseTTL returns LeaseDuration as a time.Duration.
func (a *AuthInfo) LeaseTTL() time.Duration {
	return time.Duration(a.LeaseDuration) * time.Second
}
