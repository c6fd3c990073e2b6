package token

import "time"

// LookupResponse is the data returned by the lookup endpoints.
type LookupResponse struct {
	Accessor         string            `json:"accessor"`
	CreationTime     int64             `json:"creation_time"`
	CreationTTL      int64             `json:"creation_ttl"`
	DisplayName      string            `json:"display_name"`
	EntityID         string            `json:"entity_id"`
	ExpireTime       *time.Time        `json:"expire_time"`
	ExplicitMaxTTL   int64             `json:"explicit_max_ttl"`
	ID               string            `json:"id"`
	IdentityPolicies []string          `json:"identity_policies"`
	IssueTime        *time.Time        `json:"issue_time"`
	Meta             map[string]string `json:"meta"`
	NumUses          int               `json:"num_uses"`
	Orphan           bool              `json:"orphan"`
	Path             string            `json:"path"`
	Policies         []string          `json:"policies"`
	Renewable        bool              `json:"renewable"`
	TTL              int64             `json:"ttl"`
	Type             string            `json:"type"`
}

// Remaining returns the token's remaining lifetime. Zero means it never
// expires (root tokens).
func (r *LookupResponse) Remaining() time.Duration {
	return time.Duration(r.TTL) * time.Second
}
