package rawdata

import "strings"

// ExternalProp is one proposition quote as delivered by a provider, before any
// normalization. Its only identity is (ProviderName, ProviderPropID).
type ExternalProp struct {
	ExternalPlayerID string   `json:"external_player_id" yaml:"external_player_id"`
	PlayerName       string   `json:"player_name" yaml:"player_name"`
	TeamCode         string   `json:"team" yaml:"team"`
	PropCategory     string   `json:"prop_category" yaml:"prop_category"`
	OfferedLine      float64  `json:"line" yaml:"line"`
	ProviderPropID   string   `json:"provider_prop_id" yaml:"provider_prop_id"`
	PayoutType       string   `json:"payout_type" yaml:"payout_type"`
	OverOdds         *float64 `json:"over_odds,omitempty" yaml:"over_odds,omitempty"`
	UnderOdds        *float64 `json:"under_odds,omitempty" yaml:"under_odds,omitempty"`
	UpdatedAt        string   `json:"updated_at" yaml:"updated_at"`
	ProviderName     string   `json:"provider_name" yaml:"provider_name"`
	Sport            string   `json:"sport,omitempty" yaml:"sport,omitempty"`
	Extras           Extras   `json:"additional_data,omitempty" yaml:"additional_data,omitempty"`
}

// Key returns the provider-scoped identity used in diagnostics.
func (p ExternalProp) Key() string {
	return strings.TrimSpace(p.ProviderName) + ":" + strings.TrimSpace(p.ProviderPropID)
}
