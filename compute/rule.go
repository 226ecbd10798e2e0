package compute

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// A Rule describes a firewall rule for creation.
//
// Zero fields are omitted from the request body, leaving the handle's
// metadata (and the API's server-side defaults) in place.
type Rule struct {
	// Name of the rule. Usually left empty; the handle's name is used.
	Name string `json:"name,omitempty" validate:"omitempty,resourcename"`

	// Network the rule applies to, as a partial URL such as
	// global/networks/default.
	Network string `json:"network,omitempty"`

	Description string `json:"description,omitempty"`

	// SourceRanges are CIDR blocks the rule matches traffic from.
	SourceRanges []string `json:"sourceRanges,omitempty" validate:"omitempty,dive,cidr"`

	// SourceTags and TargetTags restrict the rule by instance tags.
	SourceTags []string `json:"sourceTags,omitempty"`
	TargetTags []string `json:"targetTags,omitempty"`

	// Allowed lists the protocol/port combinations the rule permits.
	Allowed []RulePorts `json:"allowed,omitempty" validate:"omitempty,dive"`

	// Denied lists the protocol/port combinations the rule blocks.
	Denied []RulePorts `json:"denied,omitempty" validate:"omitempty,dive"`
}

// RulePorts is one protocol entry within a rule.
type RulePorts struct {
	// IPProtocol is the protocol to match.
	IPProtocol string `json:"IPProtocol" validate:"required,oneof=tcp udp icmp esp ah sctp ipip all"`

	// Ports are the port numbers or ranges ("22", "8000-8080") to match.
	// Only meaningful for tcp, udp and sctp.
	Ports []string `json:"ports,omitempty"`
}

// toMap returns the rule as a generic body for merging with handle metadata.
func (r *Rule) toMap() (map[string]interface{}, error) {
	j, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "marshal rule")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(j, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal rule")
	}
	return m, nil
}
