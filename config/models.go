package config

import "github.com/fwctl/fwctl/compute"

// A Root is the root structure of a firewall configuration directory.
type Root struct {
	// Project the rules belong to. Optional; the CLI flag wins when both
	// are set.
	Project string `hcl:"project,optional"`

	// Firewalls are the declared firewall rules.
	Firewalls []Firewall `hcl:"firewall,block"`
}

// Firewall is one declared firewall rule.
type Firewall struct {
	// Name is the rule name, unique within the project.
	Name string `hcl:"name,label"`

	// Network the rule applies to. Empty means the default network.
	Network string `hcl:"network,optional"`

	Description string `hcl:"description,optional"`

	SourceRanges []string `hcl:"source_ranges,optional"`
	SourceTags   []string `hcl:"source_tags,optional"`
	TargetTags   []string `hcl:"target_tags,optional"`

	Allow []Ports `hcl:"allow,block"`
	Deny  []Ports `hcl:"deny,block"`
}

// Ports is one protocol/ports entry in an allow or deny block.
type Ports struct {
	Protocol string   `hcl:"protocol"`
	Ports    []string `hcl:"ports,optional"`
}

// Rule converts the declared firewall into a rule for creation.
func (f Firewall) Rule() *compute.Rule {
	rule := &compute.Rule{
		Network:      f.Network,
		Description:  f.Description,
		SourceRanges: f.SourceRanges,
		SourceTags:   f.SourceTags,
		TargetTags:   f.TargetTags,
	}
	for _, a := range f.Allow {
		rule.Allowed = append(rule.Allowed, compute.RulePorts{IPProtocol: a.Protocol, Ports: a.Ports})
	}
	for _, d := range f.Deny {
		rule.Denied = append(rule.Denied, compute.RulePorts{IPProtocol: d.Protocol, Ports: d.Ports})
	}
	return rule
}

// Metadata returns the declared firewall as a metadata mapping, suitable for
// patching an existing rule with the full declared state.
func (f Firewall) Metadata() map[string]interface{} {
	md := map[string]interface{}{}
	if f.Network != "" {
		md["network"] = f.Network
	}
	if f.Description != "" {
		md["description"] = f.Description
	}
	if len(f.SourceRanges) > 0 {
		md["sourceRanges"] = f.SourceRanges
	}
	if len(f.SourceTags) > 0 {
		md["sourceTags"] = f.SourceTags
	}
	if len(f.TargetTags) > 0 {
		md["targetTags"] = f.TargetTags
	}
	if len(f.Allow) > 0 {
		md["allowed"] = portList(f.Allow)
	}
	if len(f.Deny) > 0 {
		md["denied"] = portList(f.Deny)
	}
	return md
}

func portList(entries []Ports) []map[string]interface{} {
	out := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		p := map[string]interface{}{"IPProtocol": e.Protocol}
		if len(e.Ports) > 0 {
			p["ports"] = e.Ports
		}
		out[i] = p
	}
	return out
}
