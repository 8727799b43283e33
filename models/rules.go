package models

import "runtime"

const (
	ActionAllow    = "allow"
	ActionDisallow = "disallow"
)

// Rule is a conditional inclusion clause keyed on the host platform.
type Rule struct {
	Action string  `json:"action"`
	OS     *OSRule `json:"os,omitempty"`
}

type OSRule struct {
	Name string `json:"name,omitempty"`
}

// Platform returns the rule platform name of the running host.
func Platform() string {
	return runtime.GOOS
}

func (r Rule) matches(platform string) bool {
	if r.OS == nil || r.OS.Name == "" {
		return false
	}
	name := r.OS.Name
	if name == "osx" {
		name = "darwin"
	}
	return name == platform
}

// Included reports whether an artifact guarded by rules applies to platform.
//
// Rules are applied in order and the last applicable rule wins. An allow
// rule scoped to another platform resets the result to false even when an
// earlier rule allowed the artifact; descriptors in the wild rely on this,
// so it is kept as is. A disallow rule without an os clause is ignored.
//
// Descriptors name macOS "osx", which is matched against darwin hosts.
// Launchers that compare names literally never match it and pull a
// different library set on macOS; any other unknown name fails the match.
func Included(rules []Rule, platform string) bool {
	if len(rules) == 0 {
		return true
	}
	allow := false
	for _, r := range rules {
		switch r.Action {
		case ActionAllow:
			if r.OS == nil {
				allow = true
				continue
			}
			allow = r.matches(platform)
		case ActionDisallow:
			if r.matches(platform) {
				allow = false
			}
		}
	}
	return allow
}
