package permissions

import (
	"fmt"
	"sort"
	"strings"
)

// Capability is one atomic named permission against the Panther API, matching
// the permission identifiers attached to Panther API tokens. Capabilities are
// opaque and compared by value only.
type Capability string

const (
	AlertRead         Capability = "AlertRead"
	AlertModify       Capability = "AlertModify"
	RuleRead          Capability = "RuleRead"
	RuleModify        Capability = "RuleModify"
	UserRead          Capability = "UserRead"
	LogSourceRead     Capability = "LogSourceRead"
	DataAnalyticsRead Capability = "DataAnalyticsRead"
)

// known is the closed set of capabilities this server understands. Unknown
// names supplied by configuration fail at startup, not per call.
var known = map[Capability]struct{}{
	AlertRead:         {},
	AlertModify:       {},
	RuleRead:          {},
	RuleModify:        {},
	UserRead:          {},
	LogSourceRead:     {},
	DataAnalyticsRead: {},
}

// Requirement is a conjunction of capabilities: all members must be granted
// for an operation to run. The empty requirement authorizes everything.
type Requirement map[Capability]struct{}

// AllOf builds a Requirement from the given capabilities. Duplicates
// collapse; ordering is irrelevant.
func AllOf(caps ...Capability) Requirement {
	req := make(Requirement, len(caps))
	for _, c := range caps {
		req[c] = struct{}{}
	}
	return req
}

// Authorize reports whether every required capability is present in the
// granted set. An empty requirement always authorizes.
func (r Requirement) Authorize(granted Set) bool {
	for c := range r {
		if _, ok := granted[c]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the required capabilities absent from the granted set, in
// sorted order for stable messages.
func (r Requirement) Missing(granted Set) []Capability {
	var missing []Capability
	for c := range r {
		if _, ok := granted[c]; !ok {
			missing = append(missing, c)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// List returns the requirement's members in sorted order for display.
func (r Requirement) List() []Capability {
	caps := make([]Capability, 0, len(r))
	for c := range r {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// String renders the requirement as a comma-separated list.
func (r Requirement) String() string {
	names := make([]string, 0, len(r))
	for _, c := range r.List() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// Set is a collection of capabilities granted to an actor.
type Set map[Capability]struct{}

// NewSet builds a Set from the given capabilities.
func NewSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// All returns a set holding every capability this server understands. Used
// as the default grant when configuration does not restrict permissions.
func All() Set {
	s := make(Set, len(known))
	for c := range known {
		s[c] = struct{}{}
	}
	return s
}

// Parse validates configured capability names and builds the granted set. An
// unknown name is a configuration error and must abort startup.
func Parse(names []string) (Set, error) {
	s := make(Set, len(names))
	for _, name := range names {
		c := Capability(strings.TrimSpace(name))
		if c == "" {
			continue
		}
		if _, ok := known[c]; !ok {
			return nil, fmt.Errorf("unknown permission %q", name)
		}
		s[c] = struct{}{}
	}
	return s, nil
}
