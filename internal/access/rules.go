// Package access decides which application paths a role may see.
package access

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Wildcard grants every path.
const Wildcard = "*"

// Policy lists path prefixes for one role. Deny wins over Allow.
type Policy struct {
	Allow []string `yaml:"allow" json:"allow"`
	Deny  []string `yaml:"deny" json:"deny,omitempty"`
}

// Rules maps roles to policies. Roles without a policy fall back to
// DefaultRole, and see nothing when that is unset too. Immutable after Parse.
type Rules struct {
	Roles       map[string]Policy `yaml:"roles" json:"roles"`
	DefaultRole string            `yaml:"default_role" json:"default_role,omitempty"`
}

// Parse decodes and validates YAML rules.
func Parse(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse access rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks that every prefix is absolute or the wildcard.
func (r *Rules) Validate() error {
	for _, role := range r.RoleNames() {
		p := r.Roles[role]
		for _, prefix := range append(append([]string{}, p.Allow...), p.Deny...) {
			if prefix != Wildcard && !strings.HasPrefix(prefix, "/") {
				return fmt.Errorf("access rules: role %q: prefix %q must start with /", role, prefix)
			}
		}
	}
	if r.DefaultRole != "" {
		if _, ok := r.Roles[r.DefaultRole]; !ok {
			return fmt.Errorf("access rules: default_role %q is not defined", r.DefaultRole)
		}
	}
	return nil
}

// RoleNames returns the configured roles sorted by name.
func (r *Rules) RoleNames() []string {
	names := make([]string, 0, len(r.Roles))
	for name := range r.Roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the role whose policy applies to role: role itself when
// defined, DefaultRole otherwise, and "" when neither has a policy.
func (r *Rules) Resolve(role string) string {
	if r == nil {
		return ""
	}
	if _, ok := r.Roles[role]; ok {
		return role
	}
	if _, ok := r.Roles[r.DefaultRole]; ok {
		return r.DefaultRole
	}
	return ""
}

// CanAccessPath reports whether role may open path. Query strings are ignored.
func (r *Rules) CanAccessPath(role, path string) bool {
	if r == nil {
		return false
	}
	p, ok := r.Roles[r.Resolve(role)]
	if !ok {
		return false
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if matchAny(p.Deny, path) {
		return false
	}
	return matchAny(p.Allow, path)
}

func matchAny(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		if matchPrefix(prefix, path) {
			return true
		}
	}
	return false
}

// matchPrefix matches whole path segments: "/repairs" covers "/repairs/7"
// but not "/repairs-archive". "/" only covers the root itself.
func matchPrefix(prefix, path string) bool {
	if prefix == Wildcard {
		return true
	}
	if prefix == "/" {
		return path == "/"
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// AllowAll returns rules granting every path to every role.
func AllowAll() *Rules {
	return &Rules{
		Roles:       map[string]Policy{Wildcard: {Allow: []string{Wildcard}}},
		DefaultRole: Wildcard,
	}
}
