package navindex

// AccessChecker is the role-based visibility predicate owned by the host application.
type AccessChecker interface {
	CanAccessPath(role, path string) bool
	// Resolve maps a role to the role whose policy applies to it. Roles that
	// resolve to the same name share one index.
	Resolve(role string) string
}
