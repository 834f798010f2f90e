package formula

// HeadSpecification describes a formula's development source.
type HeadSpecification struct {
	URL string
	// Branch is empty when the head source tracks the remote default branch.
	Branch string
}

// HasExplicitBranch reports whether the head declares a branch.
func (specification HeadSpecification) HasExplicitBranch() bool {
	return len(specification.Branch) > 0
}

// Definition is a formula as seen by maintenance commands.
type Definition struct {
	Name string
	Path string
	Head *HeadSpecification
}
