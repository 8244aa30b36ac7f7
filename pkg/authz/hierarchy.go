package authz

import "context"

// ParentLookup resolves a resource's immediate parent reference. The second
// return value is false when the resource or its parent link does not exist.
type ParentLookup interface {
	ResourceParent(ctx context.Context, ref ResourceRef) (ResourceRef, bool, error)
}

// The schema is four levels deep below the organization; anything longer
// means the containment tree has been corrupted into a cycle.
const maxTraversalSteps = 8

// Resolver walks a resource's parent chain up to the owning organization.
type Resolver struct {
	parents ParentLookup
}

// NewResolver returns a resolver backed by the given parent lookup.
func NewResolver(parents ParentLookup) *Resolver {
	return &Resolver{parents: parents}
}

// ResolveOrganization returns the identifier of the organization that
// ultimately owns ref. A missing link anywhere in the chain yields
// ErrDanglingReference; a walk longer than the schema depth yields
// ErrHierarchyDepth. Neither is ever treated as an allow.
func (r *Resolver) ResolveOrganization(ctx context.Context, ref ResourceRef) (string, error) {
	if ref.Type == ResourceOrganization {
		return ref.ID, nil
	}

	current := ref
	for step := 0; step < maxTraversalSteps; step++ {
		parent, ok, err := r.parents.ResourceParent(ctx, current)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", danglingErr(current)
		}
		if parent.Type == ResourceOrganization {
			return parent.ID, nil
		}
		current = parent
	}
	return "", ErrHierarchyDepth
}
