// Package authz implements the hierarchical access-control core: resolving
// any nested resource to its owning organization, evaluating the caller's
// membership role against a capability matrix, enforcing the data-protection
// and sign-off gate on destructive operations, and validating card
// assignments.
//
// The package holds no mutable state. All storage access goes through the
// narrow Store interfaces, so decisions are deterministic for a given store
// snapshot and safe to evaluate concurrently. Denials are returned as
// Decision values, never as errors; errors signal lookup failures or data
// corruption (dangling parent links), which must never be treated as Allow.
package authz
