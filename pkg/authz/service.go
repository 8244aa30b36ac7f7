package authz

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"worksphere-backend/pkg/models"
)

// Store bundles the collaborator reads the core depends on. The database
// layer satisfies it directly.
type Store interface {
	MembershipStore
	ParentLookup
	FlagsSource
}

// Service is the facade the endpoint handlers call. It owns the engine, the
// protection gate and the assignment validator, wired over one store.
type Service struct {
	engine    *Engine
	gate      *Gate
	validator *AssignmentValidator
	log       *logrus.Logger
}

// NewService builds a service with the default capability matrix.
func NewService(store Store, log *logrus.Logger) *Service {
	return NewServiceWithMatrix(store, DefaultMatrix(), log)
}

// NewServiceWithMatrix builds a service with an injected matrix, which tests
// and future per-deployment configuration use.
func NewServiceWithMatrix(store Store, matrix CapabilityMatrix, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		engine:    NewEngine(store, NewResolver(store), matrix),
		gate:      NewGate(store),
		validator: NewAssignmentValidator(store, matrix),
		log:       log,
	}
}

// Authorize runs the role check for (caller, resource, action). Hierarchy
// corruption is logged distinctly before the error is returned: a dangling
// link is a data-integrity bug, not a user-facing denial.
func (s *Service) Authorize(ctx context.Context, callerID string, ref ResourceRef, action Action) (Decision, error) {
	decision, err := s.engine.Authorize(ctx, callerID, ref, action)
	if err != nil {
		s.logHierarchyError(err, ref, action)
		return Decision{}, err
	}
	return decision, nil
}

// CheckProtection evaluates the protection gate for an already-authorized
// action. It can only narrow an allow into a deny.
func (s *Service) CheckProtection(ctx context.Context, role models.OrgMemberRole, projectID string, action Action, updateFields []string) (Decision, error) {
	decision, err := s.gate.Check(ctx, role, projectID, action, updateFields)
	if err != nil {
		s.logHierarchyError(err, ResourceRef{Type: ResourceProject, ID: projectID}, action)
		return Decision{}, err
	}
	return decision, nil
}

// ValidateAssignment checks a card assignment target set against the owning
// organization's membership.
func (s *Service) ValidateAssignment(ctx context.Context, callerID, orgID string, targetUserIDs []string) (AssignmentResult, error) {
	return s.validator.Validate(ctx, callerID, orgID, targetUserIDs)
}

// Matrix exposes the capability table for delegation checks in handlers.
func (s *Service) Matrix() CapabilityMatrix {
	return s.engine.matrix
}

func (s *Service) logHierarchyError(err error, ref ResourceRef, action Action) {
	if errors.Is(err, ErrDanglingReference) || errors.Is(err, ErrHierarchyDepth) {
		s.log.WithFields(logrus.Fields{
			"resource": ref.String(),
			"action":   string(action),
			"error":    err.Error(),
		}).Error("hierarchy link missing or corrupted")
	}
}
