package permissions

import (
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/coursehub/course-platform-api/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrPermissionDenied is returned by Enforce when the subject is not allowed
// to perform the requested action on the resource.
var ErrPermissionDenied = errors.New("permission denied")

// AdminRole is granted every action on every resource.
const AdminRole = "role:admin"

// Actions are dotted names such as "organization.create"; resources are
// hierarchical paths such as "organization" or "organization/{slug}".
// Policy patterns may end in "*" to cover a whole subtree, so a grant on
// "organization*" covers every organization-scoped resource.
const modelText = `
[request_definition]
r = sub, act, res

[policy_definition]
p = sub, act, res

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.act, p.act) && keyMatch(r.res, p.res)
`

// Service answers allow/deny questions for a subject, an action name, and a
// resource path. Backed by an in-memory Casbin enforcer; an optional CSV
// policy file can seed persistent grants.
type Service struct {
	enforcer *casbin.Enforcer
	logger   *logrus.Entry
}

// NewService constructs a Service. policyPath may be empty, in which case all
// policies are managed through Grant/GrantRole.
func NewService(policyPath string) (*Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("permissions: failed to build model: %w", err)
	}

	var enforcer *casbin.Enforcer
	if policyPath != "" {
		enforcer, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		enforcer, err = casbin.NewEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("permissions: failed to initialize enforcer: %w", err)
	}

	// Admin role always holds every permission.
	if _, err := enforcer.AddPolicy(AdminRole, "*", "*"); err != nil {
		return nil, fmt.Errorf("permissions: failed to seed admin policy: %w", err)
	}

	return &Service{
		enforcer: enforcer,
		logger:   logrus.WithField("component", "permissions"),
	}, nil
}

// Check reports whether the subject may perform action on resource.
// A nil subject is never allowed.
func (s *Service) Check(subject *models.User, action, resource string) bool {
	if subject == nil {
		return false
	}

	allowed, err := s.enforcer.Enforce(subjectKey(subject.ID), action, resource)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"subject":  subject.ID,
			"action":   action,
			"resource": resource,
		}).Error("permission check failed")
		return false
	}
	return allowed
}

// Enforce returns ErrPermissionDenied when Check is false.
func (s *Service) Enforce(subject *models.User, action, resource string) error {
	if s.Check(subject, action, resource) {
		return nil
	}

	fields := logrus.Fields{
		"action":   action,
		"resource": resource,
	}
	if subject != nil {
		fields["subject"] = subject.ID
	}
	s.logger.WithFields(fields).Warn("permission denied")

	return fmt.Errorf("%w: %s on %s", ErrPermissionDenied, action, resource)
}

// Grant allows the user to perform action on resource. Both action and
// resource may be patterns ending in "*".
func (s *Service) Grant(userID uint64, action, resource string) error {
	if _, err := s.enforcer.AddPolicy(subjectKey(userID), action, resource); err != nil {
		return fmt.Errorf("permissions: failed to add policy: %w", err)
	}
	return nil
}

// Revoke removes a previously granted policy.
func (s *Service) Revoke(userID uint64, action, resource string) error {
	if _, err := s.enforcer.RemovePolicy(subjectKey(userID), action, resource); err != nil {
		return fmt.Errorf("permissions: failed to remove policy: %w", err)
	}
	return nil
}

// GrantRole assigns a role, such as AdminRole, to the user.
func (s *Service) GrantRole(userID uint64, role string) error {
	if _, err := s.enforcer.AddGroupingPolicy(subjectKey(userID), role); err != nil {
		return fmt.Errorf("permissions: failed to assign role: %w", err)
	}
	return nil
}

func subjectKey(userID uint64) string {
	return fmt.Sprintf("user:%d", userID)
}
