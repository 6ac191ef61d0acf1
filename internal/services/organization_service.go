package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coursehub/course-platform-api/internal/dto"
	"github.com/coursehub/course-platform-api/internal/models"
	"github.com/coursehub/course-platform-api/internal/permissions"
	"github.com/coursehub/course-platform-api/internal/repository"
	"github.com/coursehub/course-platform-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrOrganizationMemberNotFound = errors.New("organization member not found")
	ErrOrganizationClosed         = errors.New("organization is closed to new members")
	ErrInvalidOrganization        = errors.New("organization name and slug are required")
)

// OrganizationService provides business logic for organizations and their
// membership rosters, combining the generic permission evaluator with
// role-based membership checks.
type OrganizationService struct {
	orgRepo repository.OrganizationRepository
	perms   *permissions.Service
	clock   Clock
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, perms *permissions.Service, clock Clock) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
		perms:   perms,
		clock:   clock,
	}
}

// All returns every organization stamped with membership info relative to
// viewer. World-readable: no permission check.
func (s *OrganizationService) All(viewer *models.User, params utils.PaginationParams) ([]dto.OrganizationDTO, int64, error) {
	orgs, total, err := s.orgRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}

	views := make([]dto.OrganizationDTO, len(orgs))
	for i, org := range orgs {
		views[i] = dto.ToOrganizationDTO(org, viewer)
	}
	return views, total, nil
}

// GetBySlug returns the detailed organization view, including its events.
// World-readable: no permission check.
func (s *OrganizationService) GetBySlug(slug string, viewer *models.User) (*dto.OrganizationDetailDTO, error) {
	org, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}

	view := dto.ToOrganizationDetailDTO(*org, viewer)
	return &view, nil
}

// Create persists a new organization. Requires the global organization.create
// permission. Any id carried by the input is discarded so creation can never
// overwrite an existing row.
func (s *OrganizationService) Create(subject *models.User, input *models.Organization) (*dto.OrganizationDTO, error) {
	if err := s.perms.Enforce(subject, "organization.create", "organization"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Slug) == "" {
		return nil, ErrInvalidOrganization
	}

	// The store assigns the id.
	input.ID = 0

	if err := s.orgRepo.Create(input); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	view := dto.ToOrganizationDTO(*input, subject)
	return &view, nil
}

// Update overwrites every mutable field of the organization referenced by the
// input's id. Requires the leader-or-admin check against the target row.
func (s *OrganizationService) Update(subject *models.User, input *models.Organization) (*dto.OrganizationDTO, error) {
	existing, err := s.orgRepo.FindByID(input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if err := s.EnforceOrgMemberPerms(subject, existing); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Slug) == "" {
		return nil, ErrInvalidOrganization
	}

	existing.Name = input.Name
	existing.Shorthand = input.Shorthand
	existing.Slug = input.Slug
	existing.Logo = input.Logo
	existing.ShortDescription = input.ShortDescription
	existing.LongDescription = input.LongDescription
	existing.JoinDescription = input.JoinDescription
	existing.Website = input.Website
	existing.Email = input.Email
	existing.Instagram = input.Instagram
	existing.LinkedIn = input.LinkedIn
	existing.YouTube = input.YouTube
	existing.HeelLife = input.HeelLife
	existing.ApplicationLink = input.ApplicationLink
	existing.Public = input.Public
	existing.Status = input.Status

	if err := s.orgRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	view := dto.ToOrganizationDTO(*existing, subject)
	return &view, nil
}

// Delete removes the organization with the given slug, cascading to its
// events and memberships. Requires the global organization.delete permission,
// which is stricter than the leader-or-admin check used for updates.
func (s *OrganizationService) Delete(subject *models.User, slug string) error {
	if err := s.perms.Enforce(subject, "organization.delete", "organization"); err != nil {
		return err
	}

	org, err := s.findBySlug(slug)
	if err != nil {
		return err
	}

	if err := s.orgRepo.Delete(org.ID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

// CheckOrgMemberPerms reports whether the user may manage the organization's
// roster: either the organization.update permission scoped to this
// organization, or an existing membership with the LEADER role.
func (s *OrganizationService) CheckOrgMemberPerms(user *models.User, org *models.Organization) bool {
	if user == nil {
		return false
	}

	if s.perms.Check(user, "organization.update", "organization/"+org.Slug) {
		return true
	}

	member, err := s.orgRepo.FindMember(org.ID, user.ID)
	return err == nil && member.Role == models.RoleLeader
}

// EnforceOrgMemberPerms returns a permission error when CheckOrgMemberPerms
// is false.
func (s *OrganizationService) EnforceOrgMemberPerms(user *models.User, org *models.Organization) error {
	if !s.CheckOrgMemberPerms(user, org) {
		return fmt.Errorf("%w: organization.update on organization/%s", permissions.ErrPermissionDenied, org.Slug)
	}
	return nil
}

// AddMember joins target to the organization. A user may always add themself;
// adding someone else requires the leader-or-admin check. Joining twice is
// idempotent and returns the existing membership. The new member's role
// follows the organization's status: OPEN organizations grant MEMBER,
// application-based organizations grant PENDING, closed organizations reject
// the join.
func (s *OrganizationService) AddMember(subject, target *models.User, slug string) (*dto.MemberDTO, error) {
	org, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}

	if subject.ID != target.ID {
		if err := s.EnforceOrgMemberPerms(subject, org); err != nil {
			return nil, err
		}
	}

	if existing, err := s.orgRepo.FindMember(org.ID, target.ID); err == nil {
		view := dto.ToMemberDTO(*existing)
		return &view, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	var role models.MemberRole
	switch org.Status {
	case models.StatusOpen:
		role = models.RoleMember
	case models.StatusApplicationBased:
		role = models.RolePending
	default:
		return nil, ErrOrganizationClosed
	}

	now := s.clock.Now()
	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         target.ID,
		Role:           role,
		Title:          "Member",
		Year:           now.Year(),
		Semester:       models.SemesterFor(now),
	}

	// The composite primary key on (organization_id, user_id) is the
	// authoritative guard against concurrent duplicate joins.
	if err := s.orgRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	member.User = *target
	view := dto.ToMemberDTO(*member)
	return &view, nil
}

// UpdateMemberInput identifies a membership row and carries the requested
// role and title.
type UpdateMemberInput struct {
	OrganizationID uint64
	UserID         uint64
	Role           models.MemberRole
	Title          string
}

// UpdateMember overwrites a membership's title and role. Requires the
// leader-or-admin check; promoting to or demoting from LEADER additionally
// requires the organization.update permission itself, so leaders alone
// cannot change other leaders.
func (s *OrganizationService) UpdateMember(subject *models.User, input UpdateMemberInput) (*dto.OrganizationMemberDTO, error) {
	org, err := s.orgRepo.FindByID(input.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if err := s.EnforceOrgMemberPerms(subject, org); err != nil {
		return nil, err
	}

	existing, err := s.orgRepo.FindMember(input.OrganizationID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationMemberNotFound
		}
		return nil, fmt.Errorf("failed to find organization member: %w", err)
	}

	if existing.Role == models.RoleLeader || input.Role == models.RoleLeader {
		if err := s.perms.Enforce(subject, "organization.update", "organization/"+org.Slug); err != nil {
			return nil, err
		}
	}

	existing.Title = input.Title
	existing.Role = input.Role

	if err := s.orgRepo.UpdateMember(existing); err != nil {
		return nil, fmt.Errorf("failed to update organization member: %w", err)
	}

	view := dto.ToOrganizationMemberDTO(*existing, subject)
	return &view, nil
}

// DeleteMember removes target's membership. A member may always remove
// themself; removing someone else requires the leader-or-admin check, and
// removing a LEADER additionally requires the organization.update permission
// itself.
func (s *OrganizationService) DeleteMember(subject, target *models.User, slug string) error {
	org, err := s.findBySlug(slug)
	if err != nil {
		return err
	}

	if subject.ID != target.ID {
		if err := s.EnforceOrgMemberPerms(subject, org); err != nil {
			return err
		}
	}

	member, err := s.orgRepo.FindMember(org.ID, target.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationMemberNotFound
		}
		return fmt.Errorf("failed to find organization member: %w", err)
	}

	if subject.ID != target.ID && member.Role == models.RoleLeader {
		if err := s.perms.Enforce(subject, "organization.update", "organization/"+org.Slug); err != nil {
			return err
		}
	}

	if err := s.orgRepo.RemoveMember(org.ID, target.ID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// GetMembers returns the flat view of the organization's roster, restricted
// to pending members when pending is true and to everyone else otherwise.
// Requires the leader-or-admin check.
func (s *OrganizationService) GetMembers(subject *models.User, slug string, pending bool) ([]dto.MemberDTO, error) {
	org, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}

	if err := s.EnforceOrgMemberPerms(subject, org); err != nil {
		return nil, err
	}

	members, err := s.orgRepo.ListMembers(org.ID, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	views := make([]dto.MemberDTO, len(members))
	for i, member := range members {
		views[i] = dto.ToMemberDTO(member)
	}
	return views, nil
}

// GetOrganizationsFromMember returns the organization view for each of
// target's memberships, filtered by the pending rule. Acting on another user
// requires the user.update permission for that user. Derived fields such as
// is_member describe the requesting subject, like every other read.
func (s *OrganizationService) GetOrganizationsFromMember(subject, target *models.User, pending bool) ([]dto.OrganizationDTO, error) {
	if subject.ID != target.ID {
		if err := s.perms.Enforce(subject, "user.update", fmt.Sprintf("user/%d", target.ID)); err != nil {
			return nil, err
		}
	}

	memberships, err := s.orgRepo.ListMembershipsByUser(target.ID, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	views := make([]dto.OrganizationDTO, len(memberships))
	for i, membership := range memberships {
		views[i] = dto.ToOrganizationDTO(membership.Organization, subject)
	}
	return views, nil
}

// GetMember returns the full membership view for (organization, target), or
// nil when no membership exists. No permission gate beyond what callers
// impose.
func (s *OrganizationService) GetMember(subject, target *models.User, slug string) (*dto.OrganizationMemberDTO, error) {
	org, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}

	member, err := s.orgRepo.FindMember(org.ID, target.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find organization member: %w", err)
	}

	view := dto.ToOrganizationMemberDTO(*member, subject)
	return &view, nil
}

// GetMemberForStatus returns the flat membership view for (organization,
// target), or nil when no membership exists. Used by the frontend status
// widget.
func (s *OrganizationService) GetMemberForStatus(target *models.User, slug string) (*dto.MemberDTO, error) {
	org, err := s.findBySlug(slug)
	if err != nil {
		return nil, err
	}

	member, err := s.orgRepo.FindMember(org.ID, target.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find organization member: %w", err)
	}

	view := dto.ToMemberDTO(*member)
	return &view, nil
}

func (s *OrganizationService) findBySlug(slug string) (*models.Organization, error) {
	org, err := s.orgRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}
