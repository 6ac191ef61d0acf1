package repository

import (
	"github.com/coursehub/course-platform-api/internal/models"
	"github.com/coursehub/course-platform-api/internal/utils"
)

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID with its members loaded
	FindByID(id uint64) (*models.Organization, error)

	// FindBySlug finds an organization by slug with members and events loaded
	FindBySlug(slug string) (*models.Organization, error)

	// List retrieves a page of organizations with their members loaded,
	// along with the total organization count
	List(params utils.PaginationParams) ([]models.Organization, int64, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// Delete deletes an organization and all related data
	Delete(id uint64) error

	// AddMember adds a member to an organization
	AddMember(member *models.OrganizationMember) error

	// UpdateMember updates an existing membership row
	UpdateMember(member *models.OrganizationMember) error

	// RemoveMember removes a member from an organization
	RemoveMember(organizationID, userID uint64) error

	// FindMember finds a specific organization member with user and
	// organization loaded
	FindMember(organizationID, userID uint64) (*models.OrganizationMember, error)

	// ListMembers lists members of an organization, restricted to pending
	// members when pending is true and to non-pending members otherwise
	ListMembers(organizationID uint64, pending bool) ([]models.OrganizationMember, error)

	// ListMembershipsByUser lists a user's memberships with organizations
	// loaded, filtered by the same pending rule as ListMembers
	ListMembershipsByUser(userID uint64, pending bool) ([]models.OrganizationMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
