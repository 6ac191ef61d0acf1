package repository

import (
	"github.com/coursehub/course-platform-api/internal/database"
	"github.com/coursehub/course-platform-api/internal/models"
	"github.com/coursehub/course-platform-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

// FindByID finds an organization by ID with its members loaded
func (r *GormOrganizationRepository) FindByID(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Preload("Members").First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindBySlug finds an organization by slug with members and events loaded
func (r *GormOrganizationRepository) FindBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Preload("Members").Preload("Events").
		Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// List retrieves a page of organizations with their members loaded
func (r *GormOrganizationRepository) List(params utils.PaginationParams) ([]models.Organization, int64, error) {
	var total int64
	if err := r.db.Model(&models.Organization{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orgs []models.Organization
	if err := r.db.Preload("Members").
		Order("organizations.name ASC").
		Scopes(database.Paginate(params)).
		Find(&orgs).Error; err != nil {
		return nil, 0, err
	}

	return orgs, total, nil
}

// Update updates an organization without touching its loaded associations
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Omit(clause.Associations).Save(org).Error
}

// Delete deletes an organization and all related data in a transaction
func (r *GormOrganizationRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Delete all events in the organization
		if err := tx.Where("organization_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return err
		}

		// Delete all members
		if err := tx.Where("organization_id = ?", id).Delete(&models.OrganizationMember{}).Error; err != nil {
			return err
		}

		// Delete organization
		if err := tx.Delete(&models.Organization{}, id).Error; err != nil {
			return err
		}

		return nil
	})
}

// AddMember adds a member to an organization
func (r *GormOrganizationRepository) AddMember(member *models.OrganizationMember) error {
	return r.db.Create(member).Error
}

// UpdateMember updates an existing membership row without touching its loaded
// associations
func (r *GormOrganizationRepository) UpdateMember(member *models.OrganizationMember) error {
	return r.db.Omit(clause.Associations).Save(member).Error
}

// RemoveMember removes a member from an organization
func (r *GormOrganizationRepository) RemoveMember(organizationID, userID uint64) error {
	return r.db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Delete(&models.OrganizationMember{}).Error
}

// FindMember finds a specific organization member
func (r *GormOrganizationRepository) FindMember(organizationID, userID uint64) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.Preload("User").Preload("Organization").Preload("Organization.Members").
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists members of an organization filtered by pending status
func (r *GormOrganizationRepository) ListMembers(organizationID uint64, pending bool) ([]models.OrganizationMember, error) {
	var members []models.OrganizationMember
	query := r.db.Preload("User").Where("organization_id = ?", organizationID)
	query = filterPending(query, pending)

	if err := query.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUser lists a user's memberships filtered by pending status
func (r *GormOrganizationRepository) ListMembershipsByUser(userID uint64, pending bool) ([]models.OrganizationMember, error) {
	var memberships []models.OrganizationMember
	query := r.db.Preload("Organization").Preload("Organization.Members").
		Where("user_id = ?", userID)
	query = filterPending(query, pending)

	if err := query.Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// filterPending restricts a membership query to pending rows when pending is
// true and to everything except pending rows otherwise
func filterPending(query *gorm.DB, pending bool) *gorm.DB {
	if pending {
		return query.Where("role = ?", models.RolePending)
	}
	return query.Where("role <> ?", models.RolePending)
}
