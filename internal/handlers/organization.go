package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apierrors "github.com/coursehub/course-platform-api/internal/errors"
	"github.com/coursehub/course-platform-api/internal/middleware"
	"github.com/coursehub/course-platform-api/internal/models"
	"github.com/coursehub/course-platform-api/internal/permissions"
	"github.com/coursehub/course-platform-api/internal/services"
	"github.com/coursehub/course-platform-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler coordinates organization and membership HTTP handlers.
type OrganizationHandler struct {
	orgService  *services.OrganizationService
	userService *services.UserService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService, userService *services.UserService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:  orgService,
		userService: userService,
	}
}

// OrganizationRequest is the request body for creating or updating an
// organization. The id is only meaningful on update.
type OrganizationRequest struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name" binding:"required"`
	Shorthand        string `json:"shorthand"`
	Slug             string `json:"slug" binding:"required"`
	Logo             string `json:"logo"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	JoinDescription  string `json:"join_description"`
	Website          string `json:"website"`
	Email            string `json:"email"`
	Instagram        string `json:"instagram"`
	LinkedIn         string `json:"linked_in"`
	YouTube          string `json:"youtube"`
	HeelLife         string `json:"heel_life"`
	ApplicationLink  string `json:"application_link"`
	Public           bool   `json:"public"`
	Status           string `json:"status" binding:"omitempty,oneof=OPEN APPLICATION_BASED CLOSED"`
}

func (req OrganizationRequest) toModel() *models.Organization {
	status := models.OrganizationStatus(req.Status)
	if req.Status == "" {
		status = models.StatusOpen
	}

	return &models.Organization{
		ID:               req.ID,
		Name:             req.Name,
		Shorthand:        req.Shorthand,
		Slug:             req.Slug,
		Logo:             req.Logo,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		JoinDescription:  req.JoinDescription,
		Website:          req.Website,
		Email:            req.Email,
		Instagram:        req.Instagram,
		LinkedIn:         req.LinkedIn,
		YouTube:          req.YouTube,
		HeelLife:         req.HeelLife,
		ApplicationLink:  req.ApplicationLink,
		Public:           req.Public,
		Status:           status,
	}
}

// ListOrganizations returns every organization. World-readable; membership
// fields reflect the viewer when a session exists.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	viewer := h.optionalUser(c)
	params := utils.GetPaginationParams(c)

	orgs, total, err := h.orgService.All(viewer, params)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetOrganization returns the detailed view for the organization with the
// given slug.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	viewer := h.optionalUser(c)

	org, err := h.orgService.GetBySlug(c.Param("slug"), viewer)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// CreateOrganization creates a new organization.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.Create(subject, req.toModel())
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

// UpdateOrganization overwrites the organization referenced by the body's id.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.ID == 0 {
		apierrors.BadRequest(c, "Organization id is required")
		return
	}

	org, err := h.orgService.Update(subject, req.toModel())
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// DeleteOrganization deletes the organization with the given slug.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.orgService.Delete(subject, c.Param("slug")); err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Organization deleted successfully",
	})
}

// GetMembers returns the organization's roster, filtered by the pending
// query parameter.
func (h *OrganizationHandler) GetMembers(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	pending, ok := pendingParam(c)
	if !ok {
		return
	}

	members, err := h.orgService.GetMembers(subject, c.Param("slug"), pending)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": members,
	})
}

// AddMember joins the target user to the organization. Without a user_id
// query parameter the caller joins themself.
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	target, ok := h.resolveTarget(c, subject)
	if !ok {
		return
	}

	member, err := h.orgService.AddMember(subject, target, c.Param("slug"))
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// RemoveMember removes the target user from the organization. Without a
// user_id query parameter the caller leaves themself.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	target, ok := h.resolveTarget(c, subject)
	if !ok {
		return
	}

	if err := h.orgService.DeleteMember(subject, target, c.Param("slug")); err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// UpdateMember overwrites a membership's role and title.
func (h *OrganizationHandler) UpdateMember(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	type UpdateMemberRequest struct {
		OrganizationID uint64 `json:"organization_id" binding:"required"`
		UserID         uint64 `json:"user_id" binding:"required"`
		Role           string `json:"role" binding:"required,oneof=MEMBER LEADER PENDING"`
		Title          string `json:"title" binding:"required"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.orgService.UpdateMember(subject, services.UpdateMemberInput{
		OrganizationID: req.OrganizationID,
		UserID:         req.UserID,
		Role:           models.MemberRole(req.Role),
		Title:          req.Title,
	})
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// GetMember returns the full membership view for the target user, or null
// when no membership exists.
func (h *OrganizationHandler) GetMember(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	target, ok := h.resolveTarget(c, subject)
	if !ok {
		return
	}

	member, err := h.orgService.GetMember(subject, target, c.Param("slug"))
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// GetMemberStatus returns the flat membership view for the target user, or
// null when no membership exists.
func (h *OrganizationHandler) GetMemberStatus(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	target, ok := h.resolveTarget(c, subject)
	if !ok {
		return
	}

	member, err := h.orgService.GetMemberForStatus(target, c.Param("slug"))
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// GetUserMemberships returns the organizations the target user belongs to,
// filtered by the pending query parameter.
func (h *OrganizationHandler) GetUserMemberships(c *gin.Context) {
	subject, ok := h.currentUser(c)
	if !ok {
		return
	}

	target, ok := h.resolveTarget(c, subject)
	if !ok {
		return
	}

	pending, ok := pendingParam(c)
	if !ok {
		return
	}

	orgs, err := h.orgService.GetOrganizationsFromMember(subject, target, pending)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
	})
}

// currentUser loads the authenticated user, responding 401 when the session
// is missing or stale.
func (h *OrganizationHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return nil, false
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		apierrors.Unauthorized(c, "Unknown user")
		return nil, false
	}

	return user, true
}

// optionalUser loads the session user when one exists. Returns nil for
// anonymous viewers.
func (h *OrganizationHandler) optionalUser(c *gin.Context) *models.User {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		return nil
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		return nil
	}
	return user
}

// resolveTarget resolves the optional user_id query parameter. Absence means
// the caller acts on themself.
func (h *OrganizationHandler) resolveTarget(c *gin.Context, subject *models.User) (*models.User, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		return subject, true
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user id")
		return nil, false
	}
	if id == subject.ID {
		return subject, true
	}

	target, err := h.userService.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, err.Error())
		} else {
			apierrors.InternalError(c, "")
		}
		return nil, false
	}

	return target, true
}

func pendingParam(c *gin.Context) (bool, bool) {
	pending, err := strconv.ParseBool(c.DefaultQuery("pending", "false"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid pending parameter")
		return false, false
	}
	return pending, true
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrOrganizationMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, permissions.ErrPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrOrganizationClosed):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidOrganization):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
