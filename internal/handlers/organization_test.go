package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/coursehub/course-platform-api/internal/constants"
	"github.com/coursehub/course-platform-api/internal/database"
	"github.com/coursehub/course-platform-api/internal/dto"
	"github.com/coursehub/course-platform-api/internal/models"
	"github.com/coursehub/course-platform-api/internal/permissions"
	"github.com/coursehub/course-platform-api/internal/repository"
	"github.com/coursehub/course-platform-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testClock struct {
	now time.Time
}

func (c testClock) Now() time.Time {
	return c.now
}

type organizationTestEnv struct {
	db         *gorm.DB
	perms      *permissions.Service
	handler    *OrganizationHandler
	orgService *services.OrganizationService
}

func setupOrganizationTestEnv(t *testing.T) organizationTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Event{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	perms, err := permissions.NewService("")
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	clock := testClock{now: time.Date(2024, time.September, 2, 9, 0, 0, 0, time.UTC)}

	orgService := services.NewOrganizationService(orgRepo, perms, clock)
	userService := services.NewUserService(userRepo)
	handler := NewOrganizationHandler(orgService, userService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return organizationTestEnv{
		db:         db,
		perms:      perms,
		handler:    handler,
		orgService: orgService,
	}
}

func orgTestContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != 0 {
		c.Set(constants.ContextKeyUserID, userID)
	}

	return c, w
}

func createTestOrganizationUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestOrganization(t *testing.T, db *gorm.DB, slug string, status models.OrganizationStatus) *models.Organization {
	t.Helper()

	org := &models.Organization{
		Name:   slug,
		Slug:   slug,
		Public: true,
		Status: status,
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

func TestOrganizationHandler_CreateOrganization(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	admin := createTestOrganizationUser(t, env.db, "root")
	require.NoError(t, env.perms.GrantRole(admin.ID, permissions.AdminRole))

	payload := map[string]interface{}{
		"name":   "Carolina Analytics and Data Science",
		"slug":   "cads",
		"status": "OPEN",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodPost, "/api/organizations", body, admin.ID)

	env.handler.CreateOrganization(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.OrganizationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "cads", response.Slug)
	require.NotZero(t, response.ID)
}

func TestOrganizationHandler_CreateOrganization_Forbidden(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createTestOrganizationUser(t, env.db, "student")

	payload := map[string]interface{}{
		"name": "ACM",
		"slug": "acm",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodPost, "/api/organizations", body, user.ID)

	env.handler.CreateOrganization(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrganizationHandler_ListOrganizations(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createTestOrganizationUser(t, env.db, "student")
	cads := createTestOrganization(t, env.db, "cads", models.StatusOpen)
	createTestOrganization(t, env.db, "cssg", models.StatusOpen)

	require.NoError(t, env.db.Create(&models.OrganizationMember{
		OrganizationID: cads.ID,
		UserID:         user.ID,
		Role:           models.RoleMember,
		Title:          "Member",
		Year:           2024,
		Semester:       models.SemesterFall,
	}).Error)

	c, w := orgTestContext(http.MethodGet, "/api/organizations", nil, user.ID)

	env.handler.ListOrganizations(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Organizations []dto.OrganizationDTO `json:"organizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Organizations, 2)

	memberFlags := map[string]bool{}
	for _, org := range response.Organizations {
		memberFlags[org.Slug] = org.IsMember
	}
	require.True(t, memberFlags["cads"])
	require.False(t, memberFlags["cssg"])
}

func TestOrganizationHandler_ListOrganizations_Anonymous(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	createTestOrganization(t, env.db, "cads", models.StatusOpen)

	c, w := orgTestContext(http.MethodGet, "/api/organizations", nil, 0)

	env.handler.ListOrganizations(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Organizations []dto.OrganizationDTO `json:"organizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Organizations, 1)
	require.False(t, response.Organizations[0].IsMember)
}

func TestOrganizationHandler_GetOrganization_NotFound(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	c, w := orgTestContext(http.MethodGet, "/api/organizations/missing", nil, 0)
	c.Params = gin.Params{{Key: "slug", Value: "missing"}}

	env.handler.GetOrganization(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrganizationHandler_AddMember_SelfJoin(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createTestOrganizationUser(t, env.db, "student")
	createTestOrganization(t, env.db, "cads", models.StatusOpen)

	c, w := orgTestContext(http.MethodPost, "/api/organizations/cads/members", nil, user.ID)
	c.Params = gin.Params{{Key: "slug", Value: "cads"}}

	env.handler.AddMember(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.MemberDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.UserID)
	require.Equal(t, models.RoleMember, response.Role)
	require.Equal(t, 2024, response.Year)
	require.Equal(t, models.SemesterFall, response.Semester)
}

func TestOrganizationHandler_AddMember_ClosedOrganization(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createTestOrganizationUser(t, env.db, "student")
	createTestOrganization(t, env.db, "closed", models.StatusClosed)

	c, w := orgTestContext(http.MethodPost, "/api/organizations/closed/members", nil, user.ID)
	c.Params = gin.Params{{Key: "slug", Value: "closed"}}

	env.handler.AddMember(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestOrganizationHandler_AddMember_ForOtherUser(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	leader := createTestOrganizationUser(t, env.db, "leader")
	target := createTestOrganizationUser(t, env.db, "recruit")
	org := createTestOrganization(t, env.db, "cads", models.StatusOpen)

	require.NoError(t, env.db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         leader.ID,
		Role:           models.RoleLeader,
		Title:          "President",
		Year:           2024,
		Semester:       models.SemesterFall,
	}).Error)

	url := "/api/organizations/cads/members?user_id=" + strconv.FormatUint(target.ID, 10)
	c, w := orgTestContext(http.MethodPost, url, nil, leader.ID)
	c.Params = gin.Params{{Key: "slug", Value: "cads"}}

	env.handler.AddMember(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.MemberDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, target.ID, response.UserID)
}

func TestOrganizationHandler_GetMembers_Forbidden(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createTestOrganizationUser(t, env.db, "student")
	createTestOrganization(t, env.db, "cads", models.StatusOpen)

	c, w := orgTestContext(http.MethodGet, "/api/organizations/cads/members", nil, user.ID)
	c.Params = gin.Params{{Key: "slug", Value: "cads"}}

	env.handler.GetMembers(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrganizationHandler_UpdateMember_RoleValidation(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	admin := createTestOrganizationUser(t, env.db, "root")
	require.NoError(t, env.perms.GrantRole(admin.ID, permissions.AdminRole))

	payload := map[string]interface{}{
		"organization_id": 1,
		"user_id":         1,
		"role":            "OWNER",
		"title":           "President",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodPut, "/api/organizations/members", body, admin.ID)

	env.handler.UpdateMember(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrganizationHandler_RemoveMember_SelfLeave(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createTestOrganizationUser(t, env.db, "student")
	org := createTestOrganization(t, env.db, "cads", models.StatusOpen)

	require.NoError(t, env.db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           models.RoleMember,
		Title:          "Member",
		Year:           2024,
		Semester:       models.SemesterFall,
	}).Error)

	c, w := orgTestContext(http.MethodDelete, "/api/organizations/cads/members", nil, user.ID)
	c.Params = gin.Params{{Key: "slug", Value: "cads"}}

	env.handler.RemoveMember(c)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", org.ID, user.ID).
		Count(&count).Error)
	require.Zero(t, count)
}

func TestOrganizationHandler_GetUserMemberships(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createTestOrganizationUser(t, env.db, "student")
	cads := createTestOrganization(t, env.db, "cads", models.StatusOpen)

	require.NoError(t, env.db.Create(&models.OrganizationMember{
		OrganizationID: cads.ID,
		UserID:         user.ID,
		Role:           models.RoleMember,
		Title:          "Member",
		Year:           2024,
		Semester:       models.SemesterFall,
	}).Error)

	c, w := orgTestContext(http.MethodGet, "/api/memberships", nil, user.ID)

	env.handler.GetUserMemberships(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Organizations []dto.OrganizationDTO `json:"organizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Organizations, 1)
	require.Equal(t, "cads", response.Organizations[0].Slug)
}
