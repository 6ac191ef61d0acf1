package dto

import "github.com/coursehub/course-platform-api/internal/models"

// MemberDTO is the flat public view of an organization member
type MemberDTO struct {
	UserID    uint64            `json:"user_id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Pronouns  string            `json:"pronouns"`
	Role      models.MemberRole `json:"role"`
	Title     string            `json:"title"`
	Year      int               `json:"year"`
	Semester  models.Semester   `json:"semester"`
}

// OrganizationMemberDTO is the full membership view with nested user and
// organization
type OrganizationMemberDTO struct {
	User         UserDTO           `json:"user"`
	Organization OrganizationDTO   `json:"organization"`
	Role         models.MemberRole `json:"role"`
	Title        string            `json:"title"`
	Year         int               `json:"year"`
	Semester     models.Semester   `json:"semester"`
}

// ToMemberDTO converts a membership to the flat public view. The membership's
// User relation must be loaded.
func ToMemberDTO(member models.OrganizationMember) MemberDTO {
	return MemberDTO{
		UserID:    member.UserID,
		Username:  member.User.Username,
		Email:     member.User.Email,
		FirstName: member.User.FirstName,
		LastName:  member.User.LastName,
		Pronouns:  member.User.Pronouns,
		Role:      member.Role,
		Title:     member.Title,
		Year:      member.Year,
		Semester:  member.Semester,
	}
}

// ToOrganizationMemberDTO converts a membership to the full view. Both the
// User and Organization relations must be loaded.
func ToOrganizationMemberDTO(member models.OrganizationMember, viewer *models.User) OrganizationMemberDTO {
	return OrganizationMemberDTO{
		User:         ToUserDTO(member.User),
		Organization: ToOrganizationDTO(member.Organization, viewer),
		Role:         member.Role,
		Title:        member.Title,
		Year:         member.Year,
		Semester:     member.Semester,
	}
}
