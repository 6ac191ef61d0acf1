package models

import "time"

// MemberRole governs membership-management privileges within an organization.
type MemberRole string

const (
	RoleMember  MemberRole = "MEMBER"
	RoleLeader  MemberRole = "LEADER"
	RolePending MemberRole = "PENDING"
)

type Semester string

const (
	SemesterSpring Semester = "SPRING"
	SemesterSummer Semester = "SUMMER"
	SemesterFall   Semester = "FALL"
)

// SemesterFor maps a point in time onto the academic semester it falls in.
func SemesterFor(t time.Time) Semester {
	switch month := t.Month(); {
	case month <= time.May:
		return SemesterSpring
	case month <= time.July:
		return SemesterSummer
	default:
		return SemesterFall
	}
}

type OrganizationMember struct {
	OrganizationID uint64     `gorm:"primarykey" json:"organization_id"`
	UserID         uint64     `gorm:"primarykey" json:"user_id"`
	Role           MemberRole `gorm:"type:varchar(20);not null" json:"role"`
	Title          string     `gorm:"type:varchar(100);not null;default:'Member'" json:"title"`
	Year           int        `gorm:"not null" json:"year"`
	Semester       Semester   `gorm:"type:varchar(10);not null" json:"semester"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
