package models

import "time"

// OrganizationStatus governs what role a new member receives when joining.
type OrganizationStatus string

const (
	StatusOpen             OrganizationStatus = "OPEN"
	StatusApplicationBased OrganizationStatus = "APPLICATION_BASED"
	StatusClosed           OrganizationStatus = "CLOSED"
)

type Organization struct {
	ID               uint64             `gorm:"primarykey" json:"id"`
	Name             string             `gorm:"type:varchar(255);not null" json:"name"`
	Shorthand        string             `gorm:"type:varchar(50)" json:"shorthand"`
	Slug             string             `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Logo             string             `gorm:"type:varchar(255)" json:"logo"`
	ShortDescription string             `gorm:"type:varchar(255)" json:"short_description"`
	LongDescription  string             `gorm:"type:text" json:"long_description"`
	JoinDescription  string             `gorm:"type:text;default:'Welcome!'" json:"join_description"`
	Website          string             `gorm:"type:varchar(255)" json:"website"`
	Email            string             `gorm:"type:varchar(255)" json:"email"`
	Instagram        string             `gorm:"type:varchar(255)" json:"instagram"`
	LinkedIn         string             `gorm:"type:varchar(255)" json:"linked_in"`
	YouTube          string             `gorm:"type:varchar(255)" json:"youtube"`
	HeelLife         string             `gorm:"type:varchar(255)" json:"heel_life"`
	ApplicationLink  string             `gorm:"type:varchar(255)" json:"application_link"`
	Public           bool               `gorm:"not null;default:true" json:"public"`
	Status           OrganizationStatus `gorm:"type:varchar(30);not null;default:'OPEN'" json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// No DeletedAt: deletion is a real cascade, a soft-deleted tombstone
	// would hold the unique slug forever.

	// Relations
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Events  []Event              `gorm:"foreignKey:OrganizationID" json:"events,omitempty"`
}
