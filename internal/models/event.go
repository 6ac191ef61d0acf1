package models

import "time"

type Event struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Time           time.Time `json:"time"`
	Location       string    `gorm:"type:varchar(255)" json:"location"`
	Description    string    `gorm:"type:text" json:"description"`
	Public         bool      `gorm:"not null;default:true" json:"public"`
	OrganizationID uint64    `gorm:"not null" json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}
