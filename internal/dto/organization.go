package dto

import (
	"time"

	"github.com/coursehub/course-platform-api/internal/models"
)

// OrganizationDTO represents an organization in API responses. IsMember and
// MemberCount are derived relative to the viewing user at conversion time.
type OrganizationDTO struct {
	ID               uint64                    `json:"id"`
	Name             string                    `json:"name"`
	Shorthand        string                    `json:"shorthand"`
	Slug             string                    `json:"slug"`
	Logo             string                    `json:"logo"`
	ShortDescription string                    `json:"short_description"`
	LongDescription  string                    `json:"long_description"`
	JoinDescription  string                    `json:"join_description"`
	Website          string                    `json:"website"`
	Email            string                    `json:"email"`
	Instagram        string                    `json:"instagram"`
	LinkedIn         string                    `json:"linked_in"`
	YouTube          string                    `json:"youtube"`
	HeelLife         string                    `json:"heel_life"`
	ApplicationLink  string                    `json:"application_link"`
	Public           bool                      `json:"public"`
	Status           models.OrganizationStatus `json:"status"`
	IsMember         bool                      `json:"is_member"`
	MemberCount      int                       `json:"member_count"`
}

// EventDTO represents an event nested in the organization detail view
type EventDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Time        time.Time `json:"time"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Public      bool      `json:"public"`
}

// OrganizationDetailDTO composes the flat organization view with its events
type OrganizationDetailDTO struct {
	OrganizationDTO
	Events []EventDTO `json:"events"`
}

// ToOrganizationDTO converts an organization to DTO. The organization's
// Members relation must be loaded for the derived fields to be accurate.
func ToOrganizationDTO(org models.Organization, viewer *models.User) OrganizationDTO {
	isMember := false
	if viewer != nil {
		for _, member := range org.Members {
			if member.UserID == viewer.ID {
				isMember = true
				break
			}
		}
	}

	return OrganizationDTO{
		ID:               org.ID,
		Name:             org.Name,
		Shorthand:        org.Shorthand,
		Slug:             org.Slug,
		Logo:             org.Logo,
		ShortDescription: org.ShortDescription,
		LongDescription:  org.LongDescription,
		JoinDescription:  org.JoinDescription,
		Website:          org.Website,
		Email:            org.Email,
		Instagram:        org.Instagram,
		LinkedIn:         org.LinkedIn,
		YouTube:          org.YouTube,
		HeelLife:         org.HeelLife,
		ApplicationLink:  org.ApplicationLink,
		Public:           org.Public,
		Status:           org.Status,
		IsMember:         isMember,
		MemberCount:      len(org.Members),
	}
}

// ToEventDTO converts an event to DTO
func ToEventDTO(event models.Event) EventDTO {
	return EventDTO{
		ID:          event.ID,
		Name:        event.Name,
		Time:        event.Time,
		Location:    event.Location,
		Description: event.Description,
		Public:      event.Public,
	}
}

// ToOrganizationDetailDTO converts an organization with loaded events and
// members into the detailed view
func ToOrganizationDetailDTO(org models.Organization, viewer *models.User) OrganizationDetailDTO {
	events := make([]EventDTO, len(org.Events))
	for i, event := range org.Events {
		events[i] = ToEventDTO(event)
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org, viewer),
		Events:          events,
	}
}
