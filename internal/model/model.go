// Package model defines the core domain types for the club event
// management engine: clubs, the events they host, and student
// registrations against event capacity.
package model

import (
	"fmt"
	"time"
)

// Category classifies a club or an event.
type Category string

const (
	CategoryTechnical     Category = "technical"
	CategoryCultural      Category = "cultural"
	CategorySports        Category = "sports"
	CategorySocialService Category = "social-service"
	CategoryArts          Category = "arts"
	CategoryLiterary      Category = "literary"
	CategoryOther         Category = "other"
)

// ParseCategory validates a raw category value.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryTechnical, CategoryCultural, CategorySports,
		CategorySocialService, CategoryArts, CategoryLiterary, CategoryOther:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// RegistrationStatus is the lifecycle state of a registration.
// Capacity accounting counts only StatusConfirmed and StatusAttended.
type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "pending"
	StatusConfirmed RegistrationStatus = "confirmed"
	StatusAttended  RegistrationStatus = "attended"
	StatusCancelled RegistrationStatus = "cancelled"
)

// ParseRegistrationStatus validates a raw status value.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	switch st := RegistrationStatus(s); st {
	case StatusPending, StatusConfirmed, StatusAttended, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown registration status %q", s)
}

// CountsAgainstCapacity reports whether a registration in this status
// occupies one of the event's participant slots.
func (s RegistrationStatus) CountsAgainstCapacity() bool {
	return s == StatusConfirmed || s == StatusAttended
}

// Club is an organizational unit owned by exactly one coordinator and
// subject to admin approval before it may host events.
type Club struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	CoordinatorID string    `json:"coordinator_id"`
	ContactEmail  string    `json:"contact_email"`
	IsApproved    bool      `json:"is_approved"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Event is a scheduled activity hosted by a club. It must be approved
// by an admin before students can register, and registration closes at
// RegistrationDeadline.
type Event struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	ClubID               string    `json:"club_id"`
	EventDate            time.Time `json:"event_date"`
	EventTime            string    `json:"event_time"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	Venue                string    `json:"venue"`
	Category             Category  `json:"category"`
	MaxParticipants      int       `json:"max_participants"`
	Requirements         string    `json:"requirements"`
	CreatedBy            string    `json:"created_by"`
	IsApproved           bool      `json:"is_approved"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
}

// Registration is a student's claim on one slot of an event's capacity.
type Registration struct {
	ID               string             `json:"id"`
	EventID          string             `json:"event_id"`
	StudentID        string             `json:"student_id"`
	Status           RegistrationStatus `json:"status"`
	Comments         string             `json:"comments,omitempty"`
	RegistrationDate time.Time          `json:"registration_date"`
}

// User is the minimal user record the engine keeps: enough to maintain
// the coordinator's back-reference to the club they manage. Profiles,
// credentials and the rest of user management live outside the engine.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role"`
	ManagedClubID string `json:"managed_club_id,omitempty"`
}

// CreateClubRequest is the payload for creating a club. Coordinator may
// only be set by an admin creating a club on another user's behalf.
type CreateClubRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	ContactEmail string `json:"contact_email"`
	Coordinator  string `json:"coordinator,omitempty"`
}

// UpdateClubRequest is a partial update; nil fields are left unchanged.
// Coordinator and approval state cannot be changed through this path.
type UpdateClubRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	ContactEmail *string `json:"contact_email"`
	IsActive     *bool   `json:"is_active"`
}

// CreateEventRequest is the payload for creating an event under a club.
type CreateEventRequest struct {
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Club                 string    `json:"club"`
	EventDate            time.Time `json:"event_date"`
	EventTime            string    `json:"event_time"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	Venue                string    `json:"venue"`
	Category             string    `json:"category"`
	MaxParticipants      int       `json:"max_participants"`
	Requirements         string    `json:"requirements"`
}

// UpdateEventRequest is a partial update; nil fields are left
// unchanged. Approval state can only change via approve/reject.
type UpdateEventRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	EventDate            *time.Time `json:"event_date"`
	EventTime            *string    `json:"event_time"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Venue                *string    `json:"venue"`
	Category             *string    `json:"category"`
	MaxParticipants      *int       `json:"max_participants"`
	Requirements         *string    `json:"requirements"`
	IsActive             *bool      `json:"is_active"`
}

// RegisterRequest is the payload for registering the caller for an event.
type RegisterRequest struct {
	Event    string `json:"event"`
	Comments string `json:"comments"`
}

// UpdateRegistrationRequest changes a registration's status.
type UpdateRegistrationRequest struct {
	Status string `json:"status"`
}
